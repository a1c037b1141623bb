// Package triageapi exposes the vital-sign extraction and triage endpoints
// over HTTP.
package triageapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/linnemanlabs/go-core/httpmw"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/vitaltriage/internal/triage"
)

// DefaultMaxUploadBytes caps a video upload when Options.MaxUploadBytes is unset.
const DefaultMaxUploadBytes = 100 << 20

// serviceName is reported by the health endpoint. Existing clients match on it.
const serviceName = "ai-service"

// TriageService defines the triage operations the API needs.
type TriageService interface {
	Assess(ctx context.Context, in *triage.Input) (*triage.Result, error)
}

// VitalsService defines the extraction operations the API needs.
type VitalsService interface {
	Extract(ctx context.Context, video []byte) *triage.VitalSigns
}

// Options configures the API. Zero values are usable.
type Options struct {
	// MaxUploadBytes bounds the multipart body of an extraction request.
	MaxUploadBytes int64

	// CORSOrigins lists allowed browser origins; empty allows any.
	CORSOrigins []string

	// RateLimit is the per-client request budget per minute; 0 disables it.
	RateLimit int
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger    log.Logger
	triage    TriageService
	vitals    VitalsService
	validate  *validator.Validate
	maxUpload int64
	origins   []string
	rateLimit int
}

// New creates a new API handler.
func New(logger log.Logger, triageSvc TriageService, vitalsSvc VitalsService, opts Options) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if triageSvc == nil {
		panic(xerrors.New("triage service is required"))
	}
	if vitalsSvc == nil {
		panic(xerrors.New("vitals service is required"))
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &API{
		logger:    logger,
		triage:    triageSvc,
		vitals:    vitalsSvc,
		validate:  newValidator(),
		maxUpload: opts.MaxUploadBytes,
		origins:   origins,
		rateLimit: opts.RateLimit,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: a.origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{assessmentIDHeader, "X-Request-Id"},
			MaxAge:         300,
		}))

		// preflights only reach the cors handler through a registered route;
		// the /api mount below accepts every method already
		r.Options("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		r.Get("/health", a.handleHealth)

		r.Route("/api", func(r chi.Router) {
			if a.rateLimit > 0 {
				r.Use(httprate.Limit(a.rateLimit, time.Minute, httprate.WithKeyFuncs(clientKey)))
			}
			r.Post("/vital-signs/extract", a.handleExtract)
			r.With(httpmw.MaxBody(1024*64)).Post("/triage/assess", a.handleAssess)
		})
	})
}

// clientKey buckets requests by the client IP resolved upstream, falling
// back to the peer address when no resolver ran.
func clientKey(r *http.Request) (string, error) {
	if ip := httpmw.ClientIPFromContext(r.Context()); ip != "" {
		return ip, nil
	}
	return httprate.KeyByIP(r)
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": serviceName,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// nothing to do with errors here
	_ = json.NewEncoder(w).Encode(v)
}

// writeError sends the {"detail": ...} body existing clients parse.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
