package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/linnemanlabs/go-core/httpmw"
	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/vitaltriage/internal/triageapi"
)

// untracedPaths are probed constantly and would drown real spans.
var untracedPaths = map[string]bool{
	"/-/healthy": true,
	"/-/ready":   true,
	"/health":    true,
}

// newHandler assembles the main listener: chi routes inside, then the
// wrapper stack. Order matters; the outermost wrapper sees the raw request
// first and the response last.
func newHandler(L log.Logger, api *triageapi.API, healthz, readyz http.HandlerFunc, metricsMW func(http.Handler) http.Handler, trustedHops int) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Compress(5, "application/json"))

	// rename logger fields and spans to the chi route pattern
	r.Use(httpmw.AnnotateHTTPRoute)
	r.Use(httpmw.AccessLog())

	r.Get("/-/healthy", healthz)
	r.Get("/-/ready", readyz)

	api.RegisterRoutes(r)

	var h http.Handler = r

	// inner so it sees trace_id and the chi route
	h = httpmw.WithLogger(L)(h)
	h = httpmw.TraceResponseHeaders("X-Trace-Id", "X-Span-Id")(h)
	h = otelhttp.NewHandler(h, "http.server",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return !untracedPaths[r.URL.Path]
		}),
		// AnnotateHTTPRoute renames the span to the route pattern later
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
		otelhttp.WithPublicEndpointFn(func(_ *http.Request) bool { return true }),
	)
	h = metricsMW(h)

	// outer so everything downstream uses the same resolved client ip
	h = httpmw.ClientIPWithOptions(httpmw.ClientIPOptions{
		TrustedHops: trustedHops,
	})(h)
	h = httpmw.RequestID("X-Request-Id")(h)
	h = httpmw.Recover(L, nil)(h)

	// outermost so every response carries them
	h = httpmw.SecurityHeaders(h)

	return h
}
