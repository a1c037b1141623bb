package vitals

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/vitaltriage/internal/triage"
)

// DefaultTimeout bounds one extraction when Options.Timeout is unset.
const DefaultTimeout = 30 * time.Second

// Outcome labels for ExtractEvent.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
	OutcomeEmpty  = "empty"
)

// ExtractEvent is passed to Hooks.OnExtract after every extraction attempt.
type ExtractEvent struct {
	Outcome  string
	Bytes    int
	Duration float64
}

// Hooks lets callers observe extraction without depending on a metrics backend.
type Hooks struct {
	OnExtract func(e *ExtractEvent)
}

// Options configures a Service.
type Options struct {
	Timeout time.Duration
	Hooks   Hooks
}

// Service runs an Extractor with a deadline and hides its failures.
type Service struct {
	extractor Extractor
	logger    log.Logger
	timeout   time.Duration
	hooks     Hooks
}

// NewService wraps extractor. A nil extractor means the placeholder backend.
func NewService(extractor Extractor, logger log.Logger, opts Options) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	if extractor == nil {
		extractor = NewPlaceholderExtractor("", logger)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Service{
		extractor: extractor,
		logger:    logger,
		timeout:   opts.Timeout,
		hooks:     opts.Hooks,
	}
}

// Extract returns the extracted vital signs, or nil when extraction failed
// or produced nothing. It never returns an error; the caller falls back to
// manual entry.
func (s *Service) Extract(ctx context.Context, video []byte) *triage.VitalSigns {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "vitals.extract", trace.WithAttributes(
		attribute.Int("vitals.bytes", len(video)),
	))
	defer span.End()

	start := time.Now()
	vs, outcome := s.run(ctx, video)
	dur := time.Since(start).Seconds()

	span.SetAttributes(attribute.String("vitals.outcome", outcome))

	if s.hooks.OnExtract != nil {
		s.hooks.OnExtract(&ExtractEvent{Outcome: outcome, Bytes: len(video), Duration: dur})
	}
	return vs
}

func (s *Service) run(ctx context.Context, video []byte) (*triage.VitalSigns, string) {
	if len(video) == 0 {
		return nil, OutcomeEmpty
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	vs, err := s.extractor.Extract(ctx, video)
	if err != nil {
		s.logger.Warn(ctx, "vital sign extraction failed, falling back to manual entry",
			"bytes", len(video),
			"error", err,
		)
		return nil, OutcomeFailed
	}
	if vs == nil {
		return nil, OutcomeEmpty
	}
	return vs, OutcomeOK
}
