package triage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/go-core/log"
)

const tracerName = "github.com/linnemanlabs/vitaltriage/internal/triage"

// ErrInvalidInput is returned when an assessment request cannot be classified.
var ErrInvalidInput = errors.New("invalid triage input")

// Notifier is told about assessments at or above the configured acuity.
type Notifier interface {
	Send(ctx context.Context, r *Result) error
}

// AssessEvent is passed to Hooks.OnAssess after every assessment.
type AssessEvent struct {
	Level         Level
	Path          Path
	PriorityScore int
	Duration      float64
}

// Hooks lets callers observe the service without depending on a metrics backend.
type Hooks struct {
	OnAssess func(e *AssessEvent)
	OnNotify func(err error)
}

// Options configures a Service. Zero values are usable.
type Options struct {
	// NotifyLevel is the least severe level that triggers a notification.
	// Levels are ordered "1" (most severe) to "5"; 0 disables notifications.
	NotifyLevel int
	Notifier    Notifier
	Hooks       Hooks
}

// Service is the business boundary for triage assessments.
type Service struct {
	engine      *Engine
	logger      log.Logger
	notifier    Notifier
	notifyLevel int
	hooks       Hooks
}

// NewService creates a new triage service.
func NewService(engine *Engine, logger log.Logger, opts Options) *Service {
	if engine == nil {
		engine = NewEngine()
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		engine:      engine,
		logger:      logger,
		notifier:    opts.Notifier,
		notifyLevel: opts.NotifyLevel,
		hooks:       opts.Hooks,
	}
}

// Assess validates the input, runs the engine and dispatches notifications.
func (s *Service) Assess(ctx context.Context, in *Input) (*Result, error) {
	if in == nil || strings.TrimSpace(in.ChiefComplaint) == "" {
		return nil, fmt.Errorf("%w: chief complaint is required", ErrInvalidInput)
	}

	id := ulid.Make().String()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "triage.assess", trace.WithAttributes(
		attribute.String("triage.id", id),
	))
	defer span.End()

	start := time.Now()
	path := SelectPath(in.VitalSigns)
	a := s.engine.Assess(in)
	dur := time.Since(start).Seconds()

	span.SetAttributes(
		attribute.String("triage.path", string(path)),
		attribute.String("triage.level", string(a.Level)),
		attribute.Int("triage.priority_score", a.PriorityScore),
	)

	r := &Result{
		ID:             id,
		Path:           path,
		ChiefComplaint: in.ChiefComplaint,
		Assessment:     a,
		CreatedAt:      start,
		Duration:       dur,
	}

	if s.hooks.OnAssess != nil {
		s.hooks.OnAssess(&AssessEvent{Level: a.Level, Path: path, PriorityScore: a.PriorityScore, Duration: dur})
	}

	s.logger.Info(ctx, "triage assessed",
		"triage_id", id,
		"path", path,
		"level", a.Level,
		"priority_score", a.PriorityScore,
		"wait_minutes", a.EstimatedWaitTime,
	)

	if s.shouldNotify(a.Level) {
		// the request context ends with the response, the notification must not
		go s.notify(context.WithoutCancel(ctx), r.clone())
	}

	return r, nil
}

func (s *Service) shouldNotify(l Level) bool {
	if s.notifier == nil || s.notifyLevel <= 0 {
		return false
	}
	n := levelRank(l)
	return n > 0 && n <= s.notifyLevel
}

func (s *Service) notify(ctx context.Context, r *Result) {
	err := s.notifier.Send(ctx, r)
	if s.hooks.OnNotify != nil {
		s.hooks.OnNotify(err)
	}
	if err != nil {
		s.logger.Error(ctx, err, "triage notification failed", "triage_id", r.ID, "level", r.Assessment.Level)
	}
}

// levelRank maps "1".."5" to 1..5 and anything else to 0.
func levelRank(l Level) int {
	if len(l) != 1 || l[0] < '1' || l[0] > '5' {
		return 0
	}
	return int(l[0] - '0')
}
