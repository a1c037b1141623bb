package triage

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the triage subsystem.
type Metrics struct {
	AssessmentsTotal *prometheus.CounterVec
	AssessDuration   prometheus.Histogram
	PriorityScore    prometheus.Histogram
	NotifyTotal      *prometheus.CounterVec
}

// NewMetrics registers and returns triage metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AssessmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vitaltriage_assessments_total",
			Help: "Total triage assessments by level and decision path.",
		}, []string{"level", "path"}),
		AssessDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vitaltriage_assess_duration_seconds",
			Help:    "Time spent in the decision engine per assessment.",
			Buckets: prometheus.ExponentialBuckets(0.000001, 4, 8), // 1us .. ~16ms
		}),
		PriorityScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vitaltriage_priority_score",
			Help:    "Distribution of assigned priority scores.",
			Buckets: prometheus.LinearBuckets(0, 20, 6), // 0 .. 100
		}),
		NotifyTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vitaltriage_notifications_total",
			Help: "Critical assessment notifications by outcome.",
		}, []string{"status"}),
	}

	reg.MustRegister(
		m.AssessmentsTotal,
		m.AssessDuration,
		m.PriorityScore,
		m.NotifyTotal,
	)

	return m
}

// Hooks returns Hooks that update the corresponding metrics.
func (m *Metrics) Hooks() Hooks {
	return Hooks{
		OnAssess: func(e *AssessEvent) {
			m.AssessmentsTotal.WithLabelValues(string(e.Level), string(e.Path)).Inc()
			m.AssessDuration.Observe(e.Duration)
			m.PriorityScore.Observe(float64(e.PriorityScore))
		},
		OnNotify: func(err error) {
			status := "success"
			if err != nil {
				status = "error"
			}
			m.NotifyTotal.WithLabelValues(status).Inc()
		},
	}
}
