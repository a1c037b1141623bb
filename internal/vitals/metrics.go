package vitals

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for vital-sign extraction.
type Metrics struct {
	ExtractionsTotal *prometheus.CounterVec
	ExtractDuration  prometheus.Histogram
	UploadBytes      prometheus.Histogram
}

// NewMetrics registers and returns extraction metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ExtractionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vitaltriage_extractions_total",
			Help: "Total vital-sign extractions by outcome.",
		}, []string{"outcome"}),
		ExtractDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vitaltriage_extract_duration_seconds",
			Help:    "Wall-clock time per extraction attempt.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms .. ~20s
		}),
		UploadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vitaltriage_upload_bytes",
			Help:    "Size of uploaded videos.",
			Buckets: prometheus.ExponentialBuckets(64*1024, 4, 8), // 64KiB .. 1GiB
		}),
	}

	reg.MustRegister(
		m.ExtractionsTotal,
		m.ExtractDuration,
		m.UploadBytes,
	)

	return m
}

// Hooks returns Hooks that update the corresponding metrics.
func (m *Metrics) Hooks() Hooks {
	return Hooks{
		OnExtract: func(e *ExtractEvent) {
			m.ExtractionsTotal.WithLabelValues(e.Outcome).Inc()
			m.ExtractDuration.Observe(e.Duration)
			m.UploadBytes.Observe(float64(e.Bytes))
		},
	}
}
