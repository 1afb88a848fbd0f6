package render

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts renders per strategy and outcome.
type Metrics struct {
	renders  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the render metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		renders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "compat_blur",
			Name:      "renders_total",
			Help:      "Blur renders by strategy and outcome (ok, fallback).",
		}, []string{"strategy", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "compat_blur",
			Name:      "render_duration_seconds",
			Help:      "Time spent producing a blurred image.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"strategy"}),
	}
}

func (m *Metrics) observe(strategy, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(strategy, outcome).Inc()
	m.duration.WithLabelValues(strategy).Observe(seconds)
}
