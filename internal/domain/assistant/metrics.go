package assistant

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK       = "ok"
	outcomeFallback = "fallback"
	outcomeRejected = "rejected"
)

// Metrics counts analyses by source and outcome. A nil *Metrics is a no-op.
type Metrics struct {
	analyses *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the assistant collectors on reg. A nil reg creates
// unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		analyses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "giftledger_analyses_total",
				Help: "Chat messages analyzed, by analyzer source and outcome",
			},
			[]string{"source", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "giftledger_analysis_duration_seconds",
				Help:    "Time spent analyzing a chat message",
				Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5, 10},
			},
			[]string{"source"},
		),
	}
}

func (m *Metrics) observe(source Source, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(string(source), outcome).Inc()
	m.duration.WithLabelValues(string(source)).Observe(elapsed.Seconds())
}
