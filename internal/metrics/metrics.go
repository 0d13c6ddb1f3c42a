package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's prometheus collectors.
type Metrics struct {
	ExecutionsTotal  *prometheus.CounterVec
	PipelineDuration prometheus.Histogram
}

// New creates and registers the engine metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ExecutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "order_engine",
			Name:      "executions_total",
			Help:      "Execution attempts by terminal outcome.",
		}, []string{"outcome"}),
		PipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "order_engine",
			Name:      "pipeline_duration_seconds",
			Help:      "Wall time of one execution pipeline pass.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
	}
	reg.MustRegister(m.ExecutionsTotal, m.PipelineDuration)
	return m
}

// Outcome label values.
const (
	OutcomeExecuted = "executed"
	OutcomeFailed   = "failed"
	OutcomeRejected = "rejected" // guard refused before acquisition
)
