// Package metrics exposes Prometheus collectors for the messaging flows.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "messenger"

// Messaging counts and times service operations. A nil *Messaging records nothing.
type Messaging struct {
	ops         *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	divergences *prometheus.CounterVec
}

// NewMessaging creates the collectors and registers them on reg.
func NewMessaging(reg prometheus.Registerer) *Messaging {
	m := &Messaging{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Service operations by name and result.",
		}, []string{"op", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		divergences: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_divergences_total",
			Help:      "Sends that updated one participant's summary but not the other's.",
		}, []string{"op"}),
	}
	reg.MustRegister(m.ops, m.duration, m.divergences)
	return m
}

// Observe records one finished operation.
func (m *Messaging) Observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ops.WithLabelValues(op, result).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Divergence records a partial write that left the two summary copies out of sync.
func (m *Messaging) Divergence(op string) {
	if m == nil {
		return
	}
	m.divergences.WithLabelValues(op).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
