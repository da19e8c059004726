package service

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics instruments the /process surface. Each Metrics value owns its own
// registry so multiple services in one process never collide on metric
// registration.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	events   prometheus.Counter
	duration prometheus.Histogram
}

// NewMetrics builds a collector with a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agentrelay_process_requests_total",
			Help: "Completed /process requests by response mode and outcome.",
		}, []string{"mode", "outcome"}),
		events: factory.NewCounter(prometheus.CounterOpts{
			Name: "agentrelay_stream_events_total",
			Help: "Content delta events emitted across all requests.",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "agentrelay_process_duration_seconds",
			Help:    "Wall-clock duration of /process requests.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
