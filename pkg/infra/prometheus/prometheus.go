package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Latency buckets in milliseconds. Validation is synchronous and
	// cache-warm most of the time, so the interesting range is small.
	latencyBuckets = []float64{
		0.5, 1, 2.5, // cache-warm scoring
		5, 10, 25, // cold cache, store fetch
		50, 100, 250, // degraded backing store
		500, 1000, // breaker trips / timeouts
	}

	ValidationTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailsentry_validations_total",
			Help: "Total number of email validations by decision and risk bucket",
		},
		[]string{"decision", "bucket"},
	)

	ValidationLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mailsentry_validation_latency_ms",
			Help:    "Validation latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"decision"},
	)

	RiskTableRefreshTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailsentry_risk_table_refresh_total",
			Help: "Risk table refreshes from the backing store by result",
		},
		[]string{"result"},
	)

	RiskTableUpdateTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailsentry_risk_table_update_total",
			Help: "Admin risk table updates by result",
		},
		[]string{"result"},
	)
)

func Initialize() {
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry
}

// Handler exposes the private registry for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
