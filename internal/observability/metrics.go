package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the NWS
// client: outbound request outcomes, request latency, and cache behavior.
type Metrics struct {
	APIRequests     *prometheus.CounterVec   // labels: operation, outcome={success,not_found,rate_limited,timeout,error}
	RequestDuration *prometheus.HistogramVec // labels: operation
	CacheLookups    *prometheus.CounterVec   // labels: result={hit,miss}
	CacheEntries    prometheus.Gauge
}

// NewMetrics creates and registers all client metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.APIRequests,
		m.RequestDuration,
		m.CacheLookups,
		m.CacheEntries,
	)

	return m
}

// NewMetricsForTesting creates Metrics with no registration to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nws_client",
			Name:      "api_requests_total",
			Help:      "Outbound NWS API requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nws_client",
			Name:      "request_duration_seconds",
			Help:      "NWS API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nws_client",
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by result.",
		}, []string{"result"}),
		CacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nws_client",
			Name:      "cache_entries",
			Help:      "Number of entries currently held in the response cache.",
		}),
	}
}
