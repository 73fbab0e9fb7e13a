package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the service's Prometheus collectors. Construction takes an
// explicit registerer so tests can use an isolated registry.
type Metrics struct {
	ConversionsTotal     *prometheus.CounterVec
	ReconciledRatesTotal *prometheus.CounterVec
	RefreshRunsTotal     *prometheus.CounterVec
	CacheEvictionsTotal  prometheus.Counter
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
}

// NewMetrics registers the collectors against the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ConversionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fx_conversions_total",
				Help: "Total number of currency conversions by strategy",
			},
			[]string{"strategy"},
		),
		ReconciledRatesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fx_reconciled_rates_total",
				Help: "Provider rates processed by reconciliation, by outcome",
			},
			[]string{"operation", "outcome"},
		),
		RefreshRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fx_latest_refresh_runs_total",
				Help: "Latest-rate cache refresh passes by result",
			},
			[]string{"result"},
		),
		CacheEvictionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fx_cache_evictions_total",
				Help: "Cache entries removed by the eviction job",
			},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
	}
}
