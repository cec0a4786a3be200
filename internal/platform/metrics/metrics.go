package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	SearchesTotal      *prometheus.CounterVec
	ProviderFailures   *prometheus.CounterVec
	ProviderCacheHits  *prometheus.CounterVec
	ConfidenceScore    prometheus.Histogram
	RequestDuration    *prometheus.HistogramVec
	SubmissionsCreated prometheus.Counter
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return NewFor(prometheus.DefaultRegisterer)
}

// NewFor registers the metrics on the given registry. Tests pass a fresh
// registry so repeated construction never collides.
func NewFor(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SearchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "persona_searches_total",
			Help: "Total searches executed, by storage mode",
		}, []string{"mode"}),
		ProviderFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "persona_provider_failures_total",
			Help: "Category fetch failures, by category and error class",
		}, []string{"category", "error"}),
		ProviderCacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "persona_provider_cache_requests_total",
			Help: "Provider cache lookups, by category and outcome",
		}, []string{"category", "outcome"}),
		ConfidenceScore: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "persona_confidence_score",
			Help:    "Distribution of computed confidence scores",
			Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "persona_http_request_duration_seconds",
			Help:    "HTTP request latency, by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
		SubmissionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "persona_submissions_created_total",
			Help: "Total person-info submissions created",
		}),
	}
}

// ObserveSearch records one completed search and its score.
func (m *Metrics) ObserveSearch(mode string, score int) {
	m.SearchesTotal.WithLabelValues(mode).Inc()
	m.ConfidenceScore.Observe(float64(score))
}

// ObserveProviderFailure records one contained category fetch failure.
func (m *Metrics) ObserveProviderFailure(category, errorClass string) {
	m.ProviderFailures.WithLabelValues(category, errorClass).Inc()
}

// ObserveProviderCache records a cache lookup outcome.
func (m *Metrics) ObserveProviderCache(category string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.ProviderCacheHits.WithLabelValues(category, outcome).Inc()
}

// ObserveRequest records one HTTP request's latency.
func (m *Metrics) ObserveRequest(route, status string, d time.Duration) {
	m.RequestDuration.WithLabelValues(route, status).Observe(d.Seconds())
}
