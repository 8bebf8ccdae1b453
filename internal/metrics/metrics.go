package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the search backend and the ingest worker.
type Metrics struct {
	// Provider latencies by provider name
	ProviderLatency *prometheus.HistogramVec

	// Provider outcomes by provider and status ("ok", "error")
	ProviderOutcome *prometheus.CounterVec

	// Results returned per search
	SearchResults prometheus.Histogram

	// Articles handled by the worker by outcome ("indexed", "duplicate", "failed")
	IngestOutcome *prometheus.CounterVec
}

// New registers all metrics with reg. Pass prometheus.DefaultRegisterer in
// binaries and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ProviderLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "news_search_provider_duration_seconds",
			Help:    "Duration of a search against one provider",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"provider"}),

		ProviderOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "news_search_provider_outcomes_total",
			Help: "Total provider searches by outcome",
		}, []string{"provider", "status"}),

		SearchResults: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "news_search_results",
			Help:    "Number of results returned per search request",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}),

		IngestOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "news_ingest_articles_total",
			Help: "Articles consumed by the ingest worker by outcome",
		}, []string{"outcome"}),
	}
}

// ObserveProvider records one provider call.
func (m *Metrics) ObserveProvider(provider string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.ProviderLatency.WithLabelValues(provider).Observe(d.Seconds())
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ProviderOutcome.WithLabelValues(provider, status).Inc()
}

// ObserveResults records the size of a search response.
func (m *Metrics) ObserveResults(n int) {
	if m != nil {
		m.SearchResults.Observe(float64(n))
	}
}

// IncrementIngest records a worker outcome.
func (m *Metrics) IncrementIngest(outcome string) {
	if m != nil {
		m.IngestOutcome.WithLabelValues(outcome).Inc()
	}
}
