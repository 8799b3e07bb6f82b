// Package metrics provides Prometheus metrics for the aggregator.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "aggregator"

// Label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"

	CacheHit    = "hit"
	CacheMiss   = "miss"
	CacheForced = "forced"
)

var (
	// ArticlesScraped counts items produced per source.
	ArticlesScraped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_scraped_total",
			Help:      "Total number of articles scraped and summarized",
		},
		[]string{"source"},
	)

	SourceErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_errors_total",
			Help:      "Total number of per-source errors",
		},
		[]string{"source"},
	)

	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of chat completion requests",
		},
		[]string{"status"},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Total number of cache lookups by result",
		},
		[]string{"result"},
	)

	// RunDuration measures full aggregation runs.
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of aggregation runs in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)
)

func RecordArticles(source string, count int) {
	ArticlesScraped.WithLabelValues(source).Add(float64(count))
}

func RecordSourceErrors(source string, count int) {
	SourceErrors.WithLabelValues(source).Add(float64(count))
}

// RecordLLMRequest records a completion outcome.
func RecordLLMRequest(err error) {
	if err != nil {
		LLMRequests.WithLabelValues(StatusError).Inc()
		return
	}
	LLMRequests.WithLabelValues(StatusSuccess).Inc()
}

func RecordCacheRequest(result string) {
	CacheRequests.WithLabelValues(result).Inc()
}

func ObserveRun(d time.Duration) {
	RunDuration.Observe(d.Seconds())
}
