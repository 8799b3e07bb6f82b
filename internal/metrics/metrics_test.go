package metrics_test

import (
	"errors"
	"testing"

	"news_aggregator/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordLLMRequest(t *testing.T) {
	success := testutil.ToFloat64(metrics.LLMRequests.WithLabelValues(metrics.StatusSuccess))
	failure := testutil.ToFloat64(metrics.LLMRequests.WithLabelValues(metrics.StatusError))

	metrics.RecordLLMRequest(nil)
	metrics.RecordLLMRequest(errors.New("boom"))
	metrics.RecordLLMRequest(errors.New("boom"))

	assert.InDelta(t, success+1, testutil.ToFloat64(metrics.LLMRequests.WithLabelValues(metrics.StatusSuccess)), 1e-9)
	assert.InDelta(t, failure+2, testutil.ToFloat64(metrics.LLMRequests.WithLabelValues(metrics.StatusError)), 1e-9)
}

func TestRecordArticlesAndErrors(t *testing.T) {
	metrics.RecordArticles("metrics-test", 3)
	metrics.RecordSourceErrors("metrics-test", 2)

	assert.InDelta(t, 3, testutil.ToFloat64(metrics.ArticlesScraped.WithLabelValues("metrics-test")), 1e-9)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.SourceErrors.WithLabelValues("metrics-test")), 1e-9)
}

func TestRecordCacheRequest(t *testing.T) {
	before := testutil.ToFloat64(metrics.CacheRequests.WithLabelValues(metrics.CacheHit))

	metrics.RecordCacheRequest(metrics.CacheHit)

	assert.InDelta(t, before+1, testutil.ToFloat64(metrics.CacheRequests.WithLabelValues(metrics.CacheHit)), 1e-9)
}
