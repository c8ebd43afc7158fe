package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	feedbackStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedback_started_total",
		Help: "Total feedback pipelines started",
	})
	feedbackCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedback_completed_total",
		Help: "Total feedback pipelines completed",
	})
	feedbackFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedback_failed_total",
		Help: "Total feedback pipelines that failed before producing a result",
	})
	categoryDegradedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedback_category_degraded_total",
		Help: "Categories resolved to the no-data sentinel after exhausting retries",
	}, []string{"category"})
	dispatchRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedback_dispatch_retries_total",
		Help: "Generation-service dispatch retries by category",
	}, []string{"category"})
	ocrPagesFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "extract_ocr_pages_failed_total",
		Help: "Pages that failed to render or recognize during OCR fallback",
	})
	pipelineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "feedback_pipeline_duration_ms",
		Help:    "End-to-end feedback pipeline duration in milliseconds",
		Buckets: []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000},
	})
)

// IncFeedbackStarted increments the started counter.
func IncFeedbackStarted() { feedbackStartedTotal.Inc() }

// IncFeedbackCompleted increments the completed counter.
func IncFeedbackCompleted() { feedbackCompletedTotal.Inc() }

// IncFeedbackFailed increments the failed counter.
func IncFeedbackFailed() { feedbackFailedTotal.Inc() }

// IncCategoryDegraded records a category that exhausted its retries.
func IncCategoryDegraded(category string) {
	categoryDegradedTotal.WithLabelValues(category).Inc()
}

// IncDispatchRetry records one retried dispatch for a category.
func IncDispatchRetry(category string) {
	dispatchRetriesTotal.WithLabelValues(category).Inc()
}

// IncOCRPageFailed records a page lost to a render or recognition failure.
func IncOCRPageFailed() { ocrPagesFailedTotal.Inc() }

// ObservePipelineDurationMs records an end-to-end pipeline duration.
func ObservePipelineDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	pipelineDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
