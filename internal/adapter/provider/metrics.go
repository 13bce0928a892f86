package provider

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// metricsOnce ensures metrics are registered only once
	metricsOnce sync.Once

	// collectionRequestsTotal tracks collection runs by provider and status
	collectionRequestsTotal *prometheus.CounterVec

	// collectionDuration tracks latency of collection runs per provider
	collectionDuration *prometheus.HistogramVec

	// evidenceRecordsTotal tracks how many evidence records each provider yields
	evidenceRecordsTotal *prometheus.CounterVec

	// evidenceDiscardedTotal tracks records dropped by normalization filters
	evidenceDiscardedTotal *prometheus.CounterVec

	// providerAPIErrorsTotal tracks upstream API errors by type
	providerAPIErrorsTotal *prometheus.CounterVec
)

// InitMetrics registers all Prometheus metrics for evidence collection.
// This should be called once at application startup
func InitMetrics() {
	metricsOnce.Do(func() {
		collectionRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sovscope_collection_requests_total",
				Help: "Total number of evidence collection runs by provider and status",
			},
			[]string{"provider", "status"},
		)

		collectionDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sovscope_collection_duration_seconds",
				Help:    "Duration of evidence collection runs in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
			[]string{"provider"},
		)

		evidenceRecordsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sovscope_evidence_records_total",
				Help: "Total number of evidence records collected by provider and source type",
			},
			[]string{"provider", "source"},
		)

		evidenceDiscardedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sovscope_evidence_discarded_total",
				Help: "Total number of records dropped during normalization by reason",
			},
			[]string{"provider", "reason"},
		)

		providerAPIErrorsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sovscope_provider_api_errors_total",
				Help: "Total number of upstream API errors by error type",
			},
			[]string{"error_type"},
		)
	})
}

// RecordCollection records a finished collection run.
// status: "success", "error"
func RecordCollection(provider, status string) {
	if collectionRequestsTotal != nil {
		collectionRequestsTotal.WithLabelValues(provider, status).Inc()
	}
}

// RecordCollectionDuration records how long a provider took to collect
func RecordCollectionDuration(provider string, duration time.Duration) {
	if collectionDuration != nil {
		collectionDuration.WithLabelValues(provider).Observe(duration.Seconds())
	}
}

// RecordEvidence records collected evidence records by source type
func RecordEvidence(provider, source string, count int) {
	if evidenceRecordsTotal != nil && count > 0 {
		evidenceRecordsTotal.WithLabelValues(provider, source).Add(float64(count))
	}
}

// RecordDiscarded records evidence dropped by a normalization filter
// reason: "spam", "too_short", "too_long", "no_url"
func RecordDiscarded(provider, reason string) {
	if evidenceDiscardedTotal != nil {
		evidenceDiscardedTotal.WithLabelValues(provider, reason).Inc()
	}
}

// RecordError records an upstream API error by type
// errorType: "timeout", "auth", "rate_limit", "server_error", "connection", "parse", "circuit_open", "http_error"
func RecordError(errorType string) {
	if providerAPIErrorsTotal != nil {
		providerAPIErrorsTotal.WithLabelValues(errorType).Inc()
	}
}

// CollectionTimer is a helper for timing collection runs
type CollectionTimer struct {
	provider string
	start    time.Time
}

// StartTimer creates a new timer for measuring a collection run
func StartTimer(provider string) *CollectionTimer {
	return &CollectionTimer{provider: provider, start: time.Now()}
}

// ObserveDuration records the elapsed time since the timer started
func (t *CollectionTimer) ObserveDuration() {
	if t != nil {
		RecordCollectionDuration(t.provider, time.Since(t.start))
	}
}
