package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP surface metrics

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkproxy_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linkproxy_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// Bulk orchestrator metrics (C8)

	BulkRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "linkproxy_bulk_request_duration_seconds",
			Help:    "Time to resolve a full bulk request in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	BulkCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "linkproxy_bulk_cache_hits_total",
			Help: "Total IRIs resolved from a public cache hit without a backend round-trip",
		},
	)

	BulkCacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "linkproxy_bulk_cache_misses_total",
			Help: "Total IRIs requiring a backend round-trip (private or missing)",
		},
	)

	BulkCacheHitRatio = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "linkproxy_bulk_cache_hit_ratio",
			Help: "Rolling public cache hit ratio across resolved IRIs",
		},
	)

	// Backend authorization client metrics (C9)

	BackendCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linkproxy_backend_call_duration_seconds",
			Help:    "Time spent waiting on the authoritative backend, by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	BackendCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkproxy_backend_calls_total",
			Help: "Total backend authorization calls by route and outcome",
		},
		[]string{"route", "outcome"},
	)

	// Importer metrics (C6)

	ImporterTransactionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "linkproxy_importer_transaction_duration_seconds",
			Help:    "Time to import one document inside its own transaction",
			Buckets: prometheus.DefBuckets,
		},
	)

	ImporterTransactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkproxy_importer_transactions_total",
			Help: "Total import transactions by outcome (committed, rolled_back)",
		},
		[]string{"outcome"},
	)

	// Delta engine metrics (C5)

	DeltaApplyDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "linkproxy_delta_apply_duration_seconds",
			Help:    "Time to apply a delta to a resolved document in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	DeltaOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkproxy_delta_operations_total",
			Help: "Total delta operations applied by operator (add, replace, supplant, invalidate)",
		},
		[]string{"operator"},
	)

	// Pub/sub ingestion loop metrics (C7)

	IngestPollDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "linkproxy_ingest_poll_duration_seconds",
			Help:    "Time spent waiting on the subscriber for the next message",
			Buckets: prometheus.DefBuckets,
		},
	)

	IngestApplyDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "linkproxy_ingest_apply_duration_seconds",
			Help:    "Time spent importing a single decoded pub/sub message",
			Buckets: prometheus.DefBuckets,
		},
	)

	IngestMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkproxy_ingest_messages_total",
			Help: "Total pub/sub messages handled by outcome (applied, invalidate_all, error)",
		},
		[]string{"outcome"},
	)

	IngestReporterDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "linkproxy_ingest_reporter_dropped_total",
			Help: "Total timing reports dropped because the reporter channel was full",
		},
	)

	// Object store gauges (C3), refreshed periodically by Collector

	StoreDocumentsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "linkproxy_store_documents_total",
			Help: "Total documents currently held in the object store",
		},
	)

	StoreObjectsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "linkproxy_store_objects_total",
			Help: "Total content-addressed objects currently held in the object store",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		BulkRequestDuration,
		BulkCacheHitsTotal,
		BulkCacheMissesTotal,
		BulkCacheHitRatio,
		BackendCallDuration,
		BackendCallsTotal,
		ImporterTransactionDuration,
		ImporterTransactionsTotal,
		DeltaApplyDuration,
		DeltaOperationsTotal,
		IngestPollDuration,
		IngestApplyDuration,
		IngestMessagesTotal,
		IngestReporterDroppedTotal,
		StoreDocumentsTotal,
		StoreObjectsTotal,
	)
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// RecordCacheOutcome increments the hit/miss counters for one resolved IRI
// and refreshes the rolling hit ratio gauge from the running totals.
func RecordCacheOutcome(hit bool, runningHits, runningMisses int64) {
	if hit {
		BulkCacheHitsTotal.Inc()
	} else {
		BulkCacheMissesTotal.Inc()
	}
	if total := runningHits + runningMisses; total > 0 {
		BulkCacheHitRatio.Set(float64(runningHits) / float64(total))
	}
}
