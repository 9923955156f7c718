package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Prometheus metrics for the ETL jobs

var (
	// Upstream API metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopslab_api_calls_total",
			Help: "Total number of upstream API calls",
		},
		[]string{"provider", "endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hoopslab_api_call_duration_seconds",
			Help:    "Duration of upstream API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "endpoint"},
	)

	APIRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopslab_api_retries_total",
			Help: "Total number of retried upstream operations",
		},
		[]string{"operation"},
	)

	// Warehouse metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopslab_db_queries_total",
			Help: "Total number of warehouse queries",
		},
		[]string{"operation", "table", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hoopslab_db_query_duration_seconds",
			Help:    "Duration of warehouse queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hoopslab_db_connections_active",
			Help: "Number of active warehouse connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hoopslab_db_connections_idle",
			Help: "Number of idle warehouse connections",
		},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hoopslab_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hoopslab_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hoopslab_cache_operation_duration_seconds",
			Help:    "Duration of cache operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// Job metrics
	JobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopslab_job_runs_total",
			Help: "Total number of job runs",
		},
		[]string{"job", "status"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hoopslab_job_duration_seconds",
			Help:    "Duration of job runs in seconds",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"job"},
	)

	LastSuccessfulRun = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hoopslab_last_successful_run_timestamp",
			Help: "Timestamp of the last successful job run",
		},
		[]string{"job"},
	)

	RowsWritten = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hoopslab_rows_written",
			Help: "Rows written per table by the last nightly run",
		},
		[]string{"table"},
	)

	ArtifactBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hoopslab_artifact_bytes",
			Help: "Size of the last committed SQL artifact",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopslab_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hoopslab_system_uptime_seconds",
			Help: "Scheduler uptime in seconds",
		},
	)
)

// RecordAPICall records an upstream API call metric
func RecordAPICall(provider, endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(provider, endpoint, status).Inc()
	APICallDuration.WithLabelValues(provider, endpoint).Observe(duration)
}

// RecordRetry records a retried upstream operation
func RecordRetry(operation string) {
	APIRetriesTotal.WithLabelValues(operation).Inc()
}

// RecordDBQuery records a warehouse query metric
func RecordDBQuery(operation, table, status string, duration float64) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration)
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordCacheOperation records a cache operation duration
func RecordCacheOperation(operation string, duration float64) {
	CacheOperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordJob records a job run
func RecordJob(job, status string, duration float64) {
	JobRunsTotal.WithLabelValues(job, status).Inc()
	JobDuration.WithLabelValues(job).Observe(duration)

	if status == "success" {
		LastSuccessfulRun.WithLabelValues(job).SetToCurrentTime()
	}
}

// RecordRowsWritten records the row count written for a table
func RecordRowsWritten(table string, rows int) {
	RowsWritten.WithLabelValues(table).Set(float64(rows))
}

// RecordArtifact records the committed artifact size
func RecordArtifact(bytes int64) {
	ArtifactBytes.Set(float64(bytes))
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// UpdateDBConnectionStats updates warehouse connection pool statistics
func UpdateDBConnectionStats(active, idle int32) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}

// Push sends the job collectors to a Pushgateway. Batch runs exit before a
// scrape could happen, so they report this way instead.
func Push(ctx context.Context, gatewayURL, job string) error {
	pusher := push.New(gatewayURL, job).
		Collector(JobRunsTotal).
		Collector(JobDuration).
		Collector(LastSuccessfulRun).
		Collector(RowsWritten).
		Collector(ArtifactBytes).
		Collector(APICallsTotal).
		Collector(APIRetriesTotal).
		Collector(ErrorsTotal)

	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
