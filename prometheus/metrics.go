package prometheus

import (
	"time"

	"practice-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthSuccessCounter  prometheus.Counter
	AuthErrorsCounter   prometheus.Counter

	// Tenant context metrics
	TenantContextMissingCounter prometheus.Counter

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Entity operation metrics, labelled by entity family and operation
	EntityOperationsCounter prometheus.CounterVec

	// Activity log metrics
	ActivityLogAppendedCounter prometheus.CounterVec
	ActivityDecodeErrorCounter prometheus.CounterVec

	// Export metrics
	ExportCounter prometheus.CounterVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(cfg *config.Config) {
	prefix := cfg.Metrics.Prefix

	AuthAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
	)

	AuthSuccessCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_success_total",
			Help: "Total number of successful authentications",
		},
	)

	AuthErrorsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors",
		},
	)

	TenantContextMissingCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_tenant_context_missing_total",
			Help: "Total number of requests without tenant context",
		},
	)

	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	EntityOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_entity_operations_total",
			Help: "Total number of entity operations",
		},
		[]string{"entity", "operation"},
	)

	ActivityLogAppendedCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_activity_log_appended_total",
			Help: "Total number of activity log entries appended",
		},
		[]string{"entity"},
	)

	ActivityDecodeErrorCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_activity_decode_errors_total",
			Help: "Total number of activity log entries that failed to decode",
		},
		[]string{"entity"},
	)

	ExportCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_exports_total",
			Help: "Total number of export operations",
		},
		[]string{"entity", "file_type"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordEntityOperation increments the counter for an entity operation
func RecordEntityOperation(entity, operation string) {
	EntityOperationsCounter.WithLabelValues(entity, operation).Inc()
}

// RecordAuthError increments the auth errors counter
func RecordAuthError() {
	AuthErrorsCounter.Inc()
}

// RecordActivityAppended increments the activity log appended counter
func RecordActivityAppended(entity string) {
	ActivityLogAppendedCounter.WithLabelValues(entity).Inc()
}

// RecordActivityDecodeError increments the activity decode error counter
func RecordActivityDecodeError(entity string) {
	ActivityDecodeErrorCounter.WithLabelValues(entity).Inc()
}

// RecordExport increments the export counter
func RecordExport(entity, fileType string) {
	ExportCounter.WithLabelValues(entity, fileType).Inc()
}
