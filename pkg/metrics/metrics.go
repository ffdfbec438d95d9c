package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request latency (seconds)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Database query latency (seconds)
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "table"},
	)

	// MQ consume latency (milliseconds)
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	// Notifications created
	NotificationCreatedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_created_count",
			Help: "Total number of notifications created",
		},
		[]string{"type", "source"}, // source: api, event, scheduler
	)

	// Notifications marked read
	NotificationReadCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_read_count",
			Help: "Total number of notifications marked as read",
		},
	)

	// Notifications removed by the cleanup job
	NotificationCleanupDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_cleanup_deleted_total",
			Help: "Total number of notifications removed by cleanup",
		},
	)

	// Expiry scanner findings
	ExpiryScanFindings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "expiry_scan_findings_total",
			Help: "Total number of expiring records found by the scanner",
		},
		[]string{"kind"}, // kind: contract, license
	)

	// Slow queries
	SlowQueryCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "db_slow_query_total",
			Help: "Total number of queries slower than the configured threshold",
		},
	)
)

// RecordHTTPRequestDuration records the latency of one HTTP request.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordDBQueryDuration records the latency of one database query.
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordMQConsumeLatency records the handling latency of one MQ message.
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

// IncrementNotificationCreated counts a created notification.
func IncrementNotificationCreated(notificationType, source string) {
	NotificationCreatedCount.WithLabelValues(notificationType, source).Inc()
}

// IncrementSlowQuery counts a slow query.
func IncrementSlowQuery() {
	SlowQueryCount.Inc()
}
