// Package metrics defines Prometheus metrics for auditkeeper.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "auditkeeper_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auditkeeper_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auditkeeper_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	RetentionDeletedRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auditkeeper_retention_deleted_rows_total",
			Help: "Rows removed by committed retention purges",
		},
		[]string{"category"},
	)

	RetentionFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auditkeeper_retention_failures_total",
			Help: "Retention purges that failed, by stage",
		},
		[]string{"stage"},
	)

	ExportRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auditkeeper_export_rows_total",
			Help: "Rows written to CSV exports",
		},
		[]string{"category"},
	)

	PoolAcquiredConns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "auditkeeper_db_pool_acquired_connections",
			Help: "Connections currently checked out of the pool",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		RetentionDeletedRows, RetentionFailures, ExportRows,
		PoolAcquiredConns,
	)
}
