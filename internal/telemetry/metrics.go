// Package telemetry provides application-level observability for CigarDB.
//
// All metrics are registered against the default Prometheus registry and are
// served on the side-channel HTTP server started by main.go:
//
//	GET http://<host>:<CDB_TELEMETRY_METRICS_PROMETHEUS_PORT>/metrics
//
// Default port: 9090. The endpoint is not reachable through the public API
// ingress and is therefore exempt from API-key authentication and throttling.
//
// HTTP metrics use c.FullPath() (route template such as /brands/:id) rather
// than the raw request URL to prevent unbounded label cardinality from
// user-supplied path segments.
package telemetry

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPRequestsTotal counts requests by method, route template, and status code.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests processed, labelled by method, route template, and status code.",
	},
	[]string{"method", "path", "status"},
)

// HTTPRequestDuration observes request latency by method and route template.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds, labelled by method and route template.",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method", "path"},
)

// ModerationDecisionsTotal counts write submissions by entity type, operation,
// and routing outcome ("applied" for direct moderator writes, "queued" for
// pending-request submissions).
var ModerationDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "moderation_decisions_total",
		Help: "Write submissions routed by the moderation policy, labelled by entity type, operation, and outcome.",
	},
	[]string{"entity", "operation", "outcome"},
)

// ModerationResolutionsTotal counts moderator approve/deny resolutions by
// entity type, request kind, and resolution.
var ModerationResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "moderation_resolutions_total",
		Help: "Moderator resolutions of queued requests, labelled by entity type, request kind, and resolution.",
	},
	[]string{"entity", "kind", "resolution"},
)

// QuotaRejectionsTotal counts requests rejected because a key exceeded its
// daily quota.
var QuotaRejectionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "quota_rejections_total",
		Help: "Requests rejected because the API key exceeded its daily quota.",
	},
)

// ThrottleRejectionsTotal counts requests rejected by the burst throttle
// before authentication.
var ThrottleRejectionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "throttle_rejections_total",
		Help: "Requests rejected by the pre-authentication burst throttle.",
	},
)

// VocabularyCacheHits counts vocabulary lookups served from the Redis cache
// versus read through to the database.
var VocabularyCacheHits = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "vocabulary_cache_lookups_total",
		Help: "Vocabulary lookups by result (hit, miss, bypass).",
	},
	[]string{"result"},
)

// DB connection pool gauges, polled by StartDBStatsCollector.
var (
	dbOpenConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Number of established connections both in use and idle.",
	})
	dbInUseConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "db_in_use_connections",
		Help: "Number of connections currently in use.",
	})
	dbIdleConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "db_idle_connections",
		Help: "Number of idle connections.",
	})
	dbWaitCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "db_wait_count_total",
		Help: "Total number of connections waited for.",
	})
)

// StartDBStatsCollector polls sql.DB pool statistics every 30 seconds and
// exports them as gauges. The goroutine runs for the lifetime of the process.
func StartDBStatsCollector(db *sql.DB) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			stats := db.Stats()
			dbOpenConnections.Set(float64(stats.OpenConnections))
			dbInUseConnections.Set(float64(stats.InUse))
			dbIdleConnections.Set(float64(stats.Idle))
			dbWaitCount.Set(float64(stats.WaitCount))
		}
	}()
	slog.Info("database pool statistics collector started")
}
