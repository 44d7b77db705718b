// metrics.go records per-request Prometheus metrics.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cigardb/cigardb/internal/telemetry"
)

// MetricsMiddleware records a request counter and a latency histogram for
// every request that passes through the router.
//
// The path label is taken from c.FullPath(), the matched route template
// (e.g. /brands/:id) rather than the raw URL, so label cardinality stays
// bounded. Requests that match no registered route use the literal string
// "<no-route>".
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "<no-route>"
		}

		duration := time.Since(start).Seconds()
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		telemetry.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		telemetry.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}
