package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/syshair/backend/internal/metrics"
)

// PrometheusMiddleware records request count and latency per route pattern.
func PrometheusMiddleware(m metrics.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// the route pattern keeps label cardinality bounded
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
