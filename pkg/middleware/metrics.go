package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/videoauth/auth-service/pkg/metrics"
)

// MetricsMiddleware records a duration observation, a request count and,
// for 4xx/5xx responses, an error count for every request, labeled by
// method, route pattern and status. The route label uses gin's registered
// pattern (e.g. /usuarios/email/:email) so path parameters do not blow up
// label cardinality. The scrape endpoint itself is excluded.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			// unmatched route; the 404 path is its own label
			route = "unmatched"
		}
		method := c.Request.Method
		code := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestDuration.WithLabelValues(method, route, code).Observe(time.Since(start).Seconds())
		metrics.HTTPRequestsTotal.WithLabelValues(method, route, code).Inc()
		if c.Writer.Status() >= 400 {
			metrics.HTTPRequestErrors.WithLabelValues(method, route, code).Inc()
		}
	}
}
