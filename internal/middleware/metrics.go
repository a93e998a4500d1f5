package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/frii-edu/examiner-api/internal/service"
)

// Metrics records per-request duration and status. Unmatched routes fall back
// to the raw URL path so 404 traffic is still visible.
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
