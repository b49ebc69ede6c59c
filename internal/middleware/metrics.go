package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/eduflow-api/internal/service"
)

const unmatchedRoute = "unmatched"

// Metrics observes request latency and status per route template. Requests
// that match no route share one label so scanners cannot inflate cardinality.
// The scrape endpoint itself is not observed.
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
