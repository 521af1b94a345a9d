package middleware

import (
	"strconv"
	"time"

	"github.com/Miraines/MoonyAndStarry/board-service/internal/infra/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latencies labelled by route template,
// so /messages/:id stays a single series.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.RequestCount.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
