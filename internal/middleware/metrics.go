package middleware

import (
	"strconv"
	"time"

	"github.com/SscSPs/fx_rates_app/internal/metrics"
	"github.com/gin-gonic/gin"
)

// HTTPMetrics records per-request counters and latency histograms. Paths are
// reported by route template so cardinality stays bounded.
func HTTPMetrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
