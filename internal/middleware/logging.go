// Package middleware provides the gin middleware shared by all routes.
package middleware

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ChiriacCasian/eventorganizer/internal/metrics"
)

// RequestLogger logs every request with its route, status and duration, and
// feeds the request-duration histogram. Streaming routes (long-poll, SSE)
// log like any other request; their duration is simply the time the
// connection stayed open.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		duration := time.Since(start)

		metrics.RequestDuration.WithLabelValues(
			c.Request.Method, route, strconv.Itoa(status),
		).Observe(duration.Seconds())

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", duration.Milliseconds(),
			"remote_addr", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			slog.Warn("request failed", append(attrs, "errors", c.Errors.String())...)
			return
		}
		slog.Info("request completed", attrs...)
	}
}
