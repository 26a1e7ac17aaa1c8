package middleware

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"mindgarden/backend/internal/metrics"
)

// RequestLogger logs each request and feeds the HTTP metrics. Routes are
// labeled by their pattern, unmatched paths as "unmatched".
func RequestLogger(logger *log.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		m.ObserveRequest(c.Request.Method, route, status, elapsed)

		fields := []any{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"elapsed", elapsed,
		}
		if userID := UserID(c); userID != "" {
			fields = append(fields, "userID", userID)
		}
		switch {
		case status >= 500:
			logger.Error("request", fields...)
		case status >= 400:
			logger.Warn("request", fields...)
		default:
			logger.Debug("request", fields...)
		}
	}
}
