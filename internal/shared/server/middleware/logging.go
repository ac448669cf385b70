package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"mindwell-backend/internal/shared/telemetry"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"user_id":     UserIDFromContext(c),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if level, ok := c.Get("stressLevel"); ok {
			fields["stress_level"] = level
		}
		if key, ok := c.Get("reportKey"); ok {
			fields["report_key"] = key
		}
		telemetry.Info("request.complete", fields)
	}
}
