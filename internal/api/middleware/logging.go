package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// StructuredLogging provides structured JSON logging for all requests.
func StructuredLogging() gin.HandlerFunc {
	return LoggingMiddleware(slog.Default(), "tank-telemetry")
}

// LoggingMiddleware logs one structured record per request, leveled by
// response class.
func LoggingMiddleware(logger *slog.Logger, serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		statusCode := c.Writer.Status()
		var outcome string
		var level slog.Level

		switch {
		case statusCode >= 200 && statusCode < 300:
			outcome = "success"
			level = slog.LevelInfo
		case statusCode >= 400 && statusCode < 500:
			outcome = "client_error"
			level = slog.LevelWarn
		case statusCode >= 500:
			outcome = "server_error"
			level = slog.LevelError
		default:
			outcome = "unknown"
			level = slog.LevelInfo
		}

		attrs := []slog.Attr{
			slog.String("service", serviceName),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status_code", statusCode),
			slog.Int64("duration_ms", time.Since(startTime).Milliseconds()),
			slog.String("outcome", outcome),
		}

		if userID, ok := c.Get("user_id"); ok {
			attrs = append(attrs, slog.Any("user_id", userID))
		}
		if role, ok := c.Get("role"); ok {
			attrs = append(attrs, slog.Any("role", role))
		}
		if correlationID, ok := c.Get("correlation_id"); ok {
			attrs = append(attrs, slog.Any("correlation_id", correlationID))
		}

		logger.LogAttrs(c.Request.Context(), level, "request processed", attrs...)
	}
}
