package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"peopleops/internal/logger"
)

const requestIDKey = "requestID"

// RequestID returns the request ID assigned by RequestLogging, or an empty
// string when the middleware is not installed.
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestLogging returns a Gin middleware that logs each request with a unique
// request ID, method, path, status code, latency, and client IP using Zap.
// Health probes are tagged but not logged to keep orchestrator polling out
// of the request log.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := uuid.New().String()
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		if c.FullPath() == "/api/health" {
			c.Next()
			return
		}

		c.Next()

		latency := time.Since(start)
		log := logger.Get()
		log.Infow("request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}
