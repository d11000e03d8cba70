package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger replaces gin.Logger with structured entries. Requests slower
// than slow are logged at Warn.
func RequestLogger(logger *zap.Logger, slow time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		latency := time.Since(start)
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("tenant_id", c.GetString("tenantID")),
			zap.String("correlation_id", c.GetString("correlationID")),
		}
		if slow > 0 && latency > slow {
			logger.Warn("slow request", fields...)
			return
		}
		logger.Info("request", fields...)
	}
}
