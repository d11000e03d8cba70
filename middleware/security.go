package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const CorrelationHeader = "X-Correlation-ID"

// SecurityHeaders sets the response headers every endpoint shares and makes sure
// each request carries a correlation id.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationHeader)
		if id == "" || len(id) > 128 {
			id = uuid.New().String()
		}
		c.Set("correlationID", id)

		h := c.Writer.Header()
		h.Set(CorrelationHeader, id)
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Cache-Control", "no-store")
		c.Next()
	}
}
