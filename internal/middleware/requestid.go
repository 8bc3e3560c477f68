package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"accounts-be/internal/logging"
)

const RequestIDHeader = "X-Request-ID"

const maxRequestIDLen = 128

// RequestID keeps a sane inbound X-Request-ID or generates a UUID, and
// echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}

		c.Set(logging.RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
