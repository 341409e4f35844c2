// README: Request logging middleware with request ids.
package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// Logging tags every request with an id (the client's X-Request-ID when sent)
// and logs one line per request once it completes.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)

		c.Next()
		log.Printf("http: %s %s %d %s caller=%s req=%s", c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start).Round(time.Millisecond), Caller(c), id)
	}
}

// RequestID returns the id Logging assigned to the request.
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
