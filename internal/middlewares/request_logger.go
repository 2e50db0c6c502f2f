package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopmonkeyus/go-common/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with an id, reusing the caller's when sent.
func RequestID(c *gin.Context) {
	id := c.GetHeader(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set("requestId", id)
	c.Header(RequestIDHeader, id)

	c.Next()
}

func RequestLogger(log logger.Logger) gin.HandlerFunc {
	log = log.WithPrefix("[http]")
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		status := c.Writer.Status()
		id := c.GetString("requestId")
		line := "%s %s %d %s request_id=%s"
		switch {
		case status >= 500:
			log.Error(line, c.Request.Method, c.Request.URL.Path, status, time.Since(started), id)
		case status >= 400:
			log.Warn(line, c.Request.Method, c.Request.URL.Path, status, time.Since(started), id)
		default:
			log.Debug(line, c.Request.Method, c.Request.URL.Path, status, time.Since(started), id)
		}
	}
}
