package response

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyRequestID is the Gin context key for the request ID.
const ContextKeyRequestID = "request_id"

const (
	contextKeyStarted  = "request_started"
	headerRequestID    = "X-Request-ID"
	maxRequestIDLength = 128
)

// RequestIDMiddleware tags every request with an ID, reusing a sane
// X-Request-ID from the caller, and records when the request started.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(headerRequestID)
		if !validRequestID(reqID) {
			reqID = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, reqID)
		c.Set(contextKeyStarted, time.Now().UTC())
		c.Header(headerRequestID, reqID)
		c.Next()
	}
}

// RequestID returns the ID assigned to the request, or a fresh one when the
// middleware did not run.
func RequestID(c *gin.Context) string {
	if id := c.GetString(ContextKeyRequestID); id != "" {
		return id
	}
	return uuid.NewString()
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, r := range id {
		if r < 0x21 || r > 0x7e {
			return false
		}
	}
	return true
}
