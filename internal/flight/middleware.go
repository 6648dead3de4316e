package flight

import (
	"net/http"

	"corptravel/pkg/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ClientIDHeader = "X-Client-ID"
	clientIDKey    = "client_id"
	maxClientIDLen = 128
)

// ClientIDMiddleware attaches the caller's client id, issuing a new one when the
// header is missing so the UI can reuse it on later calls.
func ClientIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(ClientIDHeader)
		if id == "" || len(id) > maxClientIDLen {
			id = uuid.NewString()
		}
		c.Set(clientIDKey, id)
		c.Header(ClientIDHeader, id)
		c.Next()
	}
}

func ClientID(c *gin.Context) string {
	if id := c.GetString(clientIDKey); id != "" {
		return id
	}
	return c.ClientIP()
}

// RateLimitMiddleware damps bursts per remote IP before any session work happens.
func RateLimitMiddleware(limiter *ratelimit.Keyed) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error: UserMessage(ErrorCodeRateLimited),
				Code:  ErrorCodeRateLimited,
			})
			return
		}
		c.Next()
	}
}
