package middleware

import (
	"log/slog"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/simp-lee/logger"
)

const (
	requestIDHeader     = "X-Request-ID"
	requestIDContextKey = "request_id"
	memberIDParam       = "id"
)

var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)

// RequestIDConfig controls request-id reuse.
type RequestIDConfig struct {
	// TrustUpstream reuses a well-formed incoming X-Request-ID.
	TrustUpstream bool
}

// RequestID assigns a fresh UUID to every request and ignores upstream ids.
func RequestID() gin.HandlerFunc {
	return RequestIDWithConfig(RequestIDConfig{})
}

// RequestIDWithConfig tags each request with an id. The id is stored on the
// gin context, echoed in the X-Request-ID response header and attached to
// the request context for structured logging. Routes scoped to a member
// (/users/:id/...) also carry a member_id log attribute.
func RequestIDWithConfig(cfg RequestIDConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := ""
		if cfg.TrustUpstream {
			if upstream := c.GetHeader(requestIDHeader); requestIDPattern.MatchString(upstream) {
				id = upstream
			}
		}
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(requestIDContextKey, id)
		c.Header(requestIDHeader, id)

		attrs := []slog.Attr{slog.String("request_id", id)}
		if member := c.Param(memberIDParam); member != "" {
			attrs = append(attrs, slog.String("member_id", member))
		}
		c.Request = c.Request.WithContext(logger.WithContextAttrs(c.Request.Context(), attrs...))

		c.Next()
	}
}

// GetRequestID returns the id set by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	id, _ := c.Get(requestIDContextKey)
	s, _ := id.(string)
	return s
}
