package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/simp-lee/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func requestIDRouter(cfg RequestIDConfig) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDWithConfig(cfg))
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})
	r.GET("/users/:id/messages", func(c *gin.Context) {
		attrs := logger.FromContext(c.Request.Context())
		c.String(http.StatusOK, findAttrValue(attrs, "request_id")+"|"+findAttrValue(attrs, "member_id"))
	})
	return r
}

func findAttrValue(attrs []slog.Attr, key string) string {
	for _, a := range attrs {
		if a.Key == key {
			return a.Value.String()
		}
	}
	return ""
}

func serveWithRequestID(r *gin.Engine, path, upstream string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if upstream != "" {
		req.Header.Set(requestIDHeader, upstream)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID_GeneratesUUID(t *testing.T) {
	w := serveWithRequestID(requestIDRouter(RequestIDConfig{}), "/test", "")

	require.Equal(t, http.StatusOK, w.Code)
	id := w.Body.String()
	_, err := uuid.Parse(id)
	assert.NoError(t, err, "request id %q is not a UUID", id)
	assert.Equal(t, id, w.Header().Get(requestIDHeader))
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	r := requestIDRouter(RequestIDConfig{})
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := serveWithRequestID(r, "/test", "").Body.String()
		require.False(t, seen[id], "duplicate request id %q", id)
		seen[id] = true
	}
}

func TestRequestID_UpstreamHeader(t *testing.T) {
	tests := []struct {
		name     string
		trust    bool
		upstream string
		reused   bool
	}{
		{"ignored by default", false, "upstream-id-123", false},
		{"trusted and valid", true, "upstream-id-123", true},
		{"trusted at 64 chars", true, strings.Repeat("a", 64), true},
		{"trusted but too long", true, strings.Repeat("a", 65), false},
		{"trusted but bad charset", true, "bad_id", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveWithRequestID(requestIDRouter(RequestIDConfig{TrustUpstream: tt.trust}), "/test", tt.upstream)

			got := w.Body.String()
			if tt.reused {
				assert.Equal(t, tt.upstream, got)
				return
			}
			assert.NotEqual(t, tt.upstream, got)
			_, err := uuid.Parse(got)
			assert.NoError(t, err)
		})
	}
}

func TestRequestID_ContextCarriesMemberID(t *testing.T) {
	w := serveWithRequestID(requestIDRouter(RequestIDConfig{TrustUpstream: true}), "/users/42/messages", "ctx-test-456")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ctx-test-456|42", w.Body.String())
}

func TestRequestID_NoMemberIDOutsideMemberRoutes(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, findAttrValue(logger.FromContext(c.Request.Context()), "member_id"))
	})

	w := serveWithRequestID(r, "/health", "")
	assert.Empty(t, w.Body.String())
}

func TestGetRequestID_Empty(t *testing.T) {
	r := gin.New()
	r.GET("/no-id", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := serveWithRequestID(r, "/no-id", "")
	assert.Empty(t, w.Body.String())
}
