package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLoggerRouter(log *slog.Logger, cfg LoggerConfig, requestID gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(requestID)
	r.Use(LoggerWithConfig(log, cfg))

	r.GET("/users/:id", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/users/:id/photos/:photoId", func(c *gin.Context) {
		_ = c.Error(errors.New("photo not found"))
		c.String(http.StatusNotFound, "not found")
	})
	r.GET("/boom", func(c *gin.Context) {
		c.String(http.StatusInternalServerError, "error")
	})
	r.POST("/users", func(c *gin.Context) {
		c.String(http.StatusCreated, "created")
	})
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func logRequest(t *testing.T, cfg LoggerConfig, method, target string) string {
	t.Helper()
	var buf bytes.Buffer
	r := setupLoggerRouter(newTestLogger(&buf), cfg, RequestID())
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, target, nil))
	return buf.String()
}

func TestLogger_LevelByStatus(t *testing.T) {
	tests := []struct {
		method, target, want string
	}{
		{http.MethodGet, "/users/7", "level=INFO"},
		{http.MethodPost, "/users", "level=INFO"},
		{http.MethodGet, "/users/7/photos/3", "level=WARN"},
		{http.MethodGet, "/boom", "level=ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			out := logRequest(t, LoggerConfig{}, tt.method, tt.target)
			assert.Contains(t, out, tt.want)
			assert.Contains(t, out, "msg=request")
		})
	}
}

func TestLogger_ContainsExpectedFields(t *testing.T) {
	out := logRequest(t, LoggerConfig{}, http.MethodPost, "/users")

	for _, field := range []string{"method=POST", "path=/users", "route=/users", "status=201", "bytes=7", "latency=", "client_ip="} {
		assert.Contains(t, out, field)
	}
	assert.NotContains(t, out, "query=")
}

func TestLogger_IncludesRouteAndQuery(t *testing.T) {
	out := logRequest(t, LoggerConfig{}, http.MethodGet, "/users/7?pageNumber=2")

	assert.Contains(t, out, "route=/users/:id")
	assert.Contains(t, out, `query="pageNumber=2"`)
}

func TestLogger_IncludesHandlerErrors(t *testing.T) {
	out := logRequest(t, LoggerConfig{}, http.MethodGet, "/users/7/photos/3")

	assert.Contains(t, out, "photo not found")
}

func TestLogger_SkipPaths(t *testing.T) {
	cfg := LoggerConfig{SkipPaths: []string{"/health"}}

	assert.Empty(t, logRequest(t, cfg, http.MethodGet, "/health"))
	assert.NotEmpty(t, logRequest(t, cfg, http.MethodGet, "/users/7"))
}

func TestLogger_NilLoggerUsesDefault(t *testing.T) {
	r := gin.New()
	r.Use(Logger(nil))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogger_IncludesContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.New(
		logger.WithConsoleWriter(&buf),
		logger.WithConsoleFormat(logger.FormatText),
		logger.WithConsoleColor(false),
		logger.WithLevel(slog.LevelDebug),
		logger.WithMiddleware(logger.ContextMiddleware()),
	)
	require.NoError(t, err)
	defer log.Close()

	r := setupLoggerRouter(log.Logger, LoggerConfig{}, RequestIDWithConfig(RequestIDConfig{TrustUpstream: true}))
	req := httptest.NewRequest(http.MethodGet, "/users/7", nil)
	req.Header.Set(requestIDHeader, "test-req-id-789")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, buf.String(), "test-req-id-789")
	assert.Contains(t, buf.String(), "member_id")
}
