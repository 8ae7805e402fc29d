//go:build unit

package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkout-service/internal/handler/middleware"
	"checkout-service/internal/pkg/config"
)

func TestLoggingMiddlewareUsesProvidedLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := gin.New()
	r.Use(middleware.LoggingMiddleware(logger, config.LogConfig{Level: "info"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, err := http.NewRequest(http.MethodGet, "/ping", nil)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	out := buf.String()
	assert.Contains(t, out, "Request started")
	assert.Contains(t, out, "Request completed")
	assert.Contains(t, out, "request_id")
	assert.Contains(t, out, "status_code=200")
}
