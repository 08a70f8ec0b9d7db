package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "registrar/internal/core/context"
	"registrar/internal/infrastructure/http/v1/middleware"
)

func TestTrace_PopulatesContextAndHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var got *appctx.TraceContext
	r := gin.New()
	r.Use(middleware.Trace())
	r.GET("/ping", func(c *gin.Context) {
		got = appctx.GetTrace(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(middleware.HeaderTraceID, "trace-from-client")
	req.Header.Set(middleware.HeaderRequestID, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.NotNil(t, got)
	assert.Equal(t, "trace-from-client", got.TraceID)
	assert.Equal(t, "req-42", got.RequestID)
	assert.Len(t, got.SpanID, 16)

	assert.Equal(t, "trace-from-client", w.Header().Get(middleware.HeaderTraceID))
	assert.Equal(t, "req-42", w.Header().Get(middleware.HeaderRequestID))
}

func TestTrace_GeneratesMissingIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(middleware.Trace())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.NotEmpty(t, w.Header().Get(middleware.HeaderTraceID))
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
}
