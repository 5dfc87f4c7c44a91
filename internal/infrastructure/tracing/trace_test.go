package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riffvuln/udh-yappingny/internal/infrastructure/logging"
)

func TestStartSpanContinuesTrace(t *testing.T) {
	tracer := New("test", logging.NewNop())
	defer tracer.Close()

	root, ctx := tracer.StartSpan(context.Background(), "root")
	assert.True(t, strings.HasPrefix(string(root.TraceID), "req_"))
	assert.True(t, strings.HasPrefix(string(root.SpanID), "span_"))
	assert.Empty(t, root.ParentID)

	child, ctx := tracer.StartSpan(ctx, "child")
	assert.Equal(t, root.TraceID, child.TraceID)
	assert.Equal(t, root.SpanID, child.ParentID)
	assert.Equal(t, child.SpanID, GetSpanID(ctx))

	child.Finish()
	root.Finish()
	tracer.Submit(child)
	tracer.Submit(root)
}

func TestSubmitAfterClose(t *testing.T) {
	tracer := New("test", nil)
	span, _ := tracer.StartSpan(context.Background(), "late")
	tracer.Close()
	tracer.Close()

	assert.NotPanics(t, func() { tracer.Submit(span) })
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer := New("test", logging.NewNop())
	defer tracer.Close()

	var seen TraceID
	router := gin.New()
	router.Use(HTTPMiddleware(tracer))
	router.GET("/", func(c *gin.Context) {
		seen = GetTraceID(c.Request.Context())
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, seen)
	assert.Equal(t, string(seen), w.Header().Get(HeaderTraceID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderTraceID, "req_upstream")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, TraceID("req_upstream"), seen)
	assert.Equal(t, "req_upstream", w.Header().Get(HeaderTraceID))
}

func TestFormatTrace(t *testing.T) {
	assert.Equal(t, "[trace:a span:b]", FormatTrace("a", "b"))
}
