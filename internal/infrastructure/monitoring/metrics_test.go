package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordHTTPRequest("GET", "/", "200", time.Millisecond, 10)
		m.RecordPhase("navigate", time.Millisecond)
		m.RecordRender("", 100)
		m.IncSessionsCreated(true, 2)
		m.IncCreationFailures()
		m.IncLivenessFailures()
		m.IncResetFailures()
		NewTimer(m, "extract").Stop()
	})
	assert.Equal(t, Snapshot{}, m.Snapshot())
}

func TestSessionCounters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.IncSessionsCreated(false, 1)
	m.IncSessionsCreated(true, 2)
	m.IncLivenessFailures()
	m.IncResetFailures()
	m.IncCreationFailures()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionRecreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionGeneration))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LivenessFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ResetFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CreationFailures))
}

func TestRecordRender(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordRender("", 2048)
	m.RecordRender("navigate", 0)

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Renders)
	assert.Equal(t, int64(1), snap.RenderErrors)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RenderErrors.WithLabelValues("navigate")))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.GET("/metrics", Handler(reg))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.TotalRequests)
	assert.Equal(t, int64(1), snap.TotalErrors)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "render_http_requests_total"))
	assert.Contains(t, w.Body.String(), "render_uptime_seconds")
}
