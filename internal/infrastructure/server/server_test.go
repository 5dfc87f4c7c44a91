package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riffvuln/udh-yappingny/internal/infrastructure/config"
	"github.com/riffvuln/udh-yappingny/internal/webdriver/webdrivertest"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) (*webdrivertest.Server, *Server) {
	t.Helper()
	remote := webdrivertest.NewServer()
	t.Cleanup(remote.Close)

	cfg := config.Default()
	cfg.WebDriver.URL = remote.URL
	cfg.Render.SettleDelay = time.Millisecond
	cfg.Logging.Level = "error"
	if mutate != nil {
		mutate(cfg)
	}

	srv, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return remote, srv
}

func serve(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))
	return w
}

func TestRoutes(t *testing.T) {
	remote, srv := newTestServer(t, nil)

	w := serve(srv, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Nyari apa bg?", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))

	w = serve(srv, http.MethodPost, "/bp", "https://example.com")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<html")
	assert.Equal(t, 1, remote.Created())

	w = serve(srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"breaker_state":"closed"`)

	w = serve(srv, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "render_webdriver_sessions_created_total")
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestMetricsDisabled(t *testing.T) {
	_, srv := newTestServer(t, func(cfg *config.Config) {
		cfg.HTTP.MetricsEnabled = false
		cfg.HTTP.CORSEnabled = true
	})

	w := serve(srv, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBreakerOpensOnDeadEndpoint(t *testing.T) {
	remote, srv := newTestServer(t, func(cfg *config.Config) {
		cfg.Breaker.FailureThreshold = 2
		cfg.Breaker.OpenTimeout = time.Minute
	})
	remote.FailCreate(true)

	for i := 0; i < 2; i++ {
		w := serve(srv, http.MethodPost, "/bp", "https://example.com")
		require.Equal(t, http.StatusInternalServerError, w.Code)
	}

	w := serve(srv, http.MethodPost, "/bp", "https://example.com")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "WebDriver error: circuit breaker is open", w.Body.String())
}

func TestInvalidBrowser(t *testing.T) {
	cfg := config.Default()
	cfg.WebDriver.Browser = "netscape"

	_, err := NewServer(cfg)
	assert.Error(t, err)
}
