package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/riffvuln/udh-yappingny/internal/infrastructure/logging"
	"github.com/riffvuln/udh-yappingny/internal/infrastructure/monitoring"
	"github.com/riffvuln/udh-yappingny/internal/render"
	"github.com/riffvuln/udh-yappingny/internal/session"
	"github.com/riffvuln/udh-yappingny/internal/webdriver"
)

// Greeting is the body served at the root route.
const Greeting = "Nyari apa bg?"

const statusProbeTimeout = 3 * time.Second

// Renderer loads a page and returns its markup.
type Renderer interface {
	Render(ctx context.Context, target string) (*render.Page, error)
}

// SessionInspector reports on the shared session slot.
type SessionInspector interface {
	Info() session.Info
	Stats() session.Stats
}

// StatusProber queries the remote end's readiness.
type StatusProber interface {
	Status(ctx context.Context) (*webdriver.Status, error)
}

// Handlers contains all HTTP handlers
type Handlers struct {
	renderer Renderer
	sessions SessionInspector
	prober   StatusProber
	metrics  *monitoring.Metrics
	logger   *logging.Logger
}

// NewHandlers creates a new handler set. prober and metrics may be nil.
func NewHandlers(
	renderer Renderer,
	sessions SessionInspector,
	prober StatusProber,
	metrics *monitoring.Metrics,
	logger *logging.Logger,
) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{
		renderer: renderer,
		sessions: sessions,
		prober:   prober,
		metrics:  metrics,
		logger:   logger.Named("http"),
	}
}

// Root answers with the fixed greeting
func (h *Handlers) Root(c *gin.Context) {
	c.String(http.StatusOK, Greeting)
}

// Render loads the URL carried in the raw request body and returns the
// rendered markup. The body is handed to the browser unvalidated.
func (h *Handlers) Render(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.String(http.StatusBadRequest, "Body error: %v", err)
		return
	}
	target := string(body)
	h.logger.Info("Request body", zap.String("body", target))

	// A disconnected client must not abandon the shared session mid-render.
	ctx := context.WithoutCancel(c.Request.Context())

	page, err := h.renderer.Render(ctx, target)
	if err != nil {
		c.String(http.StatusInternalServerError, errorBody(err))
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page.HTML))
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	resp := gin.H{
		"status":         "healthy",
		"session":        h.sessions.Info(),
		"stats":          h.sessions.Stats(),
		"metrics":        h.metrics.Snapshot(),
		"uptime_seconds": h.metrics.UptimeSeconds(),
	}

	if h.prober != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), statusProbeTimeout)
		defer cancel()

		st, err := h.prober.Status(ctx)
		if err != nil {
			resp["webdriver"] = gin.H{"reachable": false, "error": err.Error()}
		} else {
			resp["webdriver"] = gin.H{"reachable": true, "ready": st.Ready, "message": st.Message}
		}
	}

	c.JSON(http.StatusOK, resp)
}

// errorBody formats a render failure as "<Stage> error: <cause>".
func errorBody(err error) string {
	prefix := "WebDriver error"
	cause := err

	var sessErr *session.Error
	if errors.As(err, &sessErr) {
		switch sessErr.Kind {
		case session.KindNavigation:
			prefix = "Navigation error"
		case session.KindExtraction:
			prefix = "Source error"
		}
		if sessErr.Err != nil {
			cause = sessErr.Err
		}
	}

	return fmt.Sprintf("%s: %v", prefix, cause)
}
