package render

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/riffvuln/udh-yappingny/internal/infrastructure/config"
	"github.com/riffvuln/udh-yappingny/internal/infrastructure/logging"
	"github.com/riffvuln/udh-yappingny/internal/infrastructure/monitoring"
	"github.com/riffvuln/udh-yappingny/internal/infrastructure/tracing"
	"github.com/riffvuln/udh-yappingny/internal/session"
)

// Render phases, used as metric labels.
const (
	PhaseAcquire  = "acquire"
	PhaseNavigate = "navigate"
	PhaseSettle   = "settle"
	PhaseExtract  = "extract"
	PhaseReset    = "reset"
)

const documentComplete = "complete"

// Sessions hands out the shared session and cleans it up after use.
// *session.Manager implements it.
type Sessions interface {
	Acquire(ctx context.Context) (session.Driver, error)
	Reset(ctx context.Context, driver session.Driver) error
}

// readyStater is implemented by drivers that can report document.readyState.
type readyStater interface {
	ReadyState(ctx context.Context) (string, error)
}

// Renderer loads pages in the shared session.
type Renderer struct {
	sessions Sessions
	cfg      config.RenderConfig
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewRenderer creates a renderer
func NewRenderer(sessions Sessions, cfg config.RenderConfig, logger *logging.Logger) *Renderer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Renderer{
		sessions: sessions,
		cfg:      cfg,
		logger:   logger.Named("render"),
		sleep:    sleepContext,
	}
}

// WithMetrics adds metrics tracking to the renderer
func (r *Renderer) WithMetrics(metrics *monitoring.Metrics) *Renderer {
	r.metrics = metrics
	return r
}

// Render loads target and returns its markup. The target is passed to the
// browser as is. Errors carry a session.Kind of creation, navigation or
// extraction. A failed reset is logged and does not fail the render.
func (r *Renderer) Render(ctx context.Context, target string) (*Page, error) {
	start := time.Now()
	log := r.logger.With(zap.String("trace_id", string(tracing.GetTraceID(ctx))))

	timer := monitoring.NewTimer(r.metrics, PhaseAcquire)
	driver, err := r.sessions.Acquire(ctx)
	timer.Stop()
	if err != nil {
		log.Error("Error getting WebDriver", zap.Error(err))
		r.metrics.RecordRender(PhaseAcquire, 0)
		return nil, err
	}

	log.Debug("Navigating", zap.String("url", target), zap.String("session_id", driver.ID()))
	timer = monitoring.NewTimer(r.metrics, PhaseNavigate)
	err = driver.Navigate(ctx, target)
	timer.Stop()
	if err != nil {
		log.Error("Error navigating to URL", zap.String("url", target), zap.Error(err))
		r.metrics.RecordRender(PhaseNavigate, 0)
		return nil, session.Wrap(session.KindNavigation, err)
	}

	timer = monitoring.NewTimer(r.metrics, PhaseSettle)
	r.settle(ctx, driver)
	timer.Stop()

	timer = monitoring.NewTimer(r.metrics, PhaseExtract)
	html, err := driver.PageSource(ctx)
	timer.Stop()
	if err != nil {
		log.Error("Error getting page source", zap.String("url", target), zap.Error(err))
		r.metrics.RecordRender(PhaseExtract, 0)
		return nil, session.Wrap(session.KindExtraction, err)
	}

	timer = monitoring.NewTimer(r.metrics, PhaseReset)
	if err := r.sessions.Reset(ctx, driver); err != nil {
		log.Warn("Error resetting driver", zap.String("session_id", driver.ID()), zap.Error(err))
	}
	timer.Stop()

	page := newPage(target, html, time.Since(start))
	r.metrics.RecordRender("", page.Bytes)
	log.Info("Rendered page",
		zap.String("url", target),
		zap.String("title", page.Title),
		zap.Int("bytes", page.Bytes),
		zap.Duration("elapsed", page.Elapsed),
	)
	return page, nil
}

// settle waits for the page between navigation and extraction. Running out
// of time is not an error: extraction proceeds with whatever is loaded.
func (r *Renderer) settle(ctx context.Context, driver session.Driver) {
	rs, ok := driver.(readyStater)
	if r.cfg.WaitStrategy != config.WaitReady || !ok {
		_ = r.sleep(ctx, r.cfg.SettleDelay)
		return
	}

	if err := r.waitReady(ctx, rs); err != nil {
		r.logger.Debug("Page not ready, extracting anyway", zap.Error(err))
	}
}

func (r *Renderer) waitReady(ctx context.Context, rs readyStater) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadyTimeout)
	defer cancel()

	for {
		state, err := rs.ReadyState(ctx)
		if err != nil {
			return fmt.Errorf("read document state: %w", err)
		}
		if state == documentComplete {
			return nil
		}
		if err := r.sleep(ctx, r.cfg.ReadyPoll); err != nil {
			return fmt.Errorf("document state %q: %w", state, err)
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
