package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/riffvuln/udh-yappingny/internal/infrastructure/logging"
	"github.com/riffvuln/udh-yappingny/internal/infrastructure/monitoring"
	"github.com/riffvuln/udh-yappingny/internal/infrastructure/resilience"
	"github.com/riffvuln/udh-yappingny/internal/shared/id"
	"github.com/riffvuln/udh-yappingny/internal/webdriver"
)

// Manager holds the single shared browser session.
//
// The mutex guards the slot (read and replace) only. A Driver handed out by
// Acquire is used by the caller without any lock, so concurrent requests may
// drive the same remote session at the same time.
type Manager struct {
	factory Factory
	logger  *logging.Logger
	metrics *monitoring.Metrics
	breaker *resilience.Breaker
	group   singleflight.Group

	mu         sync.Mutex
	current    *entry
	generation uint64

	created          atomic.Uint64
	creationFailures atomic.Uint64
	livenessFailures atomic.Uint64
	resetFailures    atomic.Uint64
}

// entry is one populated state of the slot.
type entry struct {
	driver     Driver
	generation uint64
	label      id.GenerationID
	createdAt  time.Time
}

// Info describes the slot for health reporting.
type Info struct {
	Populated    bool      `json:"populated"`
	SessionID    string    `json:"session_id,omitempty"`
	Generation   uint64    `json:"generation"`
	Label        string    `json:"label,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	BreakerState string    `json:"breaker_state,omitempty"`
}

// Stats holds lifecycle counters.
type Stats struct {
	Created          uint64 `json:"created"`
	CreationFailures uint64 `json:"creation_failures"`
	LivenessFailures uint64 `json:"liveness_failures"`
	ResetFailures    uint64 `json:"reset_failures"`
}

const createKey = "create"

// NewManager creates a manager with an empty slot.
func NewManager(factory Factory, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		factory: factory,
		logger:  logger.Named("session"),
	}
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// WithBreaker routes session creation through breaker
func (m *Manager) WithBreaker(breaker *resilience.Breaker) *Manager {
	m.breaker = breaker
	return m
}

// Acquire returns a live session, creating one when the slot is empty or
// the current session fails its liveness probe. The dead handle is dropped
// without being closed.
func (m *Manager) Acquire(ctx context.Context) (Driver, error) {
	m.mu.Lock()
	cur := m.current
	m.mu.Unlock()

	if cur == nil {
		m.logger.Info("Creating WebDriver session for the first time")
		return m.replace(ctx, nil)
	}

	if _, err := cur.driver.Title(ctx); err != nil {
		m.livenessFailures.Add(1)
		m.metrics.IncLivenessFailures()
		m.logger.Warn("WebDriver session is no longer responsive, creating a new one",
			zap.String("session_id", cur.driver.ID()),
			zap.Uint64("generation", cur.generation),
			zap.Bool("session_gone", webdriver.IsSessionGone(err)),
			zap.Error(Wrap(KindLiveness, err)),
		)
		return m.replace(ctx, cur)
	}

	return cur.driver, nil
}

// replace fills the slot with a new session unless another caller already
// replaced stale. Concurrent callers share one creation.
func (m *Manager) replace(ctx context.Context, stale *entry) (Driver, error) {
	v, err, shared := m.group.Do(createKey, func() (interface{}, error) {
		m.mu.Lock()
		if m.current != nil && m.current != stale {
			fresh := m.current
			m.mu.Unlock()
			return fresh, nil
		}
		m.mu.Unlock()

		start := time.Now()
		driver, err := m.create(ctx)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.generation++
		e := &entry{
			driver:     driver,
			generation: m.generation,
			label:      id.NewGenerationID(),
			createdAt:  time.Now(),
		}
		m.current = e
		m.mu.Unlock()

		m.created.Add(1)
		m.metrics.IncSessionsCreated(stale != nil, e.generation)
		m.logger.Info("WebDriver session ready",
			zap.String("session_id", driver.ID()),
			zap.Uint64("generation", e.generation),
			zap.String("label", e.label.String()),
			zap.Duration("startup", time.Since(start)),
		)
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		m.logger.Debug("Joined in-flight session creation")
	}
	return v.(*entry).driver, nil
}

func (m *Manager) create(ctx context.Context) (Driver, error) {
	var (
		driver Driver
		err    error
	)
	if m.breaker != nil {
		driver, err = resilience.Call(m.breaker, func() (Driver, error) {
			return m.factory.Create(ctx)
		})
	} else {
		driver, err = m.factory.Create(ctx)
	}
	if err != nil {
		m.creationFailures.Add(1)
		m.metrics.IncCreationFailures()
		m.logger.Warn("Failed to create WebDriver session", zap.Error(err))
		return nil, Wrap(KindCreation, err)
	}
	return driver, nil
}

// Reset clears cookies and returns the session to the blank page. The
// session stays in the slot whether or not this succeeds.
func (m *Manager) Reset(ctx context.Context, driver Driver) error {
	if err := driver.DeleteAllCookies(ctx); err != nil {
		return m.resetFailed(err)
	}
	if err := driver.Navigate(ctx, webdriver.BlankPage); err != nil {
		return m.resetFailed(err)
	}
	return nil
}

func (m *Manager) resetFailed(err error) error {
	m.resetFailures.Add(1)
	m.metrics.IncResetFailures()
	return Wrap(KindReset, err)
}

// Current returns the session in the slot without probing it.
func (m *Manager) Current() (Driver, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, false
	}
	return m.current.driver, true
}

// Info describes the slot.
func (m *Manager) Info() Info {
	m.mu.Lock()
	cur := m.current
	m.mu.Unlock()

	info := Info{}
	if m.breaker != nil {
		info.BreakerState = m.breaker.State().String()
	}
	if cur == nil {
		return info
	}
	info.Populated = true
	info.SessionID = cur.driver.ID()
	info.Generation = cur.generation
	info.Label = cur.label.String()
	info.CreatedAt = cur.createdAt
	return info
}

// Stats returns lifecycle counters.
func (m *Manager) Stats() Stats {
	return Stats{
		Created:          m.created.Load(),
		CreationFailures: m.creationFailures.Load(),
		LivenessFailures: m.livenessFailures.Load(),
		ResetFailures:    m.resetFailures.Load(),
	}
}
