package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records
// nothing, so components can be built without monitoring in tests.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Session metrics
	SessionsCreated   prometheus.Counter
	SessionRecreated  prometheus.Counter
	CreationFailures  prometheus.Counter
	LivenessFailures  prometheus.Counter
	ResetFailures     prometheus.Counter
	SessionGeneration prometheus.Gauge

	// Render metrics
	PhaseDuration *prometheus.HistogramVec
	RenderErrors  *prometheus.CounterVec
	PageBytes     prometheus.Histogram

	// System metrics
	Uptime    prometheus.GaugeFunc
	startTime time.Time

	// Snapshot for the JSON health endpoint
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current values for the JSON health endpoint.
type Snapshot struct {
	TotalRequests int64   `json:"total_requests"`
	TotalErrors   int64   `json:"total_errors"`
	TotalDuration float64 `json:"total_duration_seconds"`
	Renders       int64   `json:"renders"`
	RenderErrors  int64   `json:"render_errors"`
}

// NewMetrics creates a metrics collector registered with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{startTime: time.Now()}

	// HTTP metrics
	m.RequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "render_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	m.RequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "render_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
	m.ResponseSize = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "render_http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 7),
		},
		[]string{"method", "path"},
	)

	// Session metrics
	m.SessionsCreated = factory.NewCounter(prometheus.CounterOpts{
		Name: "render_webdriver_sessions_created_total",
		Help: "Total number of remote browser sessions started",
	})
	m.SessionRecreated = factory.NewCounter(prometheus.CounterOpts{
		Name: "render_webdriver_sessions_recreated_total",
		Help: "Sessions started to replace one that failed its liveness probe",
	})
	m.CreationFailures = factory.NewCounter(prometheus.CounterOpts{
		Name: "render_webdriver_session_creation_failures_total",
		Help: "Failed attempts to start a remote browser session",
	})
	m.LivenessFailures = factory.NewCounter(prometheus.CounterOpts{
		Name: "render_webdriver_liveness_failures_total",
		Help: "Liveness probes that found the current session dead",
	})
	m.ResetFailures = factory.NewCounter(prometheus.CounterOpts{
		Name: "render_webdriver_reset_failures_total",
		Help: "Post-request session resets that failed",
	})
	m.SessionGeneration = factory.NewGauge(prometheus.GaugeOpts{
		Name: "render_webdriver_session_generation",
		Help: "Number of the session currently held in the slot (0 = empty)",
	})

	// Render metrics
	m.PhaseDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "render_phase_duration_seconds",
			Help:    "Duration of each render phase in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"phase"},
	)
	m.RenderErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "render_errors_total",
			Help: "Renders aborted, by failing phase",
		},
		[]string{"phase"},
	)
	m.PageBytes = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "render_page_bytes",
		Help:    "Size of returned page markup in bytes",
		Buckets: prometheus.ExponentialBuckets(1000, 4, 8),
	})

	// System metrics
	m.Uptime = factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "render_uptime_seconds",
			Help: "Service uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, respSize int64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordPhase records how long a render phase took
func (m *Metrics) RecordPhase(phase string, duration time.Duration) {
	if m == nil {
		return
	}
	m.PhaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// RecordRender records the outcome of a full render; failedPhase is empty on success
func (m *Metrics) RecordRender(failedPhase string, pageBytes int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.snapshot.Renders++
	if failedPhase != "" {
		m.snapshot.RenderErrors++
	}
	m.mu.Unlock()

	if failedPhase != "" {
		m.RenderErrors.WithLabelValues(failedPhase).Inc()
		return
	}
	m.PageBytes.Observe(float64(pageBytes))
}

// IncSessionsCreated counts a started session; replacement marks it as a recreation
func (m *Metrics) IncSessionsCreated(replacement bool, generation uint64) {
	if m == nil {
		return
	}
	m.SessionsCreated.Inc()
	if replacement {
		m.SessionRecreated.Inc()
	}
	m.SessionGeneration.Set(float64(generation))
}

// IncCreationFailures increments the failed creation counter
func (m *Metrics) IncCreationFailures() {
	if m == nil {
		return
	}
	m.CreationFailures.Inc()
}

// IncLivenessFailures increments the failed probe counter
func (m *Metrics) IncLivenessFailures() {
	if m == nil {
		return
	}
	m.LivenessFailures.Inc()
}

// IncResetFailures increments the failed reset counter
func (m *Metrics) IncResetFailures() {
	if m == nil {
		return
	}
	m.ResetFailures.Inc()
}

// Snapshot returns a copy of the JSON snapshot
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// UptimeSeconds returns seconds since the collector was created
func (m *Metrics) UptimeSeconds() float64 {
	if m == nil {
		return 0
	}
	return time.Since(m.startTime).Seconds()
}
