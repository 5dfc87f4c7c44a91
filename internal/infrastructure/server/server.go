package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	apihttp "github.com/riffvuln/udh-yappingny/internal/api/http"
	"github.com/riffvuln/udh-yappingny/internal/api/middleware"
	"github.com/riffvuln/udh-yappingny/internal/infrastructure/config"
	"github.com/riffvuln/udh-yappingny/internal/infrastructure/logging"
	"github.com/riffvuln/udh-yappingny/internal/infrastructure/monitoring"
	"github.com/riffvuln/udh-yappingny/internal/infrastructure/resilience"
	"github.com/riffvuln/udh-yappingny/internal/infrastructure/tracing"
	"github.com/riffvuln/udh-yappingny/internal/render"
	"github.com/riffvuln/udh-yappingny/internal/session"
	"github.com/riffvuln/udh-yappingny/internal/webdriver"
)

const serviceName = "udh-yappingny"

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	http     *http.Server
	manager  *session.Manager
	renderer *render.Renderer
	tracer   *tracing.Tracer
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger := logging.NewFromLevel(cfg.Logging.Level, cfg.Logging.Development)

	logger.Info("Initializing render server",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("webdriver_url", cfg.WebDriver.URL),
		zap.String("browser", cfg.WebDriver.Browser),
		zap.String("wait_strategy", cfg.Render.WaitStrategy),
	)

	// Metrics first; the session manager and renderer report into them
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(registry)

	tracer := tracing.New(serviceName, logger)

	client := webdriver.NewClient(webdriver.Config{
		URL:     cfg.WebDriver.URL,
		Timeout: cfg.WebDriver.Timeout,
	})
	factory, err := session.NewWebDriverFactory(client, cfg.WebDriver.Browser, cfg.WebDriver.Headless, cfg.WebDriver.Args)
	if err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to build capabilities: %w", err)
	}

	manager := session.NewManager(factory, logger).WithMetrics(metrics)
	if cfg.Breaker.Enabled {
		manager.WithBreaker(newBreaker(cfg.Breaker, logger))
	}

	renderer := render.NewRenderer(manager, cfg.Render, logger).WithMetrics(metrics)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	if cfg.HTTP.CORSEnabled {
		router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	}

	handlers := apihttp.NewHandlers(renderer, manager, client, metrics, logger)

	router.GET("/", handlers.Root)
	router.POST("/bp", handlers.Render)
	router.GET("/health", handlers.Health)
	if cfg.HTTP.MetricsEnabled {
		router.GET("/metrics", monitoring.Handler(registry))
	}

	logger.Info("Server initialized successfully")

	return &Server{
		router:   router,
		manager:  manager,
		renderer: renderer,
		tracer:   tracer,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
		http: &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

func newBreaker(cfg config.BreakerConfig, logger *logging.Logger) *resilience.Breaker {
	return resilience.New("webdriver", resilience.Settings{
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: resilience.ConsecutiveFailures(cfg.FailureThreshold),
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the HTTP server and blocks until it stops. A server stopped
// by Shutdown returns nil.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server. The browser session is left
// running on the remote end.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	err := s.http.Shutdown(ctx)
	if err != nil {
		s.logger.Error("Failed to shut down HTTP server", zap.Error(err))
	}

	s.tracer.Close()
	_ = s.logger.Sync()

	return err
}
