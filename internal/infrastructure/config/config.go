package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Wait strategies applied between navigation and source retrieval.
const (
	WaitFixed = "fixed"
	WaitReady = "ready"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	WebDriver WebDriverConfig
	Render    RenderConfig
	Breaker   BreakerConfig
	Logging   LogConfig
	HTTP      HTTPConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
	Host string `envconfig:"HOST" default:"127.0.0.1"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// WebDriverConfig holds the remote automation endpoint settings.
type WebDriverConfig struct {
	URL      string        `envconfig:"WEBDRIVER_URL" default:"http://localhost:4444"`
	Browser  string        `envconfig:"WEBDRIVER_BROWSER" default:"firefox"`
	Headless bool          `envconfig:"WEBDRIVER_HEADLESS" default:"true"`
	Args     []string      `envconfig:"WEBDRIVER_ARGS" default:"--no-sandbox,--disable-dev-shm-usage"`
	Timeout  time.Duration `envconfig:"WEBDRIVER_TIMEOUT" default:"60s"`
}

// RenderConfig controls the wait between navigation and extraction.
type RenderConfig struct {
	SettleDelay  time.Duration `envconfig:"SETTLE_DELAY" default:"500ms"`
	WaitStrategy string        `envconfig:"WAIT_STRATEGY" default:"fixed"`
	ReadyTimeout time.Duration `envconfig:"READY_TIMEOUT" default:"10s"`
	ReadyPoll    time.Duration `envconfig:"READY_POLL" default:"100ms"`
}

// BreakerConfig guards session creation against a dead endpoint.
type BreakerConfig struct {
	Enabled          bool          `envconfig:"BREAKER_ENABLED" default:"true"`
	FailureThreshold uint32        `envconfig:"BREAKER_FAILURES" default:"5"`
	OpenTimeout      time.Duration `envconfig:"BREAKER_TIMEOUT" default:"10s"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// HTTPConfig toggles optional parts of the HTTP surface.
type HTTPConfig struct {
	CORSEnabled    bool `envconfig:"CORS_ENABLED" default:"false"`
	MetricsEnabled bool `envconfig:"METRICS_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate rejects values the service cannot run with.
func (c *Config) Validate() error {
	switch c.WebDriver.Browser {
	case "firefox", "chrome":
	default:
		return fmt.Errorf("unsupported browser %q (want firefox or chrome)", c.WebDriver.Browser)
	}
	switch c.Render.WaitStrategy {
	case WaitFixed, WaitReady:
	default:
		return fmt.Errorf("unsupported wait strategy %q (want %s or %s)", c.Render.WaitStrategy, WaitFixed, WaitReady)
	}
	if c.WebDriver.URL == "" {
		return fmt.Errorf("webdriver url is required")
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
			Host: "127.0.0.1",
		},
		WebDriver: WebDriverConfig{
			URL:      "http://localhost:4444",
			Browser:  "firefox",
			Headless: true,
			Args:     []string{"--no-sandbox", "--disable-dev-shm-usage"},
			Timeout:  60 * time.Second,
		},
		Render: RenderConfig{
			SettleDelay:  500 * time.Millisecond,
			WaitStrategy: WaitFixed,
			ReadyTimeout: 10 * time.Second,
			ReadyPoll:    100 * time.Millisecond,
		},
		Breaker: BreakerConfig{
			Enabled:          true,
			FailureThreshold: 5,
			OpenTimeout:      10 * time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		HTTP: HTTPConfig{
			CORSEnabled:    false,
			MetricsEnabled: true,
		},
	}
}
