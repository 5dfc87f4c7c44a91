// Package config provides 12-factor configuration management for the render service.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags in cmd/server override the loaded values.
//
// Configuration Sections:
//   - Server: listen host and port (loopback by default)
//   - WebDriver: remote automation endpoint, browser and its arguments
//   - Render: settle delay and wait strategy after navigation
//   - Breaker: circuit breaker around session creation
//   - Logging: log level and output format
//   - HTTP: optional CORS and /metrics
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Listening on %s\n", cfg.Server.Addr())
//
// Environment Variables:
//   - PORT, HOST
//   - WEBDRIVER_URL, WEBDRIVER_BROWSER, WEBDRIVER_HEADLESS, WEBDRIVER_ARGS, WEBDRIVER_TIMEOUT
//   - SETTLE_DELAY, WAIT_STRATEGY, READY_TIMEOUT, READY_POLL
//   - BREAKER_ENABLED, BREAKER_FAILURES, BREAKER_TIMEOUT
//   - LOG_LEVEL, LOG_DEV
//   - CORS_ENABLED, METRICS_ENABLED
package config
