// Package main is the entry point for the render server.
//
// The server drives one shared browser session on a W3C WebDriver endpoint
// (geckodriver, chromedriver or a Selenium node) and returns rendered page
// markup over HTTP.
//
// Configuration:
//   - Environment variables (see internal/infrastructure/config)
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Serve on 127.0.0.1:8080 against geckodriver on :4444
//	./server
//
//	# Another endpoint and browser, development logging
//	./server --webdriver http://selenium:4444 --browser chrome --dev
//
//	# Probe the endpoint and exit
//	./server check
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
