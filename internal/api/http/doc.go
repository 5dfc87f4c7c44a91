// Package http provides the HTTP handlers of the render service.
//
// Endpoints:
//   - GET  /        fixed greeting
//   - POST /bp      raw body is a URL; responds with the rendered markup
//   - GET  /health  session slot, lifecycle counters and endpoint status
//
// Render failures answer 500 with a plain text body prefixed by the stage
// that failed: "WebDriver error", "Navigation error" or "Source error".
//
// Example Usage:
//
//	handlers := http.NewHandlers(renderer, manager, client, metrics, logger)
//	router.GET("/", handlers.Root)
//	router.POST("/bp", handlers.Render)
package http
