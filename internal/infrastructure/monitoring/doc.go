/*
Package monitoring provides Prometheus metrics for the render service.

# Overview

Metrics cover the HTTP surface, the lifecycle of the shared browser session
(creations, recreations, failed probes, failed resets) and the duration of
each render phase.

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", monitoring.Handler(reg))

	timer := monitoring.NewTimer(metrics, "navigate")
	// ... drive the session ...
	timer.Stop()

All recording methods accept a nil *Metrics.
*/
package monitoring
