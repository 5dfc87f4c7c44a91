// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Components take a *Logger and scope it with Named, so session churn,
// render phases and HTTP traffic are distinguishable in the output.
//
// Example Usage:
//
//	logger := logging.NewFromLevel("info", false)
//	logger.Info("Server starting", zap.String("addr", "127.0.0.1:8080"))
//	logger.Error("Failed to create session", zap.Error(err))
package logging
