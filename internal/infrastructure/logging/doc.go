// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: colored console output for human readability
//
// Components take a plain *zap.Logger; use Component to derive a named
// child from the process logger.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	core := desktop.New(cfg, desktop.WithLogger(logger.Component("desktop")))
//	logger.Info("Server starting", zap.String("port", "8000"))
package logging
