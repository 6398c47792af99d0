// Package main is the entry point for the desktop server.
//
// The server owns the window registry and the desktop mode, serves the REST
// API and the popout shell pages, and pushes snapshots over /stream.
// Detached windows speak the popout protocol over /popout/ws.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8000 -catalog ./apps
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
