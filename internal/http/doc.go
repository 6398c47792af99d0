// Package http provides HTTP handlers and routing for the desktop REST API.
//
// This package implements the endpoints using the Gin framework. Window
// operations never fail for unknown ids: they answer 200 with
// "applied": false. Malformed ids and bodies answer 400.
//
// Endpoints:
//   - Health: / and /health
//   - Windows: /windows, /windows/:id/{focus,minimize,maximize,restore}
//   - Geometry: PATCH /windows/:id/geometry
//   - Popout: POST/DELETE /windows/:id/popout, GET /popout/:id (HTML shell)
//   - Desktop: /desktop/mode, /desktop/keys, /desktop/picker
//   - Dock: /dock, /dock/:appKey/click, /dock/:appKey/position
//
// Example Usage:
//
//	handlers := http.NewHandlers(core, dock, picker, logger)
//	http.RegisterRoutes(router, handlers)
package http
