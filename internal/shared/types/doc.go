// Package types provides shared data structures for the desktop service.
//
// Core Types:
//   - Window: one window record in the registry
//   - Position, Size: window geometry
//   - OpenSpec: parameters for opening a window
//   - Snapshot: read-only view of every window plus the desktop mode
//   - DockItem: derived launcher entry
//
// Request Types:
//   - OpenRequest, GeometryRequest, ModeRequest, KeyRequest: HTTP bodies
//
// Example Usage:
//
//	snap := core.Snapshot()
//	for _, w := range snap.Visible() {
//	    fmt.Println(w.ID, w.Title, w.ZOrder)
//	}
package types
