package types

import (
	"sort"

	"github.com/GriffinCanCode/webdesk/internal/shared/id"
)

// Position represents window position on the desktop
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size represents window dimensions
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Geometry is a position and size pair
type Geometry struct {
	Position Position `json:"position"`
	Size     Size     `json:"size"`
}

// OpenSpec describes a window to open
type OpenSpec struct {
	Title     string   `json:"title"`
	AppKey    string   `json:"app_key"`
	Position  Position `json:"position"`
	Size      Size     `json:"size"`
	Minimized bool     `json:"minimized"`
	Maximized bool     `json:"maximized"`
}

// Window is one record in the registry
type Window struct {
	ID       id.WindowID `json:"id"`
	Title    string      `json:"title"`
	AppKey   string      `json:"app_key"`
	Position Position    `json:"position"`
	Size     Size        `json:"size"`

	IsMinimized bool `json:"is_minimized"`
	IsMaximized bool `json:"is_maximized"`
	// RestoreGeometry holds the pre-maximize geometry while IsMaximized
	RestoreGeometry *Geometry `json:"restore_geometry,omitempty"`

	ZOrder   int64 `json:"z_order"`
	IsActive bool  `json:"is_active"`

	IsPoppedOut   bool `json:"is_popped_out"`
	PopoutPending bool `json:"popout_pending"`
}

// Visible reports whether the window takes part in normal rendering and
// stacking.
func (w *Window) Visible() bool {
	return !w.IsMinimized && !w.IsPoppedOut
}

// Clone returns a deep copy
func (w *Window) Clone() *Window {
	c := *w
	if w.RestoreGeometry != nil {
		g := *w.RestoreGeometry
		c.RestoreGeometry = &g
	}
	return &c
}

// Snapshot is the read-only state pushed to subscribers after every
// mutation. Windows are ordered by creation.
type Snapshot struct {
	Version  uint64      `json:"version"`
	Mode     string      `json:"mode"`
	ActiveID id.WindowID `json:"active_id,omitempty"`
	Windows  []*Window   `json:"windows"`
}

// Find returns the window with the given id
func (s *Snapshot) Find(wid id.WindowID) (*Window, bool) {
	for _, w := range s.Windows {
		if w.ID == wid {
			return w, true
		}
	}
	return nil, false
}

// Visible returns the render set (not minimized, not popped out) sorted
// back to front.
func (s *Snapshot) Visible() []*Window {
	out := make([]*Window, 0, len(s.Windows))
	for _, w := range s.Windows {
		if w.Visible() {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ZOrder < out[j].ZOrder })
	return out
}

// ByApp returns every window hosting appKey
func (s *Snapshot) ByApp(appKey string) []*Window {
	var out []*Window
	for _, w := range s.Windows {
		if w.AppKey == appKey {
			out = append(out, w)
		}
	}
	return out
}

// Stats contains registry statistics
type Stats struct {
	TotalWindows     int         `json:"total_windows"`
	VisibleWindows   int         `json:"visible_windows"`
	MinimizedWindows int         `json:"minimized_windows"`
	PoppedOut        int         `json:"popped_out"`
	PendingPopouts   int         `json:"pending_popouts"`
	ActiveID         id.WindowID `json:"active_id,omitempty"`
}

// Stats derives counters from the snapshot
func (s *Snapshot) Stats() Stats {
	st := Stats{TotalWindows: len(s.Windows), ActiveID: s.ActiveID}
	for _, w := range s.Windows {
		switch {
		case w.IsPoppedOut:
			st.PoppedOut++
		case w.IsMinimized:
			st.MinimizedWindows++
		default:
			st.VisibleWindows++
		}
		if w.PopoutPending {
			st.PendingPopouts++
		}
	}
	return st
}

// DockItem is one launcher entry derived from the catalog and the registry
type DockItem struct {
	AppKey    string `json:"app_key"`
	Title     string `json:"title"`
	Icon      string `json:"icon,omitempty"`
	IsRunning bool   `json:"is_running"`
	IsActive  bool   `json:"is_active"`
	Position  int    `json:"position"`
}
