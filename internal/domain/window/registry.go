package window

import (
	"github.com/GriffinCanCode/webdesk/internal/shared/id"
	"github.com/GriffinCanCode/webdesk/internal/shared/types"
)

// CloseResult reports what Close did
type CloseResult int

const (
	// CloseNoop means the id was unknown
	CloseNoop CloseResult = iota
	// CloseRemoved means the record was deleted
	CloseRemoved
	// CloseDeferred means the record is popped out; only the detached
	// context may confirm its removal
	CloseDeferred
)

// String returns a string representation of the close result
func (r CloseResult) String() string {
	switch r {
	case CloseNoop:
		return "noop"
	case CloseRemoved:
		return "removed"
	case CloseDeferred:
		return "deferred"
	default:
		return "unknown"
	}
}

// Registry is the authoritative store of window records and z-order.
//
// Registry is not safe for concurrent use. It is owned by exactly one
// writer (the desktop core), which serialises every call.
type Registry struct {
	windows  map[id.WindowID]*types.Window
	order    []id.WindowID
	counter  int64
	activeID id.WindowID
	viewport types.Size
	newID    func() id.WindowID
}

// Option configures a Registry
type Option func(*Registry)

// WithIDSource overrides id allocation
func WithIDSource(fn func() id.WindowID) Option {
	return func(r *Registry) { r.newID = fn }
}

// NewRegistry creates an empty registry for the given viewport. Maximized
// windows fill the viewport.
func NewRegistry(viewport types.Size, opts ...Option) *Registry {
	r := &Registry{
		windows:  make(map[id.WindowID]*types.Window),
		viewport: viewport,
		newID:    id.NewWindowID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Viewport returns the full-desktop geometry used by Maximize
func (r *Registry) Viewport() types.Size {
	return r.viewport
}

// SetViewport changes the viewport. Maximized windows are resized to it.
func (r *Registry) SetViewport(size types.Size) {
	r.viewport = size
	for _, w := range r.windows {
		if w.IsMaximized {
			w.Position = types.Position{}
			w.Size = size
		}
	}
}

// Open inserts a new record on top of the stack and returns its id.
func (r *Registry) Open(spec types.OpenSpec) id.WindowID {
	wid := r.newID()
	for r.exists(wid) {
		wid = r.newID()
	}

	w := &types.Window{
		ID:          wid,
		Title:       spec.Title,
		AppKey:      spec.AppKey,
		Position:    spec.Position,
		Size:        spec.Size,
		IsMinimized: spec.Minimized,
		ZOrder:      r.nextZ(),
	}
	if spec.Maximized {
		r.maximize(w)
	}

	r.windows[wid] = w
	r.order = append(r.order, wid)

	if w.Visible() {
		r.setActive(wid)
	}
	return wid
}

// Get returns a copy of the record
func (r *Registry) Get(wid id.WindowID) (*types.Window, bool) {
	w, ok := r.windows[wid]
	if !ok {
		return nil, false
	}
	return w.Clone(), true
}

// Len returns the number of records
func (r *Registry) Len() int {
	return len(r.windows)
}

// ActiveID returns the active window, or "" if none
func (r *Registry) ActiveID() id.WindowID {
	return r.activeID
}

// List returns copies of every record in creation order
func (r *Registry) List() []*types.Window {
	out := make([]*types.Window, 0, len(r.order))
	for _, wid := range r.order {
		out = append(out, r.windows[wid].Clone())
	}
	return out
}

// Close removes the record. Unknown ids are a no-op; popped-out records
// are left in place and reported as CloseDeferred.
func (r *Registry) Close(wid id.WindowID) CloseResult {
	w, ok := r.windows[wid]
	if !ok {
		return CloseNoop
	}
	if w.IsPoppedOut {
		return CloseDeferred
	}
	r.remove(wid)
	return CloseRemoved
}

// RemoveDetached deletes a popped-out or pending record on confirmation
// from its detached context. Records rendered inline are left alone, so a
// stray close for a window that already returned is a no-op.
func (r *Registry) RemoveDetached(wid id.WindowID) bool {
	w, ok := r.windows[wid]
	if !ok || !(w.IsPoppedOut || w.PopoutPending) {
		return false
	}
	r.remove(wid)
	return true
}

// Focus brings the window to the front. Minimized windows are restored
// first. Popped-out windows live in another context and cannot be focused.
func (r *Registry) Focus(wid id.WindowID) bool {
	w, ok := r.windows[wid]
	if !ok || w.IsPoppedOut {
		return false
	}
	w.IsMinimized = false
	w.ZOrder = r.nextZ()
	r.setActive(wid)
	return true
}

// Minimize hides the window and hands focus to the next visible window
func (r *Registry) Minimize(wid id.WindowID) bool {
	w, ok := r.windows[wid]
	if !ok || w.IsPoppedOut {
		return false
	}
	if w.IsMinimized {
		return true
	}
	w.IsMinimized = true
	if r.activeID == wid {
		r.rederiveActive()
	}
	return true
}

// Maximize snapshots the current geometry and fills the viewport. The
// window is brought to the front unless it already is.
func (r *Registry) Maximize(wid id.WindowID) bool {
	w, ok := r.windows[wid]
	if !ok || w.IsPoppedOut {
		return false
	}
	if !w.IsMaximized {
		r.maximize(w)
	}
	r.touch(w)
	return true
}

// Restore un-minimizes a minimized window, otherwise puts a maximized
// window back to its pre-maximize geometry. Either way the window is
// brought to the front unless it already is.
func (r *Registry) Restore(wid id.WindowID) bool {
	w, ok := r.windows[wid]
	if !ok || w.IsPoppedOut {
		return false
	}
	switch {
	case w.IsMinimized:
		w.IsMinimized = false
	case w.IsMaximized:
		if g := w.RestoreGeometry; g != nil {
			w.Position = g.Position
			w.Size = g.Size
		}
		w.RestoreGeometry = nil
		w.IsMaximized = false
	}
	r.touch(w)
	return true
}

// UpdateGeometry moves and/or resizes the window. No focus side effect.
func (r *Registry) UpdateGeometry(wid id.WindowID, pos *types.Position, size *types.Size) bool {
	w, ok := r.windows[wid]
	if !ok {
		return false
	}
	if pos != nil {
		w.Position = *pos
	}
	if size != nil {
		w.Size = *size
	}
	return true
}

// MarkPending records that a detach was requested and the detached
// context has not confirmed yet.
func (r *Registry) MarkPending(wid id.WindowID, pending bool) bool {
	w, ok := r.windows[wid]
	if !ok || w.IsPoppedOut {
		return false
	}
	w.PopoutPending = pending
	return true
}

// MarkPoppedOut takes the window out of normal rendering. Focus moves on
// if it was active. Returns false if the record is missing or already
// popped out.
func (r *Registry) MarkPoppedOut(wid id.WindowID) bool {
	w, ok := r.windows[wid]
	if !ok || w.IsPoppedOut {
		return false
	}
	w.PopoutPending = false
	w.IsPoppedOut = true
	if r.activeID == wid {
		r.rederiveActive()
	}
	return true
}

// Reattach returns a popped-out or pending window to normal rendering and
// focuses it. Inline windows are left alone.
func (r *Registry) Reattach(wid id.WindowID) bool {
	w, ok := r.windows[wid]
	if !ok || !(w.IsPoppedOut || w.PopoutPending) {
		return false
	}
	w.IsPoppedOut = false
	w.PopoutPending = false
	return r.Focus(wid)
}

func (r *Registry) exists(wid id.WindowID) bool {
	_, ok := r.windows[wid]
	return ok
}

func (r *Registry) nextZ() int64 {
	r.counter++
	return r.counter
}

func (r *Registry) maximize(w *types.Window) {
	w.RestoreGeometry = &types.Geometry{Position: w.Position, Size: w.Size}
	w.Position = types.Position{}
	w.Size = r.viewport
	w.IsMaximized = true
}

// touch focuses w unless it is already the active window
func (r *Registry) touch(w *types.Window) {
	if r.activeID != w.ID {
		r.Focus(w.ID)
	}
}

func (r *Registry) remove(wid id.WindowID) {
	delete(r.windows, wid)
	for i, o := range r.order {
		if o == wid {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if r.activeID == wid {
		r.rederiveActive()
	}
}

func (r *Registry) setActive(wid id.WindowID) {
	if prev, ok := r.windows[r.activeID]; ok {
		prev.IsActive = false
	}
	r.activeID = wid
	if w, ok := r.windows[wid]; ok {
		w.IsActive = true
	}
}

func (r *Registry) rederiveActive() {
	if prev, ok := r.windows[r.activeID]; ok {
		prev.IsActive = false
	}
	r.activeID = ""
	if top := Topmost(r.windows); top != nil {
		r.setActive(top.ID)
	}
}
