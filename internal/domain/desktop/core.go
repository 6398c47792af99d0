package desktop

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webdesk/internal/domain/mode"
	"github.com/GriffinCanCode/webdesk/internal/domain/window"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webdesk/internal/shared/id"
	"github.com/GriffinCanCode/webdesk/internal/shared/types"
)

const (
	untitled       = "Untitled"
	maxTitlePasses = 8
)

// Listener receives the full snapshot after every mutation. Snapshots are
// shared between listeners and must be treated as read-only. Listeners run
// in mutation order and must not call back into mutating Core methods.
type Listener func(snap *types.Snapshot)

// CloseRequester asks a detached context to close itself
type CloseRequester interface {
	RequestClose(wid id.WindowID)
}

// Config configures a Core
type Config struct {
	Viewport    types.Size
	InitialMode mode.Mode
	Keymap      mode.Keymap
}

// Core exclusively owns the window registry and the desktop mode. It is the
// single writer: every mutation goes through one mutex, and subscribers see
// snapshots in the order the mutations happened.
type Core struct {
	mu       sync.Mutex
	registry *window.Registry
	modes    *mode.Controller
	version  uint64

	notifyMu  sync.Mutex
	listeners map[int]Listener
	nextSub   int

	closer  CloseRequester
	titles  *bluemonday.Policy
	logger  *zap.Logger
	metrics *monitoring.Metrics
	regOpts []window.Option
}

// Option configures a Core
type Option func(*Core)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Core) { c.logger = logger }
}

// WithMetrics enables registry gauges
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(c *Core) { c.metrics = metrics }
}

// WithRegistryOptions passes options through to the window registry
func WithRegistryOptions(opts ...window.Option) Option {
	return func(c *Core) { c.regOpts = append(c.regOpts, opts...) }
}

// New creates a core with an empty registry
func New(cfg Config, opts ...Option) *Core {
	keymap := cfg.Keymap
	if keymap.Modes == nil {
		keymap = mode.DefaultKeymap()
	}

	c := &Core{
		modes:     mode.NewController(cfg.InitialMode, keymap),
		listeners: make(map[int]Listener),
		titles:    bluemonday.StrictPolicy(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.registry = window.NewRegistry(cfg.Viewport, c.regOpts...)
	return c
}

// SetCloseRequester wires the popout channel used for parent-initiated
// closes of popped-out windows.
func (c *Core) SetCloseRequester(r CloseRequester) {
	c.mu.Lock()
	c.closer = r
	c.mu.Unlock()
}

// Subscribe registers l and immediately delivers the current snapshot to
// it. The returned func unsubscribes.
func (c *Core) Subscribe(l Listener) func() {
	c.mu.Lock()
	snap := c.snapshotLocked()
	c.notifyMu.Lock()
	c.mu.Unlock()

	key := c.nextSub
	c.nextSub++
	c.listeners[key] = l
	l(snap)
	c.notifyMu.Unlock()

	return func() {
		c.notifyMu.Lock()
		delete(c.listeners, key)
		c.notifyMu.Unlock()
	}
}

// Snapshot returns the current state
func (c *Core) Snapshot() *types.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Get returns a copy of one record
func (c *Core) Get(wid id.WindowID) (*types.Window, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.Get(wid)
}

// Open creates a window on top of the stack. Always succeeds.
func (c *Core) Open(spec types.OpenSpec) id.WindowID {
	var wid id.WindowID
	c.mutate("open", func() bool {
		wid = c.openLocked(spec)
		return true
	})
	return wid
}

func (c *Core) openLocked(spec types.OpenSpec) id.WindowID {
	spec.Title = c.cleanTitle(spec.Title)
	wid := c.registry.Open(spec)
	c.logger.Debug("window opened",
		zap.String("window_id", wid.String()),
		zap.String("app_key", spec.AppKey),
	)
	if c.metrics != nil {
		c.metrics.IncWindowsOpened()
	}
	return wid
}

// Tx is the view of the desktop handed to a Transact callback. It is only
// valid inside the callback.
type Tx struct {
	c *Core
}

// Snapshot returns the state as of this point in the transaction
func (tx Tx) Snapshot() *types.Snapshot { return tx.c.snapshotLocked() }

// Open behaves like Core.Open
func (tx Tx) Open(spec types.OpenSpec) id.WindowID { return tx.c.openLocked(spec) }

// Focus behaves like Core.Focus
func (tx Tx) Focus(wid id.WindowID) bool { return tx.c.registry.Focus(wid) }

// Minimize behaves like Core.Minimize
func (tx Tx) Minimize(wid id.WindowID) bool { return tx.c.registry.Minimize(wid) }

// Restore behaves like Core.Restore
func (tx Tx) Restore(wid id.WindowID) bool { return tx.c.registry.Restore(wid) }

// Transact runs fn as a single mutation, so decisions made from
// tx.Snapshot cannot be invalidated by a concurrent writer before they are
// applied. fn reports whether it changed anything and must not call other
// Core methods.
func (c *Core) Transact(op string, fn func(tx Tx) bool) bool {
	return c.mutate(op, func() bool { return fn(Tx{c: c}) })
}

// Close removes a window. Closing a popped-out window asks its detached
// context to close instead; the record stays until that context confirms.
func (c *Core) Close(wid id.WindowID) window.CloseResult {
	var result window.CloseResult
	var closer CloseRequester
	c.mutate("close", func() bool {
		result = c.registry.Close(wid)
		closer = c.closer
		return result == window.CloseRemoved
	})

	if result == window.CloseDeferred {
		if closer != nil {
			closer.RequestClose(wid)
		} else {
			c.logger.Warn("popped-out window close requested with no popout channel",
				zap.String("window_id", wid.String()))
		}
	}
	return result
}

// Focus brings a window to the front, restoring it if minimized
func (c *Core) Focus(wid id.WindowID) bool {
	return c.mutate("focus", func() bool { return c.registry.Focus(wid) })
}

// FocusNext cycles focus through the visible stack
func (c *Core) FocusNext(backward bool) bool {
	return c.mutate("focus_next", func() bool {
		next := window.Cycle(c.registry.List(), c.registry.ActiveID(), backward)
		if next == "" {
			return false
		}
		return c.registry.Focus(next)
	})
}

// Minimize hides a window
func (c *Core) Minimize(wid id.WindowID) bool {
	return c.mutate("minimize", func() bool { return c.registry.Minimize(wid) })
}

// Maximize fills the viewport, remembering the previous geometry
func (c *Core) Maximize(wid id.WindowID) bool {
	return c.mutate("maximize", func() bool { return c.registry.Maximize(wid) })
}

// Restore un-minimizes or un-maximizes a window
func (c *Core) Restore(wid id.WindowID) bool {
	return c.mutate("restore", func() bool { return c.registry.Restore(wid) })
}

// UpdateGeometry applies one drag or resize frame
func (c *Core) UpdateGeometry(wid id.WindowID, pos *types.Position, size *types.Size) bool {
	if pos == nil && size == nil {
		return false
	}
	return c.mutate("geometry", func() bool { return c.registry.UpdateGeometry(wid, pos, size) })
}

// SetViewport changes the geometry Maximize fills
func (c *Core) SetViewport(size types.Size) {
	c.mutate("viewport", func() bool {
		c.registry.SetViewport(size)
		return true
	})
}

// RequestPopout marks a window as pending detach. The window stays owned
// and rendered until its detached context reports ready.
func (c *Core) RequestPopout(wid id.WindowID) bool {
	return c.mutate("popout_request", func() bool { return c.registry.MarkPending(wid, true) })
}

// CancelPopout clears a pending detach, e.g. when the popup was blocked
func (c *Core) CancelPopout(wid id.WindowID) bool {
	return c.mutate("popout_cancel", func() bool {
		w, ok := c.registry.Get(wid)
		if !ok || !w.PopoutPending {
			return false
		}
		return c.registry.MarkPending(wid, false)
	})
}

// ConfirmPopout applies POPOUT_READY
func (c *Core) ConfirmPopout(wid id.WindowID) bool {
	return c.mutate("popout_ready", func() bool { return c.registry.MarkPoppedOut(wid) })
}

// ReturnPopout applies RETURN_WINDOW
func (c *Core) ReturnPopout(wid id.WindowID) bool {
	return c.mutate("popout_return", func() bool { return c.registry.Reattach(wid) })
}

// RemoveDetached applies CLOSE_EXTERNAL_WINDOW and POPOUT_CLOSED
func (c *Core) RemoveDetached(wid id.WindowID) bool {
	return c.mutate("popout_closed", func() bool { return c.registry.RemoveDetached(wid) })
}

// SetMode changes the desktop mode
func (c *Core) SetMode(m mode.Mode) bool {
	return c.mutate("mode", func() bool { return c.modes.Set(m) })
}

// CurrentMode returns the desktop mode
func (c *Core) CurrentMode() mode.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modes.Current()
}

// HandleKey applies a mode shortcut. The picker toggle is returned to the
// caller, which owns that presentation state.
func (c *Core) HandleKey(k mode.Key) mode.Action {
	var action mode.Action
	c.mutate("key", func() bool {
		var changed bool
		action, changed = c.modes.Dispatch(k)
		return action == mode.ActionSetMode && changed
	})
	return action
}

// mutate runs fn under the core lock. When fn reports a change, the version
// is bumped and every listener receives the new snapshot before the next
// mutation can publish.
func (c *Core) mutate(op string, fn func() bool) bool {
	c.mu.Lock()
	if !fn() {
		c.mu.Unlock()
		return false
	}
	c.version++
	snap := c.snapshotLocked()
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	if c.metrics != nil {
		c.metrics.RecordMutation(op)
		c.metrics.SetWindowStats(snap.Stats())
	}
	for _, l := range c.listeners {
		l(snap)
	}
	return true
}

func (c *Core) snapshotLocked() *types.Snapshot {
	return &types.Snapshot{
		Version:  c.version,
		Mode:     c.modes.Current().String(),
		ActiveID: c.registry.ActiveID(),
		Windows:  c.registry.List(),
	}
}

// cleanTitle strips markup and decodes entities until the title stops
// changing, so encoded tags cannot come back as real ones.
func (c *Core) cleanTitle(title string) string {
	stable := false
	for i := 0; i < maxTitlePasses && !stable; i++ {
		next := html.UnescapeString(c.titles.Sanitize(title))
		stable = next == title
		title = next
	}
	if !stable {
		title = c.titles.Sanitize(title)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return untitled
	}
	return title
}
