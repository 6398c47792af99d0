// Package dock projects the app catalog and the window registry into launcher
// items and implements the launcher click contract.
package dock

import (
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webdesk/internal/domain/desktop"
	"github.com/GriffinCanCode/webdesk/internal/shared/id"
	"github.com/GriffinCanCode/webdesk/internal/shared/types"
)

// ClickResult reports what a dock click did
type ClickResult string

const (
	ClickNone      ClickResult = "none"
	ClickOpened    ClickResult = "opened"
	ClickRestored  ClickResult = "restored"
	ClickMinimized ClickResult = "minimized"
	ClickFocused   ClickResult = "focused"
)

// Desktop is what the dock needs from the core
type Desktop interface {
	Subscribe(l desktop.Listener) func()
	Transact(op string, fn func(tx desktop.Tx) bool) bool
}

// Dock projects catalog entries and registry state into launcher items.
// It never mutates registry state itself; clicks go through Desktop.
type Dock struct {
	desktop Desktop
	catalog *Catalog
	spawner *Spawner
	logger  *zap.Logger

	mu    sync.RWMutex
	order []string
	items []types.DockItem
	snap  *types.Snapshot

	unsubscribe func()
}

// Option configures a Dock
type Option func(*Dock)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dock) { d.logger = logger }
}

// WithSpawner overrides where new windows are placed
func WithSpawner(s *Spawner) Option {
	return func(d *Dock) { d.spawner = s }
}

// New creates a dock over catalog and subscribes it to desk. Call Close to
// unsubscribe.
func New(desk Desktop, catalog *Catalog, opts ...Option) *Dock {
	d := &Dock{
		desktop: desk,
		catalog: catalog,
		spawner: NewSpawner(DefaultSpawnStep, DefaultSpawnCycle),
		logger:  zap.NewNop(),
		order:   catalog.Keys(),
		snap:    &types.Snapshot{},
	}
	for _, opt := range opts {
		opt(d)
	}
	d.unsubscribe = desk.Subscribe(d.onSnapshot)
	return d
}

// Close stops following the desktop
func (d *Dock) Close() {
	if d.unsubscribe != nil {
		d.unsubscribe()
	}
}

// Items returns the current dock entries in display order
func (d *Dock) Items() []types.DockItem {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]types.DockItem, len(d.items))
	copy(out, d.items)
	return out
}

// Click applies the launcher contract for appKey: with no window the app
// is launched; a minimized window is restored and focused; the active
// window is minimized; any other window is focused. The decision and the
// change it leads to happen in one desktop transaction.
func (d *Dock) Click(appKey string) (ClickResult, id.WindowID, error) {
	app, ok := d.catalog.Get(appKey)
	if !ok {
		return ClickNone, "", ErrUnknownApp
	}

	result := ClickNone
	var wid id.WindowID
	d.desktop.Transact("dock_click", func(tx desktop.Tx) bool {
		snap := tx.Snapshot()
		windows := snap.ByApp(appKey)
		if len(windows) == 0 {
			result = ClickOpened
			wid = tx.Open(types.OpenSpec{
				Title:    app.Title,
				AppKey:   app.Key,
				Position: d.spawner.Next(),
				Size:     app.Size(DefaultWindowSize),
			})
			return true
		}

		target := pickTarget(windows, snap.ActiveID)
		if target == nil {
			// every window of the app lives in a detached context
			return false
		}
		wid = target.ID

		switch {
		case target.IsMinimized:
			result = ClickRestored
			return tx.Restore(target.ID)
		case target.ID == snap.ActiveID:
			result = ClickMinimized
			return tx.Minimize(target.ID)
		default:
			result = ClickFocused
			return tx.Focus(target.ID)
		}
	})

	d.logger.Debug("dock click",
		zap.String("app_key", appKey),
		zap.String("result", string(result)),
		zap.String("window_id", wid.String()),
	)
	return result, wid, nil
}

// Placement returns where and how large a new window of appKey should
// open. Unknown apps get DefaultWindowSize.
func (d *Dock) Placement(appKey string) (types.Position, types.Size) {
	size := DefaultWindowSize
	if app, ok := d.catalog.Get(appKey); ok {
		size = app.Size(DefaultWindowSize)
	}
	return d.spawner.Next(), size
}

// Move reorders the dock. Only display order changes; registry state is
// not touched. Out-of-range indexes are clamped.
func (d *Dock) Move(appKey string, index int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	from := -1
	for i, key := range d.order {
		if key == appKey {
			from = i
			break
		}
	}
	if from < 0 {
		return ErrUnknownApp
	}

	if index < 0 {
		index = 0
	}
	if index >= len(d.order) {
		index = len(d.order) - 1
	}

	order := make([]string, 0, len(d.order))
	for i, key := range d.order {
		if i != from {
			order = append(order, key)
		}
	}
	order = append(order, "")
	copy(order[index+1:], order[index:])
	order[index] = appKey

	d.order = order
	d.items = project(d.catalog, d.order, d.snap)
	return nil
}

func (d *Dock) onSnapshot(snap *types.Snapshot) {
	d.mu.Lock()
	d.snap = snap
	d.items = project(d.catalog, d.order, snap)
	d.mu.Unlock()
}

// pickTarget prefers the active window, then the topmost one. Popped-out
// windows cannot be targeted.
func pickTarget(windows []*types.Window, active id.WindowID) *types.Window {
	var best *types.Window
	for _, w := range windows {
		if w.IsPoppedOut {
			continue
		}
		if w.ID == active {
			return w
		}
		if best == nil || w.ZOrder > best.ZOrder {
			best = w
		}
	}
	return best
}

func project(catalog *Catalog, order []string, snap *types.Snapshot) []types.DockItem {
	running := make(map[string]bool)
	for _, w := range snap.Windows {
		running[w.AppKey] = true
	}
	var activeApp string
	if w, ok := snap.Find(snap.ActiveID); ok {
		activeApp = w.AppKey
	}

	items := make([]types.DockItem, 0, len(order))
	for i, key := range order {
		app, _ := catalog.Get(key)
		items = append(items, types.DockItem{
			AppKey:    key,
			Title:     app.Title,
			Icon:      app.Icon,
			IsRunning: running[key],
			IsActive:  key == activeApp,
			Position:  i,
		})
	}
	return items
}
