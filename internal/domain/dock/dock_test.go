package dock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/webdesk/internal/domain/desktop"
	"github.com/GriffinCanCode/webdesk/internal/shared/types"
)

func newDock(t *testing.T) (*desktop.Core, *Dock) {
	t.Helper()
	core := desktop.New(desktop.Config{Viewport: types.Size{Width: 1280, Height: 800}})
	catalog := NewCatalog([]App{
		{Key: "files", Title: "Files"},
		{Key: "notes", Title: "Notes", Width: 300, Height: 200},
		{Key: "terminal", Title: "Terminal"},
	})
	d := New(core, catalog, WithSpawner(NewSpawner(10, 3)))
	t.Cleanup(d.Close)
	return core, d
}

func item(t *testing.T, d *Dock, key string) types.DockItem {
	t.Helper()
	for _, it := range d.Items() {
		if it.AppKey == key {
			return it
		}
	}
	t.Fatalf("no dock item %q", key)
	return types.DockItem{}
}

func TestClickContract(t *testing.T) {
	core, d := newDock(t)

	// no window: launch
	result, notes, err := d.Click("notes")
	require.NoError(t, err)
	assert.Equal(t, ClickOpened, result)
	w, ok := core.Get(notes)
	require.True(t, ok)
	assert.Equal(t, "Notes", w.Title)
	assert.Equal(t, types.Size{Width: 300, Height: 200}, w.Size)
	assert.Equal(t, types.Position{X: 10, Y: 10}, w.Position)
	assert.True(t, item(t, d, "notes").IsRunning)
	assert.True(t, item(t, d, "notes").IsActive)

	// active: minimize
	result, wid, err := d.Click("notes")
	require.NoError(t, err)
	assert.Equal(t, ClickMinimized, result)
	assert.Equal(t, notes, wid)
	w, _ = core.Get(notes)
	assert.True(t, w.IsMinimized)
	assert.False(t, item(t, d, "notes").IsActive)
	assert.True(t, item(t, d, "notes").IsRunning)

	// minimized: restore and focus
	result, _, err = d.Click("notes")
	require.NoError(t, err)
	assert.Equal(t, ClickRestored, result)
	w, _ = core.Get(notes)
	assert.False(t, w.IsMinimized)
	assert.Equal(t, notes, core.Snapshot().ActiveID)

	// inactive: focus
	_, files, err := d.Click("files")
	require.NoError(t, err)
	assert.Equal(t, files, core.Snapshot().ActiveID)
	filesWin, _ := core.Get(files)
	assert.Equal(t, types.Position{X: 20, Y: 20}, filesWin.Position, "launches are staggered")
	assert.Equal(t, DefaultWindowSize, filesWin.Size)

	result, _, err = d.Click("notes")
	require.NoError(t, err)
	assert.Equal(t, ClickFocused, result)
	assert.Equal(t, notes, core.Snapshot().ActiveID)
	assert.True(t, item(t, d, "notes").IsActive)
	assert.False(t, item(t, d, "files").IsActive)
}

// slowDesktop holds every transaction open for a moment so concurrent
// clicks overlap.
type slowDesktop struct {
	*desktop.Core
}

func (s slowDesktop) Transact(op string, fn func(tx desktop.Tx) bool) bool {
	return s.Core.Transact(op, func(tx desktop.Tx) bool {
		time.Sleep(5 * time.Millisecond)
		return fn(tx)
	})
}

func clickConcurrently(t *testing.T, d *Dock, key string, n int) []ClickResult {
	t.Helper()
	results := make([]ClickResult, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			res, _, err := d.Click(key)
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	close(start)
	wg.Wait()
	return results
}

func TestConcurrentClicks(t *testing.T) {
	core := desktop.New(desktop.Config{Viewport: types.Size{Width: 1280, Height: 800}})
	d := New(slowDesktop{core}, NewCatalog([]App{{Key: "notes", Title: "Notes"}}))
	t.Cleanup(d.Close)

	// idle app: exactly one launch, the other click toggles it
	results := clickConcurrently(t, d, "notes", 2)
	assert.ElementsMatch(t, []ClickResult{ClickOpened, ClickMinimized}, results)
	require.Len(t, core.Snapshot().ByApp("notes"), 1)

	require.Equal(t, ClickRestored, mustClick(t, d, "notes"))

	// active window: one click minimizes, the next restores
	results = clickConcurrently(t, d, "notes", 2)
	assert.ElementsMatch(t, []ClickResult{ClickMinimized, ClickRestored}, results)

	windows := core.Snapshot().ByApp("notes")
	require.Len(t, windows, 1)
	assert.True(t, windows[0].IsActive)
	assert.False(t, windows[0].IsMinimized)
}

func mustClick(t *testing.T, d *Dock, key string) ClickResult {
	t.Helper()
	res, _, err := d.Click(key)
	require.NoError(t, err)
	return res
}

func TestClickUnknownApp(t *testing.T) {
	_, d := newDock(t)
	_, _, err := d.Click("nope")
	assert.ErrorIs(t, err, ErrUnknownApp)
}

func TestClickPoppedOutOnly(t *testing.T) {
	core, d := newDock(t)
	_, wid, _ := d.Click("terminal")
	require.True(t, core.ConfirmPopout(wid))

	v := core.Snapshot().Version
	result, _, err := d.Click("terminal")
	require.NoError(t, err)
	assert.Equal(t, ClickNone, result)
	assert.Equal(t, v, core.Snapshot().Version)
	assert.True(t, item(t, d, "terminal").IsRunning)
}

func TestClickPrefersTopmostWindow(t *testing.T) {
	core, d := newDock(t)
	first := core.Open(types.OpenSpec{Title: "one", AppKey: "files"})
	second := core.Open(types.OpenSpec{Title: "two", AppKey: "files"})
	core.Open(types.OpenSpec{Title: "other", AppKey: "notes"})

	result, wid, err := d.Click("files")
	require.NoError(t, err)
	assert.Equal(t, ClickFocused, result)
	assert.Equal(t, second, wid)
	assert.NotEqual(t, first, core.Snapshot().ActiveID)
}

func TestMoveOnlyReordersDisplay(t *testing.T) {
	core, d := newDock(t)
	_, wid, _ := d.Click("files")
	v := core.Snapshot().Version

	require.NoError(t, d.Move("files", 2))
	keys := func() []string {
		var out []string
		for i, it := range d.Items() {
			assert.Equal(t, i, it.Position)
			out = append(out, it.AppKey)
		}
		return out
	}
	assert.Equal(t, []string{"notes", "terminal", "files"}, keys())

	require.NoError(t, d.Move("terminal", -5))
	assert.Equal(t, []string{"terminal", "notes", "files"}, keys())

	require.NoError(t, d.Move("notes", 99))
	assert.Equal(t, []string{"terminal", "files", "notes"}, keys())

	assert.ErrorIs(t, d.Move("nope", 0), ErrUnknownApp)
	assert.Equal(t, v, core.Snapshot().Version, "reordering never touches the registry")
	assert.True(t, item(t, d, "files").IsRunning)
	assert.Equal(t, wid, core.Snapshot().ActiveID)
}

func TestSpawnerCycles(t *testing.T) {
	s := NewSpawner(5, 2)
	assert.Equal(t, types.Position{X: 5, Y: 5}, s.Next())
	assert.Equal(t, types.Position{X: 10, Y: 10}, s.Next())
	assert.Equal(t, types.Position{X: 5, Y: 5}, s.Next())

	def := NewSpawner(0, 0)
	assert.Equal(t, types.Position{X: DefaultSpawnStep, Y: DefaultSpawnStep}, def.Next())
}

func TestPlacement(t *testing.T) {
	_, d := newDock(t)

	pos, size := d.Placement("notes")
	assert.Equal(t, types.Position{X: 10, Y: 10}, pos)
	assert.Equal(t, types.Size{Width: 300, Height: 200}, size)

	pos, size = d.Placement("unknown")
	assert.Equal(t, types.Position{X: 20, Y: 20}, pos)
	assert.Equal(t, DefaultWindowSize, size)
}
