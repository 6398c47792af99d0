package desktop

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/webdesk/internal/domain/mode"
	"github.com/GriffinCanCode/webdesk/internal/domain/window"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webdesk/internal/shared/id"
	"github.com/GriffinCanCode/webdesk/internal/shared/types"
)

type recordingCloser struct {
	mu  sync.Mutex
	ids []id.WindowID
}

func (r *recordingCloser) RequestClose(wid id.WindowID) {
	r.mu.Lock()
	r.ids = append(r.ids, wid)
	r.mu.Unlock()
}

func newCore(opts ...Option) *Core {
	return New(Config{Viewport: types.Size{Width: 1280, Height: 800}}, opts...)
}

func openSpec(title string) types.OpenSpec {
	return types.OpenSpec{
		Title:    title,
		AppKey:   "notes",
		Position: types.Position{X: 10, Y: 20},
		Size:     types.Size{Width: 400, Height: 300},
	}
}

func TestSubscribeDeliversCurrentSnapshot(t *testing.T) {
	c := newCore()
	wid := c.Open(openSpec("Notes"))

	var got *types.Snapshot
	unsubscribe := c.Subscribe(func(snap *types.Snapshot) { got = snap })
	defer unsubscribe()

	require.NotNil(t, got)
	assert.Equal(t, uint64(1), got.Version)
	assert.Equal(t, wid, got.ActiveID)
	assert.Equal(t, string(mode.Default), got.Mode)
}

func TestSnapshotsAreVersionedInOrder(t *testing.T) {
	c := newCore()

	var versions []uint64
	unsubscribe := c.Subscribe(func(snap *types.Snapshot) { versions = append(versions, snap.Version) })

	a := c.Open(openSpec("A"))
	c.Open(openSpec("B"))
	c.Focus(a)
	c.Focus(id.WindowID("win_missing"))

	unsubscribe()
	c.Open(openSpec("C"))

	assert.Equal(t, []uint64{0, 1, 2, 3}, versions, "no-ops do not publish and unsubscribed listeners stop receiving")
	assert.Equal(t, uint64(4), c.Snapshot().Version)
}

func TestConcurrentMutationsPublishMonotonically(t *testing.T) {
	c := newCore()

	var mu sync.Mutex
	var versions []uint64
	c.Subscribe(func(snap *types.Snapshot) {
		mu.Lock()
		versions = append(versions, snap.Version)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Open(openSpec("W"))
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, versions, 21)
	for i, v := range versions {
		assert.Equal(t, uint64(i), v)
	}
}

func TestOpenSanitizesTitle(t *testing.T) {
	c := newCore()

	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"plain", "Notes", "Notes"},
		{"markup stripped", "<b>Bold</b> notes", "Bold notes"},
		{"script dropped", "<script>alert(1)</script>", "Untitled"},
		{"whitespace", "   ", "Untitled"},
		{"entities kept readable", "Tom & Jerry", "Tom & Jerry"},
		{"encoded markup stripped", "&lt;img src=x onerror=alert(1)&gt;", "Untitled"},
		{"encoded tags around text", "&lt;b&gt;Bold&lt;/b&gt; notes", "Bold notes"},
		{"double encoded", "&amp;lt;script&amp;gt;alert(1)&amp;lt;/script&amp;gt;", "Untitled"},
		{"bare angle bracket", "5 &lt; 6", "5 < 6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wid := c.Open(openSpec(tt.title))
			w, ok := c.Get(wid)
			require.True(t, ok)
			assert.Equal(t, tt.want, w.Title)
		})
	}
}

func TestCloseInlineWindow(t *testing.T) {
	c := newCore()
	a := c.Open(openSpec("A"))
	b := c.Open(openSpec("B"))

	assert.Equal(t, window.CloseRemoved, c.Close(b))
	assert.Equal(t, a, c.Snapshot().ActiveID)
	assert.Equal(t, window.CloseNoop, c.Close(b))
}

func TestClosePoppedOutIsDeferred(t *testing.T) {
	closer := &recordingCloser{}
	c := newCore()
	c.SetCloseRequester(closer)

	wid := c.Open(openSpec("Detached"))
	require.True(t, c.RequestPopout(wid))
	require.True(t, c.ConfirmPopout(wid))

	before := c.Snapshot().Version
	assert.Equal(t, window.CloseDeferred, c.Close(wid))
	assert.Equal(t, []id.WindowID{wid}, closer.ids)
	assert.Equal(t, before, c.Snapshot().Version, "deferred close does not publish")

	_, ok := c.Get(wid)
	assert.True(t, ok, "record remains until the detached context confirms")

	assert.True(t, c.RemoveDetached(wid))
	_, ok = c.Get(wid)
	assert.False(t, ok)
}

func TestClosePoppedOutWithoutCloser(t *testing.T) {
	c := newCore()
	wid := c.Open(openSpec("Detached"))
	c.ConfirmPopout(wid)

	assert.Equal(t, window.CloseDeferred, c.Close(wid))
	_, ok := c.Get(wid)
	assert.True(t, ok)
}

func TestPopoutLifecycle(t *testing.T) {
	c := newCore()
	a := c.Open(openSpec("A"))
	b := c.Open(openSpec("B"))

	require.True(t, c.RequestPopout(b))
	w, _ := c.Get(b)
	assert.True(t, w.PopoutPending)
	assert.False(t, w.IsPoppedOut)
	assert.Equal(t, b, c.Snapshot().ActiveID, "pending windows stay active")

	require.True(t, c.ConfirmPopout(b))
	snap := c.Snapshot()
	assert.Equal(t, a, snap.ActiveID)
	w, _ = snap.Find(b)
	assert.True(t, w.IsPoppedOut)
	assert.False(t, w.PopoutPending)
	assert.Len(t, snap.Visible(), 1)

	assert.False(t, c.Focus(b), "popped-out windows cannot be focused")
	assert.False(t, c.RequestPopout(b))

	require.True(t, c.ReturnPopout(b))
	snap = c.Snapshot()
	assert.Equal(t, b, snap.ActiveID)
	w, _ = snap.Find(b)
	assert.False(t, w.IsPoppedOut)
}

func TestCancelPopout(t *testing.T) {
	c := newCore()
	wid := c.Open(openSpec("A"))

	assert.False(t, c.CancelPopout(wid), "nothing pending")
	require.True(t, c.RequestPopout(wid))
	assert.True(t, c.CancelPopout(wid))

	w, _ := c.Get(wid)
	assert.False(t, w.PopoutPending)
	assert.False(t, c.RemoveDetached(wid), "inline records are not removed by detached closes")
}

func TestUpdateGeometryRequiresChange(t *testing.T) {
	c := newCore()
	wid := c.Open(openSpec("A"))

	assert.False(t, c.UpdateGeometry(wid, nil, nil))

	pos := types.Position{X: 99, Y: 42}
	assert.True(t, c.UpdateGeometry(wid, &pos, nil))
	w, _ := c.Get(wid)
	assert.Equal(t, pos, w.Position)
	assert.Equal(t, types.Size{Width: 400, Height: 300}, w.Size)
}

func TestFocusNext(t *testing.T) {
	c := newCore()
	a := c.Open(openSpec("A"))
	b := c.Open(openSpec("B"))
	top := c.Open(openSpec("C"))

	require.True(t, c.FocusNext(false))
	assert.Equal(t, b, c.Snapshot().ActiveID)

	// B is now on top; backward wraps from the front to the back
	require.True(t, c.FocusNext(true))
	assert.Equal(t, a, c.Snapshot().ActiveID)

	assert.NoError(t, window.Check(c.Snapshot().Windows))
	assert.NotEqual(t, top, c.Snapshot().ActiveID)

	assert.False(t, newCore().FocusNext(false), "empty desktop")
}

func TestModeAndKeys(t *testing.T) {
	c := newCore()

	assert.True(t, c.SetMode(mode.Widgets))
	assert.False(t, c.SetMode(mode.Widgets))
	assert.False(t, c.SetMode("bogus"))
	assert.Equal(t, mode.Widgets, c.CurrentMode())

	assert.Equal(t, mode.ActionSetMode, c.HandleKey(mode.Key{Name: "F2"}))
	assert.Equal(t, mode.IconsOnly, c.CurrentMode())
	assert.Equal(t, string(mode.IconsOnly), c.Snapshot().Mode)

	v := c.Snapshot().Version
	assert.Equal(t, mode.ActionTogglePicker, c.HandleKey(mode.Key{Name: "M", Ctrl: true, Shift: true}))
	assert.Equal(t, mode.ActionNone, c.HandleKey(mode.Key{Name: "F9"}))
	assert.Equal(t, v, c.Snapshot().Version, "picker and unbound keys do not publish")
}

func TestInitialModeFallback(t *testing.T) {
	c := New(Config{InitialMode: "nonsense"})
	assert.Equal(t, mode.Default, c.CurrentMode())

	c = New(Config{InitialMode: mode.WindowsFocus})
	assert.Equal(t, mode.WindowsFocus, c.CurrentMode())
}

func TestMetricsFollowMutations(t *testing.T) {
	m := monitoring.NewMetrics()
	c := newCore(WithMetrics(m))

	a := c.Open(openSpec("A"))
	c.Open(openSpec("B"))
	c.Minimize(a)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.WindowsOpened))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Mutations.WithLabelValues("open")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Windows.WithLabelValues("minimized")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Windows.WithLabelValues("visible")))
}

func TestRegistryOptionsPassThrough(t *testing.T) {
	n := 0
	ids := []id.WindowID{"win_fixed_a", "win_fixed_b"}
	c := newCore(WithRegistryOptions(window.WithIDSource(func() id.WindowID {
		wid := ids[n%len(ids)]
		n++
		return wid
	})))

	assert.Equal(t, id.WindowID("win_fixed_a"), c.Open(openSpec("A")))
	assert.Equal(t, id.WindowID("win_fixed_b"), c.Open(openSpec("B")))
}
