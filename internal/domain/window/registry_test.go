package window

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/webdesk/internal/shared/id"
	"github.com/GriffinCanCode/webdesk/internal/shared/types"
)

var viewport = types.Size{Width: 1440, Height: 900}

func newTestRegistry() *Registry {
	return NewRegistry(viewport)
}

func openN(t *testing.T, r *Registry, titles ...string) []id.WindowID {
	t.Helper()
	ids := make([]id.WindowID, 0, len(titles))
	for i, title := range titles {
		ids = append(ids, r.Open(types.OpenSpec{
			Title:    title,
			AppKey:   title,
			Position: types.Position{X: 10 * i, Y: 10 * i},
			Size:     types.Size{Width: 400, Height: 300},
		}))
	}
	return ids
}

func mustGet(t *testing.T, r *Registry, wid id.WindowID) *types.Window {
	t.Helper()
	w, ok := r.Get(wid)
	require.True(t, ok, "window %s should exist", wid)
	return w
}

func assertInvariants(t *testing.T, r *Registry) {
	t.Helper()
	require.NoError(t, Check(r.List()))
}

func TestOpenAssignsDistinctIDs(t *testing.T) {
	r := newTestRegistry()

	seen := make(map[id.WindowID]bool)
	for i := 0; i < 200; i++ {
		wid := r.Open(types.OpenSpec{Title: fmt.Sprintf("w%d", i)})
		assert.False(t, seen[wid], "duplicate id %s", wid)
		seen[wid] = true
	}
	assertInvariants(t, r)
}

func TestOpenNeverReusesClosedIDs(t *testing.T) {
	calls := 0
	fixed := []id.WindowID{"win_a", "win_a", "win_b"}
	r := NewRegistry(viewport, WithIDSource(func() id.WindowID {
		wid := fixed[calls]
		calls++
		return wid
	}))

	first := r.Open(types.OpenSpec{Title: "first"})
	second := r.Open(types.OpenSpec{Title: "second"})

	assert.Equal(t, id.WindowID("win_a"), first)
	assert.Equal(t, id.WindowID("win_b"), second, "colliding id must be skipped")
}

func TestOpenMakesWindowActive(t *testing.T) {
	r := newTestRegistry()
	ids := openN(t, r, "a", "b")

	assert.Equal(t, ids[1], r.ActiveID())
	assert.True(t, mustGet(t, r, ids[1]).IsActive)
	assert.False(t, mustGet(t, r, ids[0]).IsActive)
	assertInvariants(t, r)
}

func TestOpenMinimizedDoesNotSteal(t *testing.T) {
	r := newTestRegistry()
	ids := openN(t, r, "a")

	hidden := r.Open(types.OpenSpec{Title: "hidden", Minimized: true})

	assert.Equal(t, ids[0], r.ActiveID())
	assert.False(t, mustGet(t, r, hidden).IsActive)
	assertInvariants(t, r)
}

func TestOpenMaximized(t *testing.T) {
	r := newTestRegistry()
	wid := r.Open(types.OpenSpec{
		Title:     "big",
		Position:  types.Position{X: 40, Y: 50},
		Size:      types.Size{Width: 300, Height: 200},
		Maximized: true,
	})

	w := mustGet(t, r, wid)
	assert.True(t, w.IsMaximized)
	assert.Equal(t, viewport, w.Size)

	r.Restore(wid)
	w = mustGet(t, r, wid)
	assert.Equal(t, types.Position{X: 40, Y: 50}, w.Position)
	assert.Equal(t, types.Size{Width: 300, Height: 200}, w.Size)
}

func TestThreeWindowScenario(t *testing.T) {
	r := newTestRegistry()
	ids := openN(t, r, "A", "B", "C")
	a, b, c := ids[0], ids[1], ids[2]

	assert.Less(t, mustGet(t, r, a).ZOrder, mustGet(t, r, b).ZOrder)
	assert.Less(t, mustGet(t, r, b).ZOrder, mustGet(t, r, c).ZOrder)
	assert.Equal(t, c, r.ActiveID())

	require.True(t, r.Focus(a))
	assert.Equal(t, a, r.ActiveID())
	assert.Greater(t, mustGet(t, r, a).ZOrder, mustGet(t, r, c).ZOrder)
	assertInvariants(t, r)

	require.True(t, r.Minimize(a))
	assert.Equal(t, c, r.ActiveID())
	assertInvariants(t, r)
}

func TestFocusTouchesOnlyTarget(t *testing.T) {
	r := newTestRegistry()
	ids := openN(t, r, "a", "b", "c")

	before := map[id.WindowID]int64{}
	for _, wid := range ids {
		before[wid] = mustGet(t, r, wid).ZOrder
	}

	r.Focus(ids[0])

	assert.Equal(t, before[ids[1]], mustGet(t, r, ids[1]).ZOrder)
	assert.Equal(t, before[ids[2]], mustGet(t, r, ids[2]).ZOrder)

	for _, w := range r.List() {
		assert.Equal(t, w.ID == ids[0], w.IsActive)
	}
}

func TestFocusRestoresMinimized(t *testing.T) {
	r := newTestRegistry()
	ids := openN(t, r, "a", "b")

	r.Minimize(ids[0])
	require.True(t, r.Focus(ids[0]))

	w := mustGet(t, r, ids[0])
	assert.False(t, w.IsMinimized)
	assert.True(t, w.IsActive)
	assertInvariants(t, r)
}

func TestMinimizeLastVisibleLeavesNoActive(t *testing.T) {
	r := newTestRegistry()
	ids := openN(t, r, "a", "b")

	r.Minimize(ids[1])
	r.Minimize(ids[0])

	assert.Equal(t, id.WindowID(""), r.ActiveID())
	for _, w := range r.List() {
		assert.False(t, w.IsActive)
	}
	assertInvariants(t, r)
}

func TestMinimizeInactiveKeepsActive(t *testing.T) {
	r := newTestRegistry()
	ids := openN(t, r, "a", "b")

	r.Minimize(ids[0])

	assert.Equal(t, ids[1], r.ActiveID())
	assertInvariants(t, r)
}

func TestMaximizeRestoreRoundTrip(t *testing.T) {
	geometries := []types.Geometry{
		{Position: types.Position{X: 0, Y: 0}, Size: types.Size{Width: 1, Height: 1}},
		{Position: types.Position{X: -30, Y: 12}, Size: types.Size{Width: 640, Height: 480}},
		{Position: types.Position{X: 2000, Y: 1500}, Size: types.Size{Width: 5000, Height: 4000}},
	}

	for _, g := range geometries {
		r := newTestRegistry()
		wid := r.Open(types.OpenSpec{Title: "w", Position: g.Position, Size: g.Size})

		require.True(t, r.Maximize(wid))
		w := mustGet(t, r, wid)
		assert.True(t, w.IsMaximized)
		assert.Equal(t, viewport, w.Size)
		assert.Equal(t, types.Position{}, w.Position)

		require.True(t, r.Restore(wid))
		w = mustGet(t, r, wid)
		assert.False(t, w.IsMaximized)
		assert.Equal(t, g.Position, w.Position)
		assert.Equal(t, g.Size, w.Size)
		assert.Nil(t, w.RestoreGeometry)
	}
}

func TestMaximizeTwiceKeepsOriginalGeometry(t *testing.T) {
	r := newTestRegistry()
	wid := r.Open(types.OpenSpec{Title: "w", Position: types.Position{X: 7, Y: 9}, Size: types.Size{Width: 100, Height: 80}})

	r.Maximize(wid)
	r.Maximize(wid)
	r.Restore(wid)

	w := mustGet(t, r, wid)
	assert.Equal(t, types.Position{X: 7, Y: 9}, w.Position)
	assert.Equal(t, types.Size{Width: 100, Height: 80}, w.Size)
}

func TestMaximizeFocusesButKeepsActiveZOrder(t *testing.T) {
	r := newTestRegistry()
	ids := openN(t, r, "a", "b")

	z := mustGet(t, r, ids[1]).ZOrder
	r.Maximize(ids[1])
	assert.Equal(t, z, mustGet(t, r, ids[1]).ZOrder, "already-active window keeps its zOrder")

	r.Maximize(ids[0])
	assert.Equal(t, ids[0], r.ActiveID())
	assertInvariants(t, r)
}

func TestRestoreMinimizedKeepsMaximized(t *testing.T) {
	r := newTestRegistry()
	ids := openN(t, r, "a")

	r.Maximize(ids[0])
	r.Minimize(ids[0])
	r.Restore(ids[0])

	w := mustGet(t, r, ids[0])
	assert.False(t, w.IsMinimized)
	assert.True(t, w.IsMaximized, "first restore only un-minimizes")
	assert.True(t, w.IsActive)

	r.Restore(ids[0])
	w = mustGet(t, r, ids[0])
	assert.False(t, w.IsMaximized)
}

func TestUpdateGeometryHasNoFocusEffect(t *testing.T) {
	r := newTestRegistry()
	ids := openN(t, r, "a", "b")

	z := mustGet(t, r, ids[0]).ZOrder
	pos := types.Position{X: 300, Y: 200}
	require.True(t, r.UpdateGeometry(ids[0], &pos, nil))

	w := mustGet(t, r, ids[0])
	assert.Equal(t, pos, w.Position)
	assert.Equal(t, types.Size{Width: 400, Height: 300}, w.Size)
	assert.Equal(t, z, w.ZOrder)
	assert.Equal(t, ids[1], r.ActiveID())
}

func TestCloseIsIdempotent(t *testing.T) {
	r := newTestRegistry()
	ids := openN(t, r, "a", "b", "c")

	assert.Equal(t, CloseRemoved, r.Close(ids[2]))
	once := r.List()
	activeOnce := r.ActiveID()

	assert.Equal(t, CloseNoop, r.Close(ids[2]))
	assert.Equal(t, once, r.List())
	assert.Equal(t, activeOnce, r.ActiveID())
	assert.Equal(t, ids[1], r.ActiveID())
	assertInvariants(t, r)
}

func TestMissingIDsAreNoops(t *testing.T) {
	r := newTestRegistry()
	openN(t, r, "a")
	before := r.List()

	missing := id.WindowID("win_missing")
	pos := types.Position{X: 1, Y: 1}
	assert.False(t, r.Focus(missing))
	assert.False(t, r.Minimize(missing))
	assert.False(t, r.Maximize(missing))
	assert.False(t, r.Restore(missing))
	assert.False(t, r.UpdateGeometry(missing, &pos, nil))
	assert.Equal(t, CloseNoop, r.Close(missing))

	assert.Equal(t, before, r.List())
}

func TestPoppedOutLifecycle(t *testing.T) {
	r := newTestRegistry()
	ids := openN(t, r, "a", "w")
	w := ids[1]

	require.True(t, r.MarkPending(w, true))
	assert.True(t, mustGet(t, r, w).PopoutPending)
	assert.Equal(t, w, r.ActiveID(), "pending window is still owned and rendered")

	require.True(t, r.MarkPoppedOut(w))
	assert.False(t, r.MarkPoppedOut(w), "second confirmation changes nothing")
	rec := mustGet(t, r, w)
	assert.True(t, rec.IsPoppedOut)
	assert.False(t, rec.PopoutPending)
	assert.False(t, rec.IsActive)
	assert.Equal(t, ids[0], r.ActiveID())
	assertInvariants(t, r)

	assert.Equal(t, CloseDeferred, r.Close(w))
	_, still := r.Get(w)
	assert.True(t, still, "popped-out records survive Close")
	assert.False(t, r.Focus(w))
	assert.False(t, r.Minimize(w))

	require.True(t, r.Reattach(w))
	rec = mustGet(t, r, w)
	assert.False(t, rec.IsPoppedOut)
	assert.True(t, rec.IsActive)
	assertInvariants(t, r)

	assert.False(t, r.Reattach(w), "duplicate return is a no-op")
}

func TestRemoveDetached(t *testing.T) {
	r := newTestRegistry()
	ids := openN(t, r, "a", "w")

	assert.False(t, r.RemoveDetached(ids[0]), "inline windows are not removed by detached closes")

	r.MarkPoppedOut(ids[1])
	assert.True(t, r.RemoveDetached(ids[1]))
	assert.False(t, r.RemoveDetached(ids[1]))
	assert.Equal(t, 1, r.Len())
	assertInvariants(t, r)
}

func TestSetViewportResizesMaximized(t *testing.T) {
	r := newTestRegistry()
	ids := openN(t, r, "a", "b")
	r.Maximize(ids[0])

	r.SetViewport(types.Size{Width: 800, Height: 600})

	assert.Equal(t, types.Size{Width: 800, Height: 600}, mustGet(t, r, ids[0]).Size)
	assert.Equal(t, types.Size{Width: 400, Height: 300}, mustGet(t, r, ids[1]).Size)
}
