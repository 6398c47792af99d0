package mode

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, m := range All() {
		got, err := Parse(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	got, err := Parse("  Widgets ")
	require.NoError(t, err)
	assert.Equal(t, Widgets, got)

	_, err = Parse("fullscreen")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestLayers(t *testing.T) {
	assert.Equal(t, Layers{Icons: true, Widgets: true, Windows: true, Dock: true}, Normal.Layers())
	assert.False(t, IconsOnly.Layers().Windows)
	assert.False(t, WindowsFocus.Layers().Icons)
	assert.True(t, Widgets.Layers().Widgets)
}

func TestResolve(t *testing.T) {
	km := DefaultKeymap()

	tests := []struct {
		name       string
		key        Key
		wantAction Action
		wantMode   Mode
	}{
		{"F1", Key{Name: "F1"}, ActionSetMode, Normal},
		{"F2", Key{Name: "F2"}, ActionSetMode, IconsOnly},
		{"F3 lowercase", Key{Name: "f3"}, ActionSetMode, Widgets},
		{"F4 with shift", Key{Name: "F4", Shift: true}, ActionSetMode, WindowsFocus},
		{"F4 with meta", Key{Name: "F4", Meta: true}, ActionSetMode, WindowsFocus},
		{"ctrl suppresses", Key{Name: "F2", Ctrl: true}, ActionNone, ""},
		{"alt suppresses", Key{Name: "F3", Alt: true}, ActionNone, ""},
		{"unbound key", Key{Name: "F5"}, ActionNone, ""},
		{"picker chord", Key{Name: "m", Ctrl: true, Shift: true}, ActionTogglePicker, ""},
		{"picker needs shift", Key{Name: "M", Ctrl: true}, ActionNone, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, m := km.Resolve(tt.key)
			assert.Equal(t, tt.wantAction, action)
			assert.Equal(t, tt.wantMode, m)
		})
	}
}

func TestController(t *testing.T) {
	c := NewController("bogus", DefaultKeymap())
	assert.Equal(t, Default, c.Current())

	assert.True(t, c.Set(Widgets))
	assert.False(t, c.Set(Widgets), "same mode is not a change")
	assert.False(t, c.Set("bogus"))
	assert.Equal(t, Widgets, c.Current())

	action, changed := c.Dispatch(Key{Name: "F4"})
	assert.Equal(t, ActionSetMode, action)
	assert.True(t, changed)
	assert.Equal(t, WindowsFocus, c.Current())

	action, changed = c.Dispatch(Key{Name: "F1", Ctrl: true})
	assert.Equal(t, ActionNone, action)
	assert.False(t, changed)
	assert.Equal(t, WindowsFocus, c.Current())

	action, _ = c.Dispatch(Key{Name: "M", Ctrl: true, Shift: true})
	assert.Equal(t, ActionTogglePicker, action)
	assert.Equal(t, WindowsFocus, c.Current(), "picker does not touch mode")
}

func TestPickerToggle(t *testing.T) {
	var p Picker
	assert.False(t, p.Expanded())
	assert.True(t, p.Toggle())
	assert.False(t, p.Toggle())

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Toggle()
		}()
	}
	wg.Wait()
	assert.False(t, p.Expanded(), "even number of toggles")

	p.Toggle()
	p.Collapse()
	assert.False(t, p.Expanded())
}
