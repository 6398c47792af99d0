package mode

import (
	"strings"
	"sync/atomic"
)

// Key is a key press as reported by the desktop page
type Key struct {
	Name  string
	Ctrl  bool
	Alt   bool
	Shift bool
	Meta  bool
}

// Action is what a key press resolves to
type Action int

const (
	// ActionNone means the key is not reserved
	ActionNone Action = iota
	// ActionSetMode selects a mode
	ActionSetMode
	// ActionTogglePicker flips the mode picker
	ActionTogglePicker
)

func (a Action) String() string {
	switch a {
	case ActionSetMode:
		return "set_mode"
	case ActionTogglePicker:
		return "toggle_picker"
	default:
		return "none"
	}
}

// Chord is a key with required modifiers
type Chord struct {
	Name  string
	Ctrl  bool
	Alt   bool
	Shift bool
}

func (c Chord) matches(k Key) bool {
	return strings.EqualFold(c.Name, k.Name) && c.Ctrl == k.Ctrl && c.Alt == k.Alt && c.Shift == k.Shift
}

// Keymap binds single keys to modes and one chord to the picker
type Keymap struct {
	Modes  map[string]Mode
	Picker Chord
}

// DefaultKeymap binds F1..F4 to the modes in All() order and Ctrl+Shift+M
// to the picker.
func DefaultKeymap() Keymap {
	return Keymap{
		Modes: map[string]Mode{
			"F1": Normal,
			"F2": IconsOnly,
			"F3": Widgets,
			"F4": WindowsFocus,
		},
		Picker: Chord{Name: "M", Ctrl: true, Shift: true},
	}
}

// Resolve maps a key press to an action. Mode keys only fire with no Ctrl
// or Alt held.
func (km Keymap) Resolve(k Key) (Action, Mode) {
	if km.Picker.matches(k) {
		return ActionTogglePicker, ""
	}
	if k.Ctrl || k.Alt {
		return ActionNone, ""
	}
	for name, m := range km.Modes {
		if strings.EqualFold(name, k.Name) {
			return ActionSetMode, m
		}
	}
	return ActionNone, ""
}

// Picker is the expanded/collapsed flag of the mode picker. Presentation
// state only; safe for concurrent use.
type Picker struct {
	expanded atomic.Bool
}

// Toggle flips the flag and returns the new value
func (p *Picker) Toggle() bool {
	for {
		old := p.expanded.Load()
		if p.expanded.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Expanded reports the current value
func (p *Picker) Expanded() bool {
	return p.expanded.Load()
}

// Collapse resets the flag
func (p *Picker) Collapse() {
	p.expanded.Store(false)
}
