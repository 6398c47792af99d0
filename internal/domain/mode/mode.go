// Package mode implements the desktop view-mode state and its keyboard
// surface.
//
// The mode is a single process-wide value selecting which categories of
// desktop chrome are rendered. It is independent of the window registry.
// Four function keys select the four modes; they are ignored while Ctrl or
// Alt is held so browser and OS shortcuts keep working. A chorded shortcut
// toggles the mode picker, which is presentation state and lives in Picker
// rather than in the mode itself.
package mode

import (
	"errors"
	"fmt"
	"strings"
)

// Mode is a desktop view mode
type Mode string

const (
	// Normal shows icons, widgets and windows
	Normal Mode = "normal"
	// IconsOnly hides windows and widgets
	IconsOnly Mode = "icons-only"
	// Widgets shows the widget layer over the wallpaper
	Widgets Mode = "widgets"
	// WindowsFocus hides icons and widgets
	WindowsFocus Mode = "windows-focus"
)

// Default is the mode a fresh desktop starts in
const Default = Normal

// ErrUnknownMode is returned when parsing an unrecognised mode name
var ErrUnknownMode = errors.New("unknown desktop mode")

// All returns the modes in shortcut order
func All() []Mode {
	return []Mode{Normal, IconsOnly, Widgets, WindowsFocus}
}

// Parse converts a name into a Mode
func Parse(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
	return m, nil
}

// Valid reports whether m is one of the four modes
func (m Mode) Valid() bool {
	switch m {
	case Normal, IconsOnly, Widgets, WindowsFocus:
		return true
	}
	return false
}

func (m Mode) String() string { return string(m) }

// Layers is the set of desktop chrome categories a mode renders
type Layers struct {
	Icons   bool `json:"icons"`
	Widgets bool `json:"widgets"`
	Windows bool `json:"windows"`
	Dock    bool `json:"dock"`
}

// Layers returns what the mode renders
func (m Mode) Layers() Layers {
	switch m {
	case IconsOnly:
		return Layers{Icons: true, Dock: true}
	case Widgets:
		return Layers{Widgets: true, Dock: true}
	case WindowsFocus:
		return Layers{Windows: true, Dock: true}
	default:
		return Layers{Icons: true, Widgets: true, Windows: true, Dock: true}
	}
}
