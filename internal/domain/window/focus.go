package window

import (
	"errors"
	"fmt"
	"sort"

	"github.com/GriffinCanCode/webdesk/internal/shared/id"
	"github.com/GriffinCanCode/webdesk/internal/shared/types"
)

// Stacking policy. Pure functions over a set of records; nothing here
// mutates.

var (
	ErrMultipleActive = errors.New("more than one active window")
	ErrActiveNotTop   = errors.New("active window is not topmost")
	ErrZOrderTie      = errors.New("visible windows share a z-order")
)

// Topmost returns the visible window with the highest zOrder, or nil
func Topmost(windows map[id.WindowID]*types.Window) *types.Window {
	var top *types.Window
	for _, w := range windows {
		if !w.Visible() {
			continue
		}
		if top == nil || w.ZOrder > top.ZOrder {
			top = w
		}
	}
	return top
}

// Stack returns the visible windows sorted back to front
func Stack(windows []*types.Window) []*types.Window {
	out := make([]*types.Window, 0, len(windows))
	for _, w := range windows {
		if w.Visible() {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ZOrder < out[j].ZOrder })
	return out
}

// Cycle returns the visible window after (or before, if backward) current
// in front-to-back order, wrapping around. Returns "" when nothing is
// visible.
func Cycle(windows []*types.Window, current id.WindowID, backward bool) id.WindowID {
	stack := Stack(windows)
	if len(stack) == 0 {
		return ""
	}

	// front to back
	for i, j := 0, len(stack)-1; i < j; i, j = i+1, j-1 {
		stack[i], stack[j] = stack[j], stack[i]
	}

	idx := -1
	for i, w := range stack {
		if w.ID == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return stack[0].ID
	}

	step := 1
	if backward {
		step = -1
	}
	return stack[(idx+step+len(stack))%len(stack)].ID
}

// Check verifies the stacking invariants: at most one active window, the
// active window is the topmost visible one, and no two visible windows
// share a zOrder.
func Check(windows []*types.Window) error {
	var active *types.Window
	seen := make(map[int64]id.WindowID)
	var top *types.Window

	for _, w := range windows {
		if w.IsActive {
			if active != nil {
				return fmt.Errorf("%w: %s and %s", ErrMultipleActive, active.ID, w.ID)
			}
			active = w
		}
		if !w.Visible() {
			continue
		}
		if other, dup := seen[w.ZOrder]; dup {
			return fmt.Errorf("%w: %s and %s at %d", ErrZOrderTie, other, w.ID, w.ZOrder)
		}
		seen[w.ZOrder] = w.ID
		if top == nil || w.ZOrder > top.ZOrder {
			top = w
		}
	}

	if top != nil && (active == nil || active.ID != top.ID) {
		return fmt.Errorf("%w: topmost is %s", ErrActiveNotTop, top.ID)
	}
	if top == nil && active != nil {
		return fmt.Errorf("%w: %s is active with nothing visible", ErrActiveNotTop, active.ID)
	}
	return nil
}
