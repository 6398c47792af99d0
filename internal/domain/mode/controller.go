package mode

// Controller holds the current mode and resolves shortcuts against it.
// Not safe for concurrent use; the desktop core owns it.
type Controller struct {
	current Mode
	keymap  Keymap
}

// NewController starts in initial, falling back to Default when initial
// is not a valid mode.
func NewController(initial Mode, keymap Keymap) *Controller {
	if !initial.Valid() {
		initial = Default
	}
	return &Controller{current: initial, keymap: keymap}
}

// Current returns the active mode
func (c *Controller) Current() Mode {
	return c.current
}

// Set changes the mode. Returns false for invalid modes and for no-op
// changes.
func (c *Controller) Set(m Mode) bool {
	if !m.Valid() || m == c.current {
		return false
	}
	c.current = m
	return true
}

// Dispatch resolves k and applies mode keys. The picker action is
// returned for the caller to apply.
func (c *Controller) Dispatch(k Key) (Action, bool) {
	action, m := c.keymap.Resolve(k)
	switch action {
	case ActionSetMode:
		return action, c.Set(m)
	case ActionTogglePicker:
		return action, true
	default:
		return ActionNone, false
	}
}
