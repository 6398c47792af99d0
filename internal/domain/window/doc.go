// Package window implements the window registry and its stacking policy.
//
// Every record carries a zOrder drawn from a monotonic counter. Focusing a
// window assigns it the next counter value and touches no other record, so
// focus is O(1) and ties cannot occur. The active window is always the
// visible (not minimized, not popped out) record with the highest zOrder.
//
// Example usage:
//
//	reg := window.NewRegistry(types.Size{Width: 1440, Height: 900})
//	a := reg.Open(types.OpenSpec{Title: "Notes", AppKey: "notes"})
//	b := reg.Open(types.OpenSpec{Title: "Chat", AppKey: "chat"})
//	reg.Focus(a)
//	reg.Minimize(a) // b becomes active again
package window
