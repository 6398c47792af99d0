/*
Package desktop owns the authoritative desktop state.

Core wraps the window registry and the mode controller behind a single
mutex. Every successful mutation bumps a version counter and publishes an
immutable snapshot to subscribers, in mutation order. Consumers (the dock,
the snapshot stream, the popout channel) only ever read snapshots; they
change state by calling Core methods.

	core := desktop.New(desktop.Config{Viewport: types.Size{Width: 1920, Height: 1080}})
	unsubscribe := core.Subscribe(func(snap *types.Snapshot) {
		render(snap.Visible())
	})
	defer unsubscribe()

	wid := core.Open(types.OpenSpec{Title: "Notes", AppKey: "notes"})
	core.Maximize(wid)

Windows that are popped out live in a detached context. Core keeps their
records, but closing one is deferred to that context through the
CloseRequester installed with SetCloseRequester.
*/
package desktop
