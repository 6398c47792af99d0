// Package ws provides the WebSocket surfaces of the desktop service.
//
// Two endpoints are served:
//   - /stream: renderers receive the full desktop snapshot on connect and
//     after every change. Clients may send {"type":"ping"}.
//   - /popout/ws?window=<id>: a detached window context speaks the popout
//     protocol ({"type": ..., "windowId": ...}) with the parent.
//
// ClientTransport is the dialing side of the popout socket, used by
// headless detached contexts and tests.
//
// Example Usage:
//
//	streams := ws.NewStreamHub(core, logger, metrics)
//	popouts := ws.NewPopoutHub(channel, 5*time.Second, logger, metrics)
//	router.GET("/stream", streams.HandleStream)
//	router.GET(ws.PopoutPath, popouts.HandlePopout)
package ws
