package ws

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/GriffinCanCode/webdesk/internal/domain/popout"
	"github.com/GriffinCanCode/webdesk/internal/shared/id"
)

// PopoutPath is where the popout socket is mounted
const PopoutPath = "/popout/ws"

// ClientTransport is the detached side of a popout socket. It satisfies
// popout.Transport.
type ClientTransport struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// PopoutURL turns the service base URL (http or ws) into the popout
// socket URL for wid.
func PopoutURL(base string, wid id.WindowID) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + PopoutPath
	q := u.Query()
	q.Set(WindowParam, wid.String())
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Dial connects a detached context for wid to the service at base
func Dial(ctx context.Context, base string, wid id.WindowID) (*ClientTransport, error) {
	target, err := PopoutURL(base, wid)
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	return &ClientTransport{conn: conn}, nil
}

// Send writes one message
func (t *ClientTransport) Send(m popout.Message) error {
	data, err := popout.Encode(m)
	if err != nil {
		return err
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	t.conn.SetWriteDeadline(time.Now().Add(defaultWriteTimeout))
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

// Receive blocks for the next message. Cancelling ctx interrupts the read.
func (t *ClientTransport) Receive(ctx context.Context) (popout.Message, error) {
	stop := context.AfterFunc(ctx, func() {
		t.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	_, data, err := t.conn.ReadMessage()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return popout.Decode(data)
}

// Close sends a close frame and closes the socket
func (t *ClientTransport) Close() error {
	t.writeMu.Lock()
	t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	t.writeMu.Unlock()
	return t.conn.Close()
}
