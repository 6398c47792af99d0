package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webdesk/internal/domain/popout"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webdesk/internal/shared/id"
)

// WindowParam names the query parameter a detached context uses to say
// which window it hosts.
const WindowParam = "window"

var ErrNotConnected = errors.New("no detached context connected for window")

// Inbox receives raw popout payloads from the socket bound to from
type Inbox interface {
	Receive(ctx context.Context, from id.WindowID, data []byte) error
}

// PopoutHub owns the sockets of detached contexts, one per window. It
// feeds their messages to the popout channel and routes CLOSE_POPOUT back.
type PopoutHub struct {
	inbox        Inbox
	logger       *zap.Logger
	metrics      *monitoring.Metrics
	writeTimeout time.Duration

	mu    sync.Mutex
	conns map[id.WindowID]*popoutConn
}

type popoutConn struct {
	id      string
	wid     id.WindowID
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// NewPopoutHub creates a hub feeding inbox. A zero writeTimeout uses the
// default.
func NewPopoutHub(inbox Inbox, writeTimeout time.Duration, logger *zap.Logger, metrics *monitoring.Metrics) *PopoutHub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	return &PopoutHub{
		inbox:        inbox,
		logger:       logger,
		metrics:      metrics,
		writeTimeout: writeTimeout,
		conns:        make(map[id.WindowID]*popoutConn),
	}
}

// HandlePopout upgrades a detached context's connection. Messages from one
// socket are read by one goroutine, so they reach the channel in send
// order. A socket may only speak for the window it was opened for.
func (h *PopoutHub) HandlePopout(c *gin.Context) {
	wid := id.WindowID(c.Query(WindowParam))
	if !id.IsWindowID(wid.String()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid window id"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("popout upgrade failed", zap.Error(err))
		return
	}

	pc := &popoutConn{id: uuid.NewString(), wid: wid, conn: conn}
	h.register(pc)
	defer func() {
		h.unregister(pc)
		conn.Close()
	}()

	ctx := c.Request.Context()
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("popout read error", zap.String("window_id", wid.String()), zap.Error(err))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		h.record("in", "popout")
		if err := h.inbox.Receive(ctx, wid, data); err != nil {
			h.logger.Warn("popout channel rejected message", zap.String("window_id", wid.String()), zap.Error(err))
			return
		}
	}
}

// Send writes m to the detached context hosting m.Window()
func (h *PopoutHub) Send(m popout.Message) error {
	h.mu.Lock()
	pc, ok := h.conns[m.Window()]
	h.mu.Unlock()
	if !ok {
		return ErrNotConnected
	}

	data, err := popout.Encode(m)
	if err != nil {
		return err
	}

	pc.writeMu.Lock()
	defer pc.writeMu.Unlock()
	pc.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
	if err := pc.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}
	h.record("out", string(m.Kind()))
	return nil
}

// Connected reports whether a detached context for wid is attached
func (h *PopoutHub) Connected(wid id.WindowID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.conns[wid]
	return ok
}

// Close disconnects every detached context
func (h *PopoutHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, pc := range h.conns {
		pc.conn.Close()
	}
}

// register binds pc to its window. A newer socket for the same window
// replaces the old one (e.g. the tab reloaded).
func (h *PopoutHub) register(pc *popoutConn) {
	h.mu.Lock()
	old, replaced := h.conns[pc.wid]
	h.conns[pc.wid] = pc
	h.mu.Unlock()

	if replaced {
		h.logger.Info("popout socket replaced", zap.String("window_id", pc.wid.String()))
		old.conn.Close()
	}
	if h.metrics != nil {
		h.metrics.IncWSConnections("popout")
	}
}

func (h *PopoutHub) unregister(pc *popoutConn) {
	h.mu.Lock()
	if h.conns[pc.wid] == pc {
		delete(h.conns, pc.wid)
	}
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.DecWSConnections("popout")
	}
}

func (h *PopoutHub) record(direction, msgType string) {
	if h.metrics != nil {
		h.metrics.RecordWSMessage(direction, msgType)
	}
}
