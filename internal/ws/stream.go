package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webdesk/internal/domain/desktop"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webdesk/internal/shared/types"
)

const defaultWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // popout tabs and the desktop page may sit on other origins
	},
}

// Stream message types
const (
	TypeSnapshot = "snapshot"
	TypePing     = "ping"
	TypePong     = "pong"
	TypeError    = "error"
)

// StreamMessage is the envelope used on the snapshot stream
type StreamMessage struct {
	Type     string          `json:"type"`
	Snapshot *types.Snapshot `json:"snapshot,omitempty"`
	Message  string          `json:"message,omitempty"`
}

// Subscriber is the desktop core as seen by the stream
type Subscriber interface {
	Subscribe(l desktop.Listener) func()
}

// StreamHub pushes desktop snapshots to renderer connections. Each
// connection holds only the latest undelivered snapshot, so a slow client
// skips intermediate states instead of stalling the core.
type StreamHub struct {
	core         Subscriber
	logger       *zap.Logger
	metrics      *monitoring.Metrics
	writeTimeout time.Duration

	mu      sync.Mutex
	clients map[string]*streamClient
}

// NewStreamHub creates a hub over core. metrics may be nil.
func NewStreamHub(core Subscriber, logger *zap.Logger, metrics *monitoring.Metrics) *StreamHub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreamHub{
		core:         core,
		logger:       logger,
		metrics:      metrics,
		writeTimeout: defaultWriteTimeout,
		clients:      make(map[string]*streamClient),
	}
}

type streamClient struct {
	id   string
	conn *websocket.Conn

	mu      sync.Mutex
	pending *types.Snapshot
	wake    chan struct{}
	replies chan StreamMessage
	done    chan struct{}
}

func (c *streamClient) offer(snap *types.Snapshot) {
	c.mu.Lock()
	c.pending = snap
	c.mu.Unlock()
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *streamClient) take() *types.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := c.pending
	c.pending = nil
	return snap
}

// reply queues a control message, dropping it if the writer is behind
func (c *streamClient) reply(msg StreamMessage) {
	select {
	case c.replies <- msg:
	default:
	}
}

// HandleStream upgrades the request and streams snapshots until the peer
// goes away.
func (h *StreamHub) HandleStream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("stream upgrade failed", zap.Error(err))
		return
	}

	client := &streamClient{
		id:      uuid.NewString(),
		conn:    conn,
		wake:    make(chan struct{}, 1),
		replies: make(chan StreamMessage, 8),
		done:    make(chan struct{}),
	}
	h.register(client)
	defer h.unregister(client)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writeLoop(client)
	}()

	unsubscribe := h.core.Subscribe(client.offer)
	defer func() {
		unsubscribe()
		close(client.done)
		<-writerDone
		conn.Close()
	}()

	for {
		var msg StreamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("stream read error", zap.String("conn_id", client.id), zap.Error(err))
			}
			return
		}
		switch msg.Type {
		case TypePing:
			h.record("in", TypePing)
			client.reply(StreamMessage{Type: TypePong})
		default:
			h.record("in", "unknown")
			client.reply(StreamMessage{Type: TypeError, Message: "unknown message type"})
		}
	}
}

func (h *StreamHub) writeLoop(client *streamClient) {
	for {
		var msg StreamMessage
		select {
		case <-client.done:
			return
		case <-client.wake:
			snap := client.take()
			if snap == nil {
				continue
			}
			msg = StreamMessage{Type: TypeSnapshot, Snapshot: snap}
		case msg = <-client.replies:
		}

		client.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := client.conn.WriteJSON(msg); err != nil {
			h.logger.Debug("stream write failed", zap.String("conn_id", client.id), zap.Error(err))
			// unblock the reader so the handler can clean up
			client.conn.Close()
			return
		}
		h.record("out", msg.Type)
	}
}

// Len returns the number of connected renderers
func (h *StreamHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every renderer
func (h *StreamHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, client := range h.clients {
		client.conn.Close()
	}
}

func (h *StreamHub) register(client *streamClient) {
	h.mu.Lock()
	h.clients[client.id] = client
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.IncWSConnections("stream")
	}
	h.logger.Debug("stream connected", zap.String("conn_id", client.id))
}

func (h *StreamHub) unregister(client *streamClient) {
	h.mu.Lock()
	delete(h.clients, client.id)
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.DecWSConnections("stream")
	}
	h.logger.Debug("stream disconnected", zap.String("conn_id", client.id))
}

func (h *StreamHub) record(direction, msgType string) {
	if h.metrics != nil {
		h.metrics.RecordWSMessage(direction, msgType)
	}
}
