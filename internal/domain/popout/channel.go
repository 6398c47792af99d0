package popout

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webdesk/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webdesk/internal/shared/id"
	"github.com/GriffinCanCode/webdesk/internal/shared/types"
)

// Outcomes recorded per message
const (
	OutcomeApplied   = "applied"
	OutcomeIgnored   = "ignored"
	OutcomeStale     = "stale"
	OutcomeCoalesced = "coalesced"
	OutcomeDropped   = "dropped"
	OutcomeSent      = "sent"
	OutcomeUnrouted  = "unrouted"
)

const defaultQueueSize = 256

var ErrChannelClosed = errors.New("popout channel closed")

// Registry is the slice of the desktop core the channel mutates
type Registry interface {
	Get(wid id.WindowID) (*types.Window, bool)
	ConfirmPopout(wid id.WindowID) bool
	ReturnPopout(wid id.WindowID) bool
	RemoveDetached(wid id.WindowID) bool
}

// Sender delivers parent-to-detached messages. Implementations route by
// m.Window().
type Sender interface {
	Send(m Message) error
}

// Channel is the parent end of the popout protocol. Inbound messages are
// queued by Submit and applied by Run in turns: everything queued when a
// turn starts is coalesced per window and applied together.
type Channel struct {
	registry Registry
	sender   Sender
	inbox    chan Message
	done     chan struct{}
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// Option configures a Channel
type Option func(*Channel)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Channel) { c.logger = logger }
}

// WithMetrics records per-message outcomes
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(c *Channel) { c.metrics = metrics }
}

// WithQueueSize bounds the inbox
func WithQueueSize(n int) Option {
	return func(c *Channel) {
		if n > 0 {
			c.inbox = make(chan Message, n)
		}
	}
}

// NewChannel creates the parent end over registry
func NewChannel(registry Registry, opts ...Option) *Channel {
	c := &Channel{
		registry: registry,
		inbox:    make(chan Message, defaultQueueSize),
		done:     make(chan struct{}),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetSender wires the outbound transport. Must be called before Run.
func (c *Channel) SetSender(s Sender) {
	c.sender = s
}

// Receive decodes a raw payload sent by the detached context hosting from
// and queues it. Malformed payloads, messages about another window and
// messages that do not travel towards the parent are logged and dropped.
func (c *Channel) Receive(ctx context.Context, from id.WindowID, data []byte) error {
	m, err := Decode(data)
	if err != nil {
		c.logger.Warn("dropping malformed popout message",
			zap.Error(err),
			zap.ByteString("payload", truncate(data, 256)),
		)
		c.record("invalid", OutcomeDropped)
		return nil
	}
	if m.Window() != from {
		c.logger.Warn("dropping popout message about another window",
			zap.String("type", string(m.Kind())),
			zap.String("window_id", from.String()),
			zap.String("target", m.Window().String()),
		)
		c.record(string(m.Kind()), OutcomeDropped)
		return nil
	}
	return c.Submit(ctx, m)
}

// Submit queues a decoded message, blocking while the inbox is full
func (c *Channel) Submit(ctx context.Context, m Message) error {
	if !m.Kind().ToParent() {
		c.logger.Warn("dropping popout message sent in the wrong direction",
			zap.String("type", string(m.Kind())),
			zap.String("window_id", m.Window().String()),
		)
		c.record(string(m.Kind()), OutcomeDropped)
		return nil
	}

	select {
	case <-c.done:
		return ErrChannelClosed
	default:
	}

	select {
	case c.inbox <- m:
		return nil
	case <-c.done:
		return ErrChannelClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run dispatches queued messages until ctx is cancelled
func (c *Channel) Run(ctx context.Context) {
	defer close(c.done)

	for {
		var first Message
		select {
		case <-ctx.Done():
			return
		case first = <-c.inbox:
		}

		batch := []Message{first}
	drain:
		for {
			select {
			case m := <-c.inbox:
				batch = append(batch, m)
			default:
				break drain
			}
		}
		c.Apply(batch...)
	}
}

// Apply runs one dispatch turn over msgs. Messages for the same window are
// coalesced: the last removal wins if there is one, otherwise the last
// message wins. Windows are processed in first-seen order.
func (c *Channel) Apply(msgs ...Message) {
	winners := make(map[id.WindowID]Message, len(msgs))
	var order []id.WindowID

	for _, m := range msgs {
		wid := m.Window()
		prev, seen := winners[wid]
		if !seen {
			order = append(order, wid)
			winners[wid] = m
			continue
		}
		if prev.Kind().Removes() && !m.Kind().Removes() {
			c.record(string(m.Kind()), OutcomeCoalesced)
			continue
		}
		c.record(string(prev.Kind()), OutcomeCoalesced)
		winners[wid] = m
	}

	for _, wid := range order {
		c.apply(winners[wid])
	}
}

func (c *Channel) apply(m Message) {
	wid := m.Window()
	var applied bool

	switch msg := m.(type) {
	case PopoutReady:
		applied = c.registry.ConfirmPopout(wid)
		if !applied {
			if _, ok := c.registry.Get(wid); !ok {
				c.logger.Info("popout ready for a removed window, closing it",
					zap.String("window_id", wid.String()))
				c.record(string(m.Kind()), OutcomeStale)
				c.RequestClose(wid)
				return
			}
		}
	case ReturnWindow:
		applied = c.registry.ReturnPopout(wid)
	case CloseExternalWindow, PopoutClosed:
		applied = c.registry.RemoveDetached(wid)
	case ClosePopout:
		c.logger.Warn("parent received close popout", zap.String("window_id", wid.String()))
		c.record(string(m.Kind()), OutcomeDropped)
		return
	default:
		c.logger.Error("unhandled popout message", zap.Any("message", msg))
		return
	}

	outcome := OutcomeApplied
	if !applied {
		outcome = OutcomeIgnored
	}
	c.logger.Debug("popout message",
		zap.String("type", string(m.Kind())),
		zap.String("window_id", wid.String()),
		zap.String("outcome", outcome),
	)
	c.record(string(m.Kind()), outcome)
}

// RequestClose sends CLOSE_POPOUT to the detached context hosting wid
func (c *Channel) RequestClose(wid id.WindowID) {
	m := ClosePopout{WindowID: wid}
	if c.sender == nil {
		c.logger.Warn("no popout sender, cannot close detached window",
			zap.String("window_id", wid.String()))
		c.record(string(m.Kind()), OutcomeUnrouted)
		return
	}
	if err := c.sender.Send(m); err != nil {
		c.logger.Warn("failed to send close popout",
			zap.String("window_id", wid.String()),
			zap.Error(err),
		)
		c.record(string(m.Kind()), OutcomeUnrouted)
		return
	}
	c.record(string(m.Kind()), OutcomeSent)
}

func (c *Channel) record(msgType, outcome string) {
	if c.metrics != nil {
		c.metrics.RecordPopoutMessage(msgType, outcome)
	}
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
