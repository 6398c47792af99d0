package popout

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webdesk/internal/shared/id"
)

var ErrDetachedClosed = errors.New("detached window closed")

// Transport carries messages between a detached context and its parent
type Transport interface {
	Send(m Message) error
	Receive(ctx context.Context) (Message, error)
	Close() error
}

// Detached is the detached-context end of the protocol for one window. It
// owns no desktop state and only sends intent messages.
type Detached struct {
	wid       id.WindowID
	transport Transport
	logger    *zap.Logger

	readyOnce sync.Once
	readyErr  error

	mu       sync.Mutex
	resolved bool // RETURN_WINDOW or CLOSE_EXTERNAL_WINDOW was sent
	closed   bool
	done     chan struct{}
}

// NewDetached binds a detached context for wid to transport
func NewDetached(wid id.WindowID, transport Transport, logger *zap.Logger) *Detached {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detached{
		wid:       wid,
		transport: transport,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// WindowID returns the window this context hosts
func (d *Detached) WindowID() id.WindowID {
	return d.wid
}

// Mount announces the context to the parent. POPOUT_READY is sent exactly
// once however many times Mount is called.
func (d *Detached) Mount() error {
	d.readyOnce.Do(func() {
		d.readyErr = d.transport.Send(PopoutReady{WindowID: d.wid})
	})
	return d.readyErr
}

// Return hands the window back to the parent and closes this context
func (d *Detached) Return() error {
	return d.resolve(ReturnWindow{WindowID: d.wid})
}

// CloseWindow closes the window for good and closes this context
func (d *Detached) CloseWindow() error {
	return d.resolve(CloseExternalWindow{WindowID: d.wid})
}

func (d *Detached) resolve(m Message) error {
	d.mu.Lock()
	if d.closed || d.resolved {
		d.mu.Unlock()
		return ErrDetachedClosed
	}
	d.resolved = true
	d.mu.Unlock()

	err := d.transport.Send(m)
	d.Unload()
	return err
}

// Unload tears the context down. If the window was neither returned nor
// closed explicitly, POPOUT_CLOSED is sent on a best-effort basis first.
func (d *Detached) Unload() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	notify := !d.resolved
	d.mu.Unlock()

	if notify {
		if err := d.transport.Send(PopoutClosed{WindowID: d.wid}); err != nil {
			d.logger.Debug("popout closed notification lost",
				zap.String("window_id", d.wid.String()),
				zap.Error(err),
			)
		}
	}
	close(d.done)
	if err := d.transport.Close(); err != nil {
		d.logger.Debug("closing popout transport", zap.Error(err))
	}
}

// Handle applies one parent message. CLOSE_POPOUT for this window closes
// the context; everything else is ignored.
func (d *Detached) Handle(m Message) {
	if m.Window() != d.wid {
		d.logger.Warn("popout message for another window",
			zap.String("window_id", d.wid.String()),
			zap.String("target", m.Window().String()),
		)
		return
	}
	switch m.(type) {
	case ClosePopout:
		d.Unload()
	default:
		d.logger.Warn("unexpected popout message in detached context",
			zap.String("type", string(m.Kind())))
	}
}

// Listen mounts the context and handles parent messages until the context
// closes, ctx is cancelled, or the transport fails.
func (d *Detached) Listen(ctx context.Context) error {
	if err := d.Mount(); err != nil {
		return err
	}
	for {
		m, err := d.transport.Receive(ctx)
		if err != nil {
			select {
			case <-d.done:
				return nil
			default:
			}
			if errors.Is(err, ErrMalformed) || errors.Is(err, ErrUnknownType) || errors.Is(err, ErrMissingWindowID) {
				d.logger.Warn("dropping malformed popout message", zap.Error(err))
				continue
			}
			return err
		}
		d.Handle(m)
		if d.Closed() {
			return nil
		}
	}
}

// Closed reports whether the context has unloaded
func (d *Detached) Closed() bool {
	select {
	case <-d.done:
		return true
	default:
		return false
	}
}

// Done is closed once the context unloads
func (d *Detached) Done() <-chan struct{} {
	return d.done
}
