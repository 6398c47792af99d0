package popout

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/webdesk/internal/shared/id"
)

// Kind is the wire discriminator of a popout message
type Kind string

const (
	KindPopoutReady         Kind = "POPOUT_READY"
	KindReturnWindow        Kind = "RETURN_WINDOW"
	KindCloseExternalWindow Kind = "CLOSE_EXTERNAL_WINDOW"
	KindClosePopout         Kind = "CLOSE_POPOUT"
	KindPopoutClosed        Kind = "POPOUT_CLOSED"
)

var (
	ErrMalformed       = errors.New("malformed popout message")
	ErrUnknownType     = errors.New("unknown popout message type")
	ErrMissingWindowID = errors.New("popout message has no windowId")
)

// Message is one of PopoutReady, ReturnWindow, CloseExternalWindow,
// ClosePopout or PopoutClosed. The set is closed: only this package can
// add variants.
type Message interface {
	Kind() Kind
	Window() id.WindowID
	sealed()
}

// PopoutReady is sent by the detached context once, on mount
type PopoutReady struct{ WindowID id.WindowID }

// ReturnWindow asks the parent to take the window back inline
type ReturnWindow struct{ WindowID id.WindowID }

// CloseExternalWindow reports that the user closed the detached window
type CloseExternalWindow struct{ WindowID id.WindowID }

// ClosePopout is the parent asking a detached context to close itself
type ClosePopout struct{ WindowID id.WindowID }

// PopoutClosed is the best-effort unload notification
type PopoutClosed struct{ WindowID id.WindowID }

func (m PopoutReady) Kind() Kind         { return KindPopoutReady }
func (m ReturnWindow) Kind() Kind        { return KindReturnWindow }
func (m CloseExternalWindow) Kind() Kind { return KindCloseExternalWindow }
func (m ClosePopout) Kind() Kind         { return KindClosePopout }
func (m PopoutClosed) Kind() Kind        { return KindPopoutClosed }

func (m PopoutReady) Window() id.WindowID         { return m.WindowID }
func (m ReturnWindow) Window() id.WindowID        { return m.WindowID }
func (m CloseExternalWindow) Window() id.WindowID { return m.WindowID }
func (m ClosePopout) Window() id.WindowID         { return m.WindowID }
func (m PopoutClosed) Window() id.WindowID        { return m.WindowID }

func (PopoutReady) sealed()         {}
func (ReturnWindow) sealed()        {}
func (CloseExternalWindow) sealed() {}
func (ClosePopout) sealed()         {}
func (PopoutClosed) sealed()        {}

// ToParent reports whether k travels from the detached context to the
// parent.
func (k Kind) ToParent() bool {
	switch k {
	case KindPopoutReady, KindReturnWindow, KindCloseExternalWindow, KindPopoutClosed:
		return true
	default:
		return false
	}
}

// Removes reports whether k ends the record's life in the parent
func (k Kind) Removes() bool {
	return k == KindCloseExternalWindow || k == KindPopoutClosed
}

// New builds the message for kind k
func New(k Kind, wid id.WindowID) (Message, error) {
	if wid == "" {
		return nil, ErrMissingWindowID
	}
	switch k {
	case KindPopoutReady:
		return PopoutReady{WindowID: wid}, nil
	case KindReturnWindow:
		return ReturnWindow{WindowID: wid}, nil
	case KindCloseExternalWindow:
		return CloseExternalWindow{WindowID: wid}, nil
	case KindClosePopout:
		return ClosePopout{WindowID: wid}, nil
	case KindPopoutClosed:
		return PopoutClosed{WindowID: wid}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, k)
	}
}

type envelope struct {
	Type     string `json:"type"`
	WindowID string `json:"windowId"`
}

// Encode serializes m as {"type": ..., "windowId": ...}
func Encode(m Message) ([]byte, error) {
	return sonic.Marshal(envelope{Type: string(m.Kind()), WindowID: m.Window().String()})
}

// Decode parses one wire message. Payloads with an unrecognized type or no
// windowId are rejected with ErrUnknownType or ErrMissingWindowID.
func Decode(data []byte) (Message, error) {
	var env envelope
	if err := sonic.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrUnknownType)
	}
	return New(Kind(env.Type), id.WindowID(env.WindowID))
}
