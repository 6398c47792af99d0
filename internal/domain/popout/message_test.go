package popout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/webdesk/internal/shared/id"
)

func TestEncodeWireForm(t *testing.T) {
	data, err := Encode(CloseExternalWindow{WindowID: "win_1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"CLOSE_EXTERNAL_WINDOW","windowId":"win_1"}`, string(data))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Message
		wantErr error
	}{
		{"ready", `{"type":"POPOUT_READY","windowId":"win_a"}`, PopoutReady{WindowID: "win_a"}, nil},
		{"return", `{"type":"RETURN_WINDOW","windowId":"win_a"}`, ReturnWindow{WindowID: "win_a"}, nil},
		{"close popout", `{"type":"CLOSE_POPOUT","windowId":"win_a"}`, ClosePopout{WindowID: "win_a"}, nil},
		{"closed", `{"type":"POPOUT_CLOSED","windowId":"win_a","extra":1}`, PopoutClosed{WindowID: "win_a"}, nil},
		{"unknown type", `{"type":"MAXIMIZE","windowId":"win_a"}`, nil, ErrUnknownType},
		{"missing type", `{"windowId":"win_a"}`, nil, ErrUnknownType},
		{"missing window", `{"type":"POPOUT_READY"}`, nil, ErrMissingWindowID},
		{"not json", `ready!`, nil, ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.payload))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKindDirection(t *testing.T) {
	assert.True(t, KindPopoutReady.ToParent())
	assert.True(t, KindPopoutClosed.ToParent())
	assert.False(t, KindClosePopout.ToParent())
	assert.False(t, Kind("NOPE").ToParent())

	assert.True(t, KindCloseExternalWindow.Removes())
	assert.True(t, KindPopoutClosed.Removes())
	assert.False(t, KindReturnWindow.Removes())
}

func TestNewRejectsEmptyWindow(t *testing.T) {
	_, err := New(KindPopoutReady, id.WindowID(""))
	assert.ErrorIs(t, err, ErrMissingWindowID)
}
