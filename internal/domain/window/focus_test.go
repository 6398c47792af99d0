package window

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GriffinCanCode/webdesk/internal/shared/id"
	"github.com/GriffinCanCode/webdesk/internal/shared/types"
)

func rec(wid string, z int64, active bool) *types.Window {
	return &types.Window{ID: id.WindowID(wid), ZOrder: z, IsActive: active}
}

func TestStackSkipsHidden(t *testing.T) {
	minimized := rec("m", 9, false)
	minimized.IsMinimized = true
	popped := rec("p", 8, false)
	popped.IsPoppedOut = true

	stack := Stack([]*types.Window{rec("c", 3, true), minimized, rec("a", 1, false), popped, rec("b", 2, false)})

	got := make([]id.WindowID, 0, len(stack))
	for _, w := range stack {
		got = append(got, w.ID)
	}
	assert.Equal(t, []id.WindowID{"a", "b", "c"}, got)
}

func TestCycle(t *testing.T) {
	windows := []*types.Window{rec("a", 1, false), rec("b", 2, false), rec("c", 3, true)}

	tests := []struct {
		name     string
		current  id.WindowID
		backward bool
		want     id.WindowID
	}{
		{"forward from top", "c", false, "b"},
		{"forward wraps", "a", false, "c"},
		{"backward from top wraps", "c", true, "a"},
		{"backward", "a", true, "b"},
		{"unknown current picks top", "zzz", false, "c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Cycle(windows, tt.current, tt.backward))
		})
	}

	assert.Equal(t, id.WindowID(""), Cycle(nil, "a", false))
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		windows []*types.Window
		wantErr error
	}{
		{"empty", nil, nil},
		{"valid", []*types.Window{rec("a", 1, false), rec("b", 2, true)}, nil},
		{"two active", []*types.Window{rec("a", 1, true), rec("b", 2, true)}, ErrMultipleActive},
		{"active not top", []*types.Window{rec("a", 1, true), rec("b", 2, false)}, ErrActiveNotTop},
		{"tie", []*types.Window{rec("a", 2, false), rec("b", 2, true)}, ErrZOrderTie},
		{"nothing active", []*types.Window{rec("a", 1, false)}, ErrActiveNotTop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.windows)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
