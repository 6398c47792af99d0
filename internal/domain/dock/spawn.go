package dock

import (
	"sync"

	"github.com/GriffinCanCode/webdesk/internal/shared/types"
)

const (
	DefaultSpawnStep  = 32
	DefaultSpawnCycle = 8
)

// DefaultWindowSize is used for apps that do not declare a size
var DefaultWindowSize = types.Size{Width: 640, Height: 480}

// Spawner staggers new windows diagonally so launches do not stack
// exactly on top of each other. After cycle launches it starts again at
// the origin.
type Spawner struct {
	mu     sync.Mutex
	origin types.Position
	step   int
	cycle  int
	n      int
}

// NewSpawner creates a spawner starting at (step, step)
func NewSpawner(step, cycle int) *Spawner {
	if step <= 0 {
		step = DefaultSpawnStep
	}
	if cycle <= 0 {
		cycle = DefaultSpawnCycle
	}
	return &Spawner{origin: types.Position{X: step, Y: step}, step: step, cycle: cycle}
}

// Next returns the position for the next launch
func (s *Spawner) Next() types.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	offset := (s.n % s.cycle) * s.step
	s.n++
	return types.Position{X: s.origin.X + offset, Y: s.origin.Y + offset}
}
