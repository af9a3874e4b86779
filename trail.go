package coverage

// Trail remembers the most recently vacated positions, oldest first.
// It never holds more than its capacity; a zero capacity keeps nothing.
type Trail struct {
	positions []Position
	capacity  int
}

func NewTrail(capacity int) *Trail {
	return &Trail{
		positions: make([]Position, 0, capacity+1),
		capacity:  capacity,
	}
}

func (trail *Trail) Len() int { return len(trail.positions) }
func (trail *Trail) Cap() int { return trail.capacity }

// Push appends position and evicts the oldest entry once over capacity.
func (trail *Trail) Push(position Position) {
	if trail.capacity == 0 {
		return
	}
	trail.positions = append(trail.positions, position)
	if len(trail.positions) > trail.capacity {
		copy(trail.positions, trail.positions[1:])
		trail.positions = trail.positions[:trail.capacity]
	}
}

func (trail *Trail) Contains(position Position) bool {
	for _, p := range trail.positions {
		if p == position {
			return true
		}
	}
	return false
}

// Positions returns a copy of the trail, oldest first.
func (trail *Trail) Positions() []Position {
	out := make([]Position, len(trail.positions))
	copy(out, trail.positions)
	return out
}
