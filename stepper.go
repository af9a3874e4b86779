package coverage

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pdrpinto/coverage/internal"
)

// Selection tells how the destination of a tick was picked.
type Selection string

const (
	// SelectionGreedy took the lowest-weight candidate.
	SelectionGreedy Selection = "greedy"
	// SelectionFallbackEmpty found no candidate after filtering and drew a
	// random neighbor.
	SelectionFallbackEmpty Selection = "fallback_empty"
	// SelectionFallbackOverride skipped the greedy choice on a random draw.
	SelectionFallbackOverride Selection = "fallback_override"
)

// StepSnapshot exposes the state of the planner after one tick
type StepSnapshot struct {
	StepIndex int        `json:"step"`
	From      Position   `json:"from"`
	To        Position   `json:"to"`
	Weight    int        `json:"weight"`
	Cost      int        `json:"cost"`
	Selection Selection  `json:"selection"`
	Trail     []Position `json:"trail"`
}

// Stepper advances a coverage run one tick at a time. It owns a private copy
// of the grid. A Stepper is not safe for concurrent use.
type Stepper struct {
	grid   *Grid
	trail  *Trail
	rng    *rand.Rand
	logger *slog.Logger
	hooks  Hooks

	tickPause          time.Duration
	exploreProbability float64
	runID              string

	start   Position
	current Position
	steps   int
	cost    int
	path    []Position
}

// NewStepper copies grid and places the agent at start.
func NewStepper(grid *Grid, start Position, options ...Option) (*Stepper, error) {
	if grid == nil {
		return nil, ErrEmptyGrid
	}
	if !grid.Contains(start) {
		return nil, fmt.Errorf("%w: %v on %dx%d grid", ErrStartOutOfBounds, start, grid.Rows(), grid.Cols())
	}
	opts, err := buildOptions(options)
	if err != nil {
		return nil, err
	}

	return &Stepper{
		grid:               grid.Clone(),
		trail:              NewTrail(opts.TrailLength),
		rng:                opts.Rand,
		logger:             opts.Logger,
		hooks:              opts.Hooks,
		tickPause:          opts.TickPause,
		exploreProbability: opts.ExploreProbability,
		runID:              opts.runID,
		start:              start,
		current:            start,
		path:               []Position{start},
	}, nil
}

func (s *Stepper) Start() Position    { return s.start }
func (s *Stepper) Position() Position { return s.current }
func (s *Stepper) Steps() int         { return s.steps }
func (s *Stepper) Cost() int          { return s.cost }

// Grid returns a copy of the stepper's grid.
func (s *Stepper) Grid() *Grid { return s.grid.Clone() }

// Step advances the run by one tick and returns a snapshot.
// It fails only when ctx is already done.
func (s *Stepper) Step(ctx context.Context) (StepSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return StepSnapshot{StepIndex: s.steps, From: s.current, To: s.current, Cost: s.cost}, err
	}
	snapshot := s.tick()
	if s.hooks.OnTick != nil {
		s.hooks.OnTick(ctx, snapshot)
	}
	return snapshot, nil
}

// Run ticks until stepBudget steps are done or ctx is cancelled.
// Cancellation is sampled once per tick, before the tick starts. The tick
// pause runs between ticks, never after the last one.
func (s *Stepper) Run(ctx context.Context, stepBudget int) Result {
	status := StatusCompleted
	for s.steps < stepBudget {
		if _, err := s.Step(ctx); err != nil {
			status = StatusCancelled
			break
		}
		if s.tickPause > 0 && s.steps < stepBudget {
			time.Sleep(s.tickPause)
		}
	}

	result := s.result(status)
	s.logger.Debug("run finished",
		"run_id", s.runID,
		"status", result.Status,
		"steps", result.Steps,
		"cost", result.Cost,
		"final", result.Final,
	)
	if s.hooks.OnFinish != nil {
		s.hooks.OnFinish(ctx, result)
	}
	return result
}

func (s *Stepper) result(status Status) Result {
	path := make([]Position, len(s.path))
	copy(path, s.path)
	return Result{
		RunID:  s.runID,
		Steps:  s.steps,
		Cost:   s.cost,
		Final:  s.current,
		Status: status,
		Path:   path,
		Grid:   s.grid.Clone(),
	}
}

func (s *Stepper) tick() StepSnapshot {
	from := s.current
	s.grid.Increment(from)

	neighbors := s.neighbors(from)

	selection := SelectionGreedy
	next, found := s.lowestCandidate(from, neighbors)
	if s.exploreProbability > 0 && s.rng.Float64() < s.exploreProbability {
		found = false
		selection = SelectionFallbackOverride
	}
	if !found {
		if selection == SelectionGreedy {
			selection = SelectionFallbackEmpty
		}
		next = neighbors[s.rng.Intn(len(neighbors))]
	}

	s.trail.Push(from)
	weight := s.grid.Get(next)
	s.cost += weight
	s.steps++
	s.current = next
	s.path = append(s.path, next)

	s.logger.Debug("tick",
		"run_id", s.runID,
		"step", s.steps,
		"from", from,
		"to", next,
		"weight", weight,
		"selection", selection,
	)

	return StepSnapshot{
		StepIndex: s.steps,
		From:      from,
		To:        next,
		Weight:    weight,
		Cost:      s.cost,
		Selection: selection,
		Trail:     s.trail.Positions(),
	}
}

func (s *Stepper) neighbors(position Position) [8]Position {
	var out [8]Position
	for i, cell := range internal.Moore(position.Row, position.Col, s.grid.Rows(), s.grid.Cols()) {
		out[i] = Position{Row: cell[0], Col: cell[1]}
	}
	return out
}

// lowestCandidate picks the lowest-weight neighbor that is neither the
// current cell nor on the trail. Ties go to the first in enumeration order.
func (s *Stepper) lowestCandidate(current Position, neighbors [8]Position) (Position, bool) {
	var best Position
	bestWeight := 0
	found := false
	for _, neighbor := range neighbors {
		if neighbor == current || s.trail.Contains(neighbor) {
			continue
		}
		weight := s.grid.Get(neighbor)
		if !found || weight < bestWeight {
			best, bestWeight, found = neighbor, weight, true
		}
	}
	return best, found
}
