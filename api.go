package coverage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pdrpinto/coverage/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultTrailLength        = 3
	DefaultExploreProbability = 0.1
)

var (
	ErrInvalidBudget    = errors.New("step budget must not be negative")
	ErrStartOutOfBounds = errors.New("start position is outside the grid")
	ErrInvalidOption    = errors.New("invalid planner option")
)

// Status is the terminal state of a run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Result contains the outcome of a run
type Result struct {
	RunID  string     `json:"run_id,omitempty"`
	Steps  int        `json:"steps"`
	Cost   int        `json:"cost"`
	Final  Position   `json:"final"`
	Status Status     `json:"status"`
	Path   []Position `json:"path"`

	// Grid is the planner's private copy after the last tick.
	Grid *Grid `json:"-"`
}

// Hooks observe a run. Hooks are called on the goroutine running the planner.
type Hooks struct {
	OnTick   func(ctx context.Context, snapshot StepSnapshot)
	OnFinish func(ctx context.Context, result Result)
}

// Options defines parameters for the planner.
type Options struct {
	TrailLength        int
	TickPause          time.Duration
	ExploreProbability float64
	Rand               *rand.Rand
	Logger             *slog.Logger
	Hooks              Hooks
	Tracer             trace.Tracer

	runID string
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithTrailLength sets how many vacated positions are kept out of the
// candidate set. Zero disables the filter.
func WithTrailLength(length int) Option {
	return func(options *Options) { options.TrailLength = length }
}

// WithTickPause sleeps for pause between ticks.
func WithTickPause(pause time.Duration) Option {
	return func(options *Options) { options.TickPause = pause }
}

// WithExploreProbability sets the chance per tick of skipping the greedy
// choice and moving to a random neighbor.
func WithExploreProbability(probability float64) Option {
	return func(options *Options) { options.ExploreProbability = probability }
}

// WithRand sets the random source. The source is used only by the goroutine
// running the planner.
func WithRand(source *rand.Rand) Option {
	return func(options *Options) { options.Rand = source }
}

// WithSeed is shorthand for WithRand(rand.New(rand.NewSource(seed))).
func WithSeed(seed int64) Option {
	return func(options *Options) { options.Rand = rand.New(rand.NewSource(seed)) }
}

func WithLogger(logger *slog.Logger) Option {
	return func(options *Options) { options.Logger = logger }
}

func WithHooks(hooks Hooks) Option {
	return func(options *Options) { options.Hooks = hooks }
}

// WithTracer sets the tracer used by RunWithDeadline.
func WithTracer(tracer trace.Tracer) Option {
	return func(options *Options) { options.Tracer = tracer }
}

func withRunID(runID string) Option {
	return func(options *Options) { options.runID = runID }
}

func buildOptions(options []Option) (Options, error) {
	plannerOptions := Options{
		TrailLength:        DefaultTrailLength,
		ExploreProbability: DefaultExploreProbability,
	}
	for _, option := range options {
		option(&plannerOptions)
	}

	if plannerOptions.TrailLength < 0 {
		return Options{}, fmt.Errorf("%w: trail length %d", ErrInvalidOption, plannerOptions.TrailLength)
	}
	if plannerOptions.TickPause < 0 {
		return Options{}, fmt.Errorf("%w: tick pause %s", ErrInvalidOption, plannerOptions.TickPause)
	}
	if plannerOptions.ExploreProbability < 0 || plannerOptions.ExploreProbability > 1 {
		return Options{}, fmt.Errorf("%w: explore probability %v", ErrInvalidOption, plannerOptions.ExploreProbability)
	}

	if plannerOptions.Rand == nil {
		plannerOptions.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if plannerOptions.Logger == nil {
		plannerOptions.Logger = logging.NewNop()
	}
	if plannerOptions.Tracer == nil {
		plannerOptions.Tracer = otel.Tracer(tracerName)
	}
	return plannerOptions, nil
}

// Plan moves an agent from start for up to stepBudget ticks and returns what
// it accumulated. The caller's grid is never modified.
//
// contextObject is the cancellation signal: it is checked once at the start
// of every tick and a cancelled run returns its partial result with
// StatusCancelled and a nil error.
func Plan(
	contextObject context.Context,
	grid *Grid,
	stepBudget int,
	start Position,
	options ...Option,
) (Result, error) {
	if stepBudget < 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidBudget, stepBudget)
	}

	stepper, err := NewStepper(grid, start, options...)
	if err != nil {
		return Result{}, err
	}
	return stepper.Run(contextObject, stepBudget), nil
}
