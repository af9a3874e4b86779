package coverage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepperSingleCellFallsBackInPlace(t *testing.T) {
	grid, err := NewGrid([][]int{{0}})
	require.NoError(t, err)

	stepper, err := NewStepper(grid, Position{}, WithExploreProbability(0), WithSeed(1))
	require.NoError(t, err)

	wantCost := 0
	for i := 1; i <= 3; i++ {
		snapshot, err := stepper.Step(context.Background())
		require.NoError(t, err)
		wantCost += i
		assert.Equal(t, SelectionFallbackEmpty, snapshot.Selection)
		assert.Equal(t, Position{}, snapshot.To)
		assert.Equal(t, i, snapshot.Weight)
		assert.Equal(t, wantCost, snapshot.Cost)
	}
}

func TestStepperFallbackWhenTrailBlocksEverything(t *testing.T) {
	grid, err := NewGrid([][]int{{0, 0}})
	require.NoError(t, err)

	stepper, err := NewStepper(grid, Position{}, WithExploreProbability(0), WithSeed(1))
	require.NoError(t, err)
	ctx := context.Background()

	first, err := stepper.Step(ctx)
	require.NoError(t, err)
	assert.Equal(t, SelectionGreedy, first.Selection)
	assert.Equal(t, Position{Row: 0, Col: 1}, first.To)
	assert.Equal(t, 0, first.Weight)

	second, err := stepper.Step(ctx)
	require.NoError(t, err)
	assert.Equal(t, SelectionFallbackEmpty, second.Selection)
	assert.True(t, grid.Contains(second.To))
}

func TestStepperOverrideAlwaysFires(t *testing.T) {
	stepper, err := NewStepper(DefaultGrid(), Position{Row: 2, Col: 2}, WithExploreProbability(1), WithSeed(5))
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		snapshot, err := stepper.Step(context.Background())
		require.NoError(t, err)
		assert.Equal(t, SelectionFallbackOverride, snapshot.Selection)
	}
}

func TestStepperTieGoesToFirstNeighbor(t *testing.T) {
	grid, err := NewGrid([][]int{
		{1, 1, 1},
		{1, 1, 1},
		{1, 1, 1},
	})
	require.NoError(t, err)

	stepper, err := NewStepper(grid, Position{Row: 1, Col: 1}, WithExploreProbability(0))
	require.NoError(t, err)

	snapshot, err := stepper.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Position{Row: 0, Col: 0}, snapshot.To)
}

func TestStepperTrailExcludesRecentCells(t *testing.T) {
	grid, err := NewGrid([][]int{{0, 5, 5, 5, 5}})
	require.NoError(t, err)

	stepper, err := NewStepper(grid, Position{Row: 0, Col: 1}, WithExploreProbability(0), WithTrailLength(1))
	require.NoError(t, err)
	ctx := context.Background()

	snapshot, err := stepper.Step(ctx)
	require.NoError(t, err)
	assert.Equal(t, Position{Row: 0, Col: 0}, snapshot.To)

	// (0,1) was just vacated and sits on the trail, so the only other
	// neighbor of (0,0) is itself and the tick falls back.
	snapshot, err = stepper.Step(ctx)
	require.NoError(t, err)
	assert.Equal(t, SelectionFallbackEmpty, snapshot.Selection)
	assert.Equal(t, []Position{{Row: 0, Col: 0}}, snapshot.Trail)
}

func TestStepperInvariants(t *testing.T) {
	rows := [][]int{
		{3, 0, 7, 1, 4, 2},
		{5, 5, 0, 9, 1, 1},
		{2, 8, 3, 0, 6, 0},
		{0, 1, 4, 4, 2, 7},
	}
	grid, err := NewGrid(rows)
	require.NoError(t, err)

	const trailLength = 3
	stepper, err := NewStepper(grid, Position{Row: 3, Col: 5},
		WithExploreProbability(0.3), WithSeed(99), WithTrailLength(trailLength))
	require.NoError(t, err)
	ctx := context.Background()

	total := 0
	for i := 1; i <= 300; i++ {
		before := stepper.Grid()
		from := stepper.Position()

		snapshot, err := stepper.Step(ctx)
		require.NoError(t, err)

		// Arrival cost is the destination weight before its own next
		// increment; the departure cell was already incremented this tick.
		want := before.Get(snapshot.To)
		if snapshot.To == from {
			want++
		}
		require.Equal(t, want, snapshot.Weight, "tick %d", i)
		total += snapshot.Weight

		require.True(t, grid.Contains(snapshot.To), "tick %d left the grid: %v", i, snapshot.To)
		require.LessOrEqual(t, len(snapshot.Trail), trailLength)
		require.Equal(t, i, snapshot.StepIndex)
		require.Equal(t, total, snapshot.Cost)
	}
	assert.Equal(t, total, stepper.Cost())
	assert.Equal(t, 300, stepper.Steps())
}

func TestStepperStepAfterCancel(t *testing.T) {
	stepper, err := NewStepper(DefaultGrid(), Position{Row: 1, Col: 1})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snapshot, err := stepper.Step(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, snapshot.StepIndex)
	assert.Equal(t, Position{Row: 1, Col: 1}, stepper.Position())
}
