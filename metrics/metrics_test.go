package metrics

import (
	"context"
	"testing"

	"github.com/pdrpinto/coverage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCountsTicksAndRuns(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector, err := New(registry)
	require.NoError(t, err)

	result, err := coverage.Plan(context.Background(), coverage.DefaultGrid(), 7, coverage.Position{Row: 1, Col: 2},
		coverage.WithExploreProbability(0), coverage.WithHooks(collector.Hooks()))
	require.NoError(t, err)
	require.Equal(t, 7, result.Steps)

	assert.Equal(t, 7.0, testutil.ToFloat64(collector.ticks.WithLabelValues(string(coverage.SelectionGreedy))))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.runs.WithLabelValues(string(coverage.StatusCompleted))))
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.runs.WithLabelValues(string(coverage.StatusCancelled))))

	count, err := testutil.GatherAndCount(registry, "coverage_run_steps")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewRejectsDoubleRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := New(registry)
	require.NoError(t, err)

	_, err = New(registry)
	assert.Error(t, err)
}

func TestChainCallsEveryHook(t *testing.T) {
	var calls []string
	first := coverage.Hooks{OnTick: func(context.Context, coverage.StepSnapshot) { calls = append(calls, "first") }}
	second := coverage.Hooks{
		OnTick:   func(context.Context, coverage.StepSnapshot) { calls = append(calls, "second") },
		OnFinish: func(context.Context, coverage.Result) { calls = append(calls, "finish") },
	}

	_, err := coverage.Plan(context.Background(), coverage.DefaultGrid(), 1, coverage.Position{},
		coverage.WithHooks(Chain(first, second)))
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second", "finish"}, calls)
}
