// Package metrics exports planner activity as Prometheus metrics.
package metrics

import (
	"context"

	"github.com/pdrpinto/coverage"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector counts ticks and runs. Register it once and pass Hooks() to
// every run that should be observed.
type Collector struct {
	ticks    *prometheus.CounterVec
	runs     *prometheus.CounterVec
	runSteps prometheus.Histogram
	runCost  prometheus.Histogram
}

// New creates the collectors and registers them with registerer.
func New(registerer prometheus.Registerer) (*Collector, error) {
	collector := &Collector{
		ticks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coverage_ticks_total",
				Help: "Total number of planner ticks, by how the destination was selected",
			},
			[]string{"selection"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coverage_runs_total",
				Help: "Total number of finished runs, by terminal status",
			},
			[]string{"status"},
		),
		runSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "coverage_run_steps",
			Help:    "Steps completed per run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		runCost: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "coverage_run_cost",
			Help:    "Accumulated cost per run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 16),
		}),
	}

	for _, c := range []prometheus.Collector{collector.ticks, collector.runs, collector.runSteps, collector.runCost} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return collector, nil
}

// Hooks returns planner hooks that feed the collector.
func (c *Collector) Hooks() coverage.Hooks {
	return coverage.Hooks{
		OnTick: func(_ context.Context, snapshot coverage.StepSnapshot) {
			c.ticks.WithLabelValues(string(snapshot.Selection)).Inc()
		},
		OnFinish: func(_ context.Context, result coverage.Result) {
			c.runs.WithLabelValues(string(result.Status)).Inc()
			c.runSteps.Observe(float64(result.Steps))
			c.runCost.Observe(float64(result.Cost))
		},
	}
}

// Chain combines hooks so each callback runs in order.
func Chain(hooks ...coverage.Hooks) coverage.Hooks {
	return coverage.Hooks{
		OnTick: func(ctx context.Context, snapshot coverage.StepSnapshot) {
			for _, h := range hooks {
				if h.OnTick != nil {
					h.OnTick(ctx, snapshot)
				}
			}
		},
		OnFinish: func(ctx context.Context, result coverage.Result) {
			for _, h := range hooks {
				if h.OnFinish != nil {
					h.OnFinish(ctx, result)
				}
			}
		},
	}
}
