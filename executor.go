package coverage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/pdrpinto/coverage"

var (
	ErrInvalidDeadline = errors.New("deadline must be positive")
	// ErrNoResult means the worker stopped without reporting a result.
	ErrNoResult = errors.New("worker did not report a result")
)

// RunWithDeadline runs Plan on a separate goroutine and waits at most
// deadline for it. When the deadline passes first the run is cancelled and
// RunWithDeadline waits for the worker to stop at its next tick, returning
// whatever it accumulated with StatusCancelled.
//
// The worker is always joined before RunWithDeadline returns. Configuration
// errors are reported before the worker starts; ErrNoResult is returned if
// the worker fails without reporting.
func RunWithDeadline(
	contextObject context.Context,
	grid *Grid,
	stepBudget int,
	start Position,
	deadline time.Duration,
	options ...Option,
) (Result, error) {

	// --- Validate before any work starts ---
	if stepBudget < 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidBudget, stepBudget)
	}
	if deadline <= 0 {
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidDeadline, deadline)
	}

	runID := uuid.New().String()
	runOptions, err := buildOptions(options)
	if err != nil {
		return Result{}, err
	}
	stepper, err := NewStepper(grid, start, append(options[:len(options):len(options)], withRunID(runID))...)
	if err != nil {
		return Result{}, err
	}

	logger := runOptions.Logger.With("run_id", runID)
	contextObject, span := runOptions.Tracer.Start(contextObject, "coverage.run",
		trace.WithAttributes(
			attribute.String("coverage.run_id", runID),
			attribute.Int("coverage.step_budget", stepBudget),
			attribute.Int64("coverage.deadline_ms", deadline.Milliseconds()),
			attribute.Int("coverage.grid_rows", grid.Rows()),
			attribute.Int("coverage.grid_cols", grid.Cols()),
		),
	)
	defer span.End()

	// --- Start the worker ---
	workerContext, cancel := context.WithCancel(contextObject)
	defer cancel()

	logger.Debug("run started", "steps", stepBudget, "deadline", deadline, "start", start)
	reportChannel := startWorker(workerContext, stepper, stepBudget)

	timer := time.NewTimer(deadline)
	defer timer.Stop()

	var report workerReport
	select {
	case report = <-reportChannel:
	case <-timer.C:
		logger.Info("deadline reached, cancelling run", "deadline", deadline)
		cancel()
		report = <-reportChannel
	case <-contextObject.Done():
		logger.Info("caller cancelled run", "err", contextObject.Err())
		cancel()
		report = <-reportChannel
	}

	if report.Err != nil {
		span.RecordError(report.Err)
		span.SetStatus(codes.Error, report.Err.Error())
		logger.Error("run failed", "error", report.Err)
		return Result{}, report.Err
	}

	result := report.Result
	span.SetAttributes(
		attribute.Int("coverage.steps", result.Steps),
		attribute.Int("coverage.cost", result.Cost),
		attribute.String("coverage.status", string(result.Status)),
	)
	span.SetStatus(codes.Ok, string(result.Status))
	logger.Info("run finished",
		"status", result.Status,
		"steps", result.Steps,
		"cost", result.Cost,
		"final", result.Final,
	)
	return result, nil
}
