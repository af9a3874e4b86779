package coverage

import (
	"context"
	"fmt"
)

// workerReport is the single message a worker sends back to RunWithDeadline.
type workerReport struct {
	Result Result
	Err    error
}

// startWorker runs stepper on its own goroutine. The returned channel
// receives exactly one report and is buffered so the worker never blocks on
// a caller that has stopped listening.
func startWorker(ctx context.Context, stepper *Stepper, stepBudget int) <-chan workerReport {
	reportChannel := make(chan workerReport, 1)
	go func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				reportChannel <- workerReport{Err: fmt.Errorf("%w: worker panicked: %v", ErrNoResult, recovered)}
			}
		}()
		reportChannel <- workerReport{Result: stepper.Run(ctx, stepBudget)}
	}()
	return reportChannel
}
