// Package report prints run results to a terminal.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
	"github.com/pdrpinto/coverage"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes how evenly a run covered the grid.
type Summary struct {
	Cells        int
	VisitedCells int
	MaxVisits    int
	MeanVisits   float64
	StdDevVisits float64
}

// Fraction of cells visited at least once.
func (s Summary) Fraction() float64 {
	if s.Cells == 0 {
		return 0
	}
	return float64(s.VisitedCells) / float64(s.Cells)
}

// Visits returns per-cell visit counts: the run's final grid minus the grid
// it started from.
func Visits(initial *coverage.Grid, result coverage.Result) [][]int {
	finalWeights := result.Grid.Weights()
	initialWeights := initial.Weights()
	for row := range finalWeights {
		for col := range finalWeights[row] {
			finalWeights[row][col] -= initialWeights[row][col]
		}
	}
	return finalWeights
}

// Summarize computes coverage statistics for result.
func Summarize(initial *coverage.Grid, result coverage.Result) Summary {
	visits := Visits(initial, result)

	values := make([]float64, 0, initial.Rows()*initial.Cols())
	summary := Summary{}
	for _, row := range visits {
		for _, count := range row {
			values = append(values, float64(count))
			if count > 0 {
				summary.VisitedCells++
			}
		}
	}
	summary.Cells = len(values)
	summary.MaxVisits = int(floats.Max(values))
	summary.MeanVisits, summary.StdDevVisits = stat.PopMeanStdDev(values, nil)
	return summary
}

// Print writes the outcome of a run. err is the error returned by
// coverage.RunWithDeadline, if any.
func Print(w io.Writer, result coverage.Result, stepBudget int, err error) {
	if errors.Is(err, coverage.ErrNoResult) {
		fmt.Fprintln(w, "Planner did not complete within the time limit.")
		return
	}
	if err != nil {
		fmt.Fprintf(w, "Planner failed: %v\n", err)
		return
	}

	if result.Status == coverage.StatusCancelled {
		fmt.Fprintf(w, "Deadline reached after %d of %d steps.\n", result.Steps, stepBudget)
	}
	fmt.Fprintf(w, "Cost after %d iterations: %d\n", result.Steps, result.Cost)
	fmt.Fprintf(w, "Position after %d iterations: %v\n", result.Steps, result.Final)
}

// PrintSummary writes the coverage statistics.
func PrintSummary(w io.Writer, summary Summary) {
	fmt.Fprintf(w, "Visited %d of %d cells (%.0f%%), visits per cell: mean %.2f, stddev %.2f, max %d\n",
		summary.VisitedCells, summary.Cells, 100*summary.Fraction(),
		summary.MeanVisits, summary.StdDevVisits, summary.MaxVisits)
}

var heatColors = []string{"#4b5563", "#22c55e", "#eab308", "#f97316", "#ef4444"}

// Heatmap writes the visit counts as a colored table. The agent's final cell
// is bracketed.
func Heatmap(w io.Writer, profile termenv.Profile, initial *coverage.Grid, result coverage.Result) {
	visits := Visits(initial, result)
	for row, counts := range visits {
		var line strings.Builder
		for col, count := range counts {
			cell := fmt.Sprintf(" %2d ", count)
			if (coverage.Position{Row: row, Col: col}) == result.Final {
				cell = fmt.Sprintf("[%2d]", count)
			}
			color := heatColors[min(count, len(heatColors)-1)]
			line.WriteString(profile.String(cell).Foreground(profile.Color(color)).String())
		}
		fmt.Fprintln(w, line.String())
	}
}
