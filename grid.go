package coverage

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyGrid      = errors.New("grid has no cells")
	ErrRaggedGrid     = errors.New("grid rows have different lengths")
	ErrNegativeWeight = errors.New("grid weight is negative")
)

// Position is a row/column index into a Grid.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (position Position) String() string {
	return fmt.Sprintf("(%d, %d)", position.Row, position.Col)
}

// Grid holds the visitation weight of every cell.
// Dimensions never change once the grid is built.
type Grid struct {
	rows    int
	cols    int
	weights []int
}

// NewGrid copies the given rows into a new Grid.
func NewGrid(rows [][]int) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyGrid
	}

	numberOfCols := len(rows[0])
	grid := &Grid{
		rows:    len(rows),
		cols:    numberOfCols,
		weights: make([]int, 0, len(rows)*numberOfCols),
	}
	for rowIndex, row := range rows {
		if len(row) != numberOfCols {
			return nil, fmt.Errorf("row %d has %d cells, want %d: %w", rowIndex, len(row), numberOfCols, ErrRaggedGrid)
		}
		for colIndex, weight := range row {
			if weight < 0 {
				return nil, fmt.Errorf("cell (%d, %d) = %d: %w", rowIndex, colIndex, weight, ErrNegativeWeight)
			}
		}
		grid.weights = append(grid.weights, row...)
	}
	return grid, nil
}

func (grid *Grid) Rows() int { return grid.rows }
func (grid *Grid) Cols() int { return grid.cols }

// Contains reports whether position lies inside the grid.
func (grid *Grid) Contains(position Position) bool {
	return position.Row >= 0 && position.Row < grid.rows &&
		position.Col >= 0 && position.Col < grid.cols
}

// Clamp moves each coordinate of position independently into the grid.
func (grid *Grid) Clamp(position Position) Position {
	return Position{
		Row: min(max(position.Row, 0), grid.rows-1),
		Col: min(max(position.Col, 0), grid.cols-1),
	}
}

// Get returns the weight at position. Position must be inside the grid.
func (grid *Grid) Get(position Position) int {
	return grid.weights[grid.index(position)]
}

// Increment records one visit to position.
func (grid *Grid) Increment(position Position) {
	grid.weights[grid.index(position)]++
}

// Clone returns a deep copy that shares no storage with grid.
func (grid *Grid) Clone() *Grid {
	weights := make([]int, len(grid.weights))
	copy(weights, grid.weights)
	return &Grid{rows: grid.rows, cols: grid.cols, weights: weights}
}

// Weights returns a copy of the weights as rows.
func (grid *Grid) Weights() [][]int {
	out := make([][]int, grid.rows)
	for row := range out {
		out[row] = make([]int, grid.cols)
		copy(out[row], grid.weights[row*grid.cols:(row+1)*grid.cols])
	}
	return out
}

// Sum returns the total weight over all cells.
func (grid *Grid) Sum() int {
	total := 0
	for _, weight := range grid.weights {
		total += weight
	}
	return total
}

func (grid *Grid) index(position Position) int {
	if !grid.Contains(position) {
		panic(fmt.Sprintf("coverage: position %v outside %dx%d grid", position, grid.rows, grid.cols))
	}
	return position.Row*grid.cols + position.Col
}
