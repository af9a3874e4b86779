package coverage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// DefaultGrid returns the built-in 5x5 survey area.
func DefaultGrid() *Grid {
	grid, err := NewGrid([][]int{
		{1, 5, 5, 2, 5},
		{1, 2, 3, 4, 2},
		{3, 1, 0, 4, 0},
		{9, 5, 1, 6, 1},
		{0, 2, 6, 1, 3},
	})
	if err != nil {
		panic(err)
	}
	return grid
}

// ParseGrid reads one grid row per non-blank line, cells separated by
// whitespace. Tokens that are not integers count as weight 0.
func ParseGrid(reader io.Reader) (*Grid, error) {
	var rows [][]int

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		row := make([]int, len(fields))
		for i, field := range fields {
			weight, err := strconv.Atoi(field)
			if err != nil {
				weight = 0
			}
			row[i] = weight
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read grid: %w", err)
	}
	return NewGrid(rows)
}

// LoadGridFile parses the grid stored at path.
func LoadGridFile(path string) (*Grid, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grid file: %w", err)
	}
	defer file.Close()

	grid, err := ParseGrid(file)
	if err != nil {
		return nil, fmt.Errorf("grid file %s: %w", path, err)
	}
	return grid, nil
}
