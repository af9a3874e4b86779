package internal

// Offsets lists the Moore neighborhood in enumeration order:
// NW, N, NE, W, E, SW, S, SE.
var Offsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Moore returns the 8 neighbors of (row, col) on a rows x cols grid.
// Each coordinate is clamped on its own, so cells on an edge or corner get
// repeated entries and may list themselves.
func Moore(row, col, rows, cols int) [8][2]int {
	var neighbors [8][2]int
	for i, offset := range Offsets {
		neighbors[i] = [2]int{
			clamp(row+offset[0], rows-1),
			clamp(col+offset[1], cols-1),
		}
	}
	return neighbors
}

func clamp(value, upper int) int {
	if value < 0 {
		return 0
	}
	if value > upper {
		return upper
	}
	return value
}
