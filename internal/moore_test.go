package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMooreInterior(t *testing.T) {
	got := Moore(2, 2, 5, 5)
	want := [8][2]int{
		{1, 1}, {1, 2}, {1, 3},
		{2, 1}, {2, 3},
		{3, 1}, {3, 2}, {3, 3},
	}
	assert.Equal(t, want, got)
}

func TestMooreCornerKeepsDuplicates(t *testing.T) {
	got := Moore(0, 0, 5, 5)
	want := [8][2]int{
		{0, 0}, {0, 0}, {0, 1},
		{0, 0}, {0, 1},
		{1, 0}, {1, 0}, {1, 1},
	}
	assert.Equal(t, want, got)
}

func TestMooreBottomRightCorner(t *testing.T) {
	got := Moore(4, 4, 5, 5)
	for _, n := range got {
		assert.GreaterOrEqual(t, n[0], 3)
		assert.LessOrEqual(t, n[0], 4)
		assert.GreaterOrEqual(t, n[1], 3)
		assert.LessOrEqual(t, n[1], 4)
	}
	assert.Equal(t, [2]int{4, 4}, got[7])
}

func TestMooreSingleCell(t *testing.T) {
	for _, n := range Moore(0, 0, 1, 1) {
		assert.Equal(t, [2]int{0, 0}, n)
	}
}
