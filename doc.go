// Package coverage plans a greedy coverage path for a single agent on a
// weighted grid.
//
// Every cell carries a visit weight. Each tick the agent marks its cell as
// visited, then moves into the lowest-weight cell of its 8-neighborhood that
// it has not just left. When nothing qualifies, or on a random exploration
// draw, it moves to a random neighbor instead.
//
// It exposes three entry points:
//
//   - Plan: run the planner to completion (or cancellation) and get a Result.
//   - RunWithDeadline: run Plan on a worker goroutine under a wall-clock deadline.
//   - Stepper: advance a run one tick at a time to drive UIs or debugging tools.
//
// Neighbors are enumerated NW, N, NE, W, E, SW, S, SE, and ties between
// equally weighted candidates go to the first one in that order. Coordinates
// are clamped independently at the grid border, so edge cells see repeated
// neighbors; the random fallback draws from all 8 slots including repeats.
package coverage
