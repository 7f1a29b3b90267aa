package driver

import "time"

// Limits bounds one driver run, adapted from the teacher's fluent
// Limits/DefaultLimits builder (pkg/mcts/limits.go in the source
// repository this project grew from) — spec.md §4.5 generalizes the
// source's bare `for (i = 0; i < 10; ++i)` loop into "a budget of
// iterations ... or a wall-clock limit", which this type and the
// Limiter that consumes it implement.
type Limits struct {
	Iterations int
	WallClock  time.Duration
	Infinite   bool
}

// DefaultLimits returns an unbounded run — the caller must opt into a
// stop condition via SetIterations or SetWallClock.
func DefaultLimits() *Limits {
	return &Limits{Infinite: true}
}

// SetIterations bounds the number of search iterations.
func (l *Limits) SetIterations(n int) *Limits {
	l.Iterations = n
	l.Infinite = false
	return l
}

// SetWallClock bounds the total search time.
func (l *Limits) SetWallClock(d time.Duration) *Limits {
	l.WallClock = d
	l.Infinite = false
	return l
}
