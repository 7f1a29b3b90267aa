package driver

import "time"

// Stats reports search progress, adapted from the teacher's TreeStats:
// the same cycles/depth diagnostics, re-pointed at this engine's
// iteration/backprop loop instead of game-tree playouts.
type Stats struct {
	Iterations       int
	MaxDepth         int
	Elapsed          time.Duration
	StopReason       StopReason
	RootFullyVisited bool
}

// CyclesPerSecond is 0 until at least one iteration has completed.
func (s Stats) CyclesPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Iterations) / s.Elapsed.Seconds()
}
