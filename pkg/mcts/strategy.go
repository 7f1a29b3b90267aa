package mcts

import "math"

// Sample is the minimal view of a benchmark result a Strategy needs to
// backpropagate. bench.Result implements it; decoupling the interface
// here (instead of importing pkg/bench) keeps this package usable with
// any latency source, including tests that fabricate samples directly.
type Sample interface {
	Median() float64
	Min() float64
}

// Strategy supplies the exploitation term UCT combines with the
// exploration bonus, and the rule for folding a benchmark result into a
// node's accumulated state. C is the strategy's shared context (e.g.
// running min/max for normalization), held once by the driver; St is the
// per-node accumulator.
type Strategy[C any, St any] interface {
	// InitState returns the zero-value accumulator for a freshly created
	// node.
	InitState() St
	// Select computes the exploitation term for child, given its parent
	// and the shared context.
	Select(ctx *C, parent, child *Node[St]) float64
	// Backprop folds result into node's State and, if needed, ctx.
	Backprop(ctx *C, node *Node[St], result Sample)
}

// NormalizedRangeContext is the shared context for NormalizedRangeStrategy:
// the running min/max of every observed median, used to normalize a
// child's own range into [0, 1].
type NormalizedRangeContext struct {
	Min float64
	Max float64
}

// NewNormalizedRangeContext returns a context with Min/Max primed so the
// first observation always widens the range.
func NewNormalizedRangeContext() *NormalizedRangeContext {
	return &NormalizedRangeContext{Min: math.Inf(1), Max: math.Inf(-1)}
}

// TimesState is the per-node accumulator shared by both reference
// strategies: the sorted list of observed representative playout times.
type TimesState struct {
	Times []float64
}

func (s *TimesState) insertSorted(v float64) {
	i := 0
	for i < len(s.Times) && s.Times[i] < v {
		i++
	}
	s.Times = append(s.Times, 0)
	copy(s.Times[i+1:], s.Times[i:])
	s.Times[i] = v
}

func (s *TimesState) min() float64 {
	if len(s.Times) == 0 {
		return math.Inf(1)
	}
	return s.Times[0]
}

func (s *TimesState) max() float64 {
	if len(s.Times) == 0 {
		return math.Inf(-1)
	}
	return s.Times[len(s.Times)-1]
}

// NormalizedRangeStrategy's exploitation term is the child's own observed
// time range divided by the context's running range, per spec.md §4.4.
type NormalizedRangeStrategy struct{}

func (NormalizedRangeStrategy) InitState() TimesState { return TimesState{} }

func (NormalizedRangeStrategy) Select(ctx *NormalizedRangeContext, parent, child *Node[TimesState]) float64 {
	denom := ctx.Max - ctx.Min
	if denom <= 0 {
		return 0
	}
	return (child.State.max() - child.State.min()) / denom
}

func (NormalizedRangeStrategy) Backprop(ctx *NormalizedRangeContext, node *Node[TimesState], result Sample) {
	med := result.Median()
	node.State.insertSorted(med)
	if med < ctx.Min {
		ctx.Min = med
	}
	if med > ctx.Max {
		ctx.Max = med
	}
}

// MinTimeStrategy's exploitation term is the negated minimum observed
// time: lower time is better, so negating turns "lower is better" into
// "higher uct score is better", matching the rest of the UCT formula. It
// needs no shared context, so C is instantiated as struct{}.
type MinTimeStrategy struct{}

func (MinTimeStrategy) InitState() TimesState { return TimesState{} }

func (MinTimeStrategy) Select(ctx *struct{}, parent, child *Node[TimesState]) float64 {
	return -child.State.min()
}

func (MinTimeStrategy) Backprop(ctx *struct{}, node *Node[TimesState], result Sample) {
	node.State.insertSorted(result.Min())
}
