package mcts

import (
	"errors"
	"math"
	"math/rand"

	"github.com/sandialabs/hetsched/pkg/frontier"
	"github.com/sandialabs/hetsched/pkg/graph"
	"github.com/sandialabs/hetsched/pkg/op"
	"github.com/sandialabs/hetsched/pkg/platform"
	"github.com/sandialabs/hetsched/pkg/schederr"
	"github.com/sandialabs/hetsched/pkg/seq"
)

var errUnreachableExpansion = errors.New("expansion reached unreachable branch: all children already played")

// Tree owns the single search tree a rank-0 driver grows across
// iterations: the root, the shared strategy context, and the RNG used for
// UCT tie-breaking and random playouts. There is exactly one Tree per
// search — this package carries none of the teacher's tree-parallel or
// virtual-loss machinery, since spec.md §5 mandates a single-threaded
// engine with parallelism only across MPI ranks.
type Tree[C any, St any] struct {
	Root         *Node[St]
	Strategy     Strategy[C, St]
	Context      *C
	Rng          *rand.Rand
	StreamBudget int

	maxDepth int
	cycles   int
}

// NewTree constructs a Tree rooted at rootOp, using strategy/ctx for value
// estimation and a seeded RNG for determinism (spec.md §9: "random
// playout ... must be seedable").
func NewTree[C any, St any](rootOp op.BoundOp, strategy Strategy[C, St], ctx *C, seed int64, streamBudget int) *Tree[C, St] {
	return &Tree[C, St]{
		Root:         NewRoot(rootOp, strategy.InitState()),
		Strategy:     strategy,
		Context:      ctx,
		Rng:          rand.New(rand.NewSource(seed)),
		StreamBudget: streamBudget,
	}
}

// MaxDepth and Cycles report search diagnostics accumulated across
// Backprop calls, adapted from the teacher's TreeStats.
func (t *Tree[C, St]) MaxDepth() int { return t.maxDepth }
func (t *Tree[C, St]) Cycles() int   { return t.cycles }

// Select walks from the root to a leaf (per Node.IsLeaf) or an
// already-resolved terminal node, choosing among children by UCT score at
// each non-leaf step. Ties are broken uniformly at random.
func (t *Tree[C, St]) Select() *Node[St] {
	node := t.Root
	for {
		if node.IsTerminalResolved() || node.IsLeaf() {
			return node
		}
		child := t.selectChild(node)
		if child == nil {
			return node
		}
		node = child
	}
}

func (t *Tree[C, St]) selectChild(node *Node[St]) *Node[St] {
	best := math.Inf(-1)
	var ties []int
	for i := range node.Children {
		score := t.uctScore(node, &node.Children[i])
		if score > best {
			best = score
			ties = ties[:0]
			ties = append(ties, i)
		} else if score == best {
			ties = append(ties, i)
		}
	}
	if len(ties) == 0 {
		return nil
	}
	idx := ties[0]
	if len(ties) > 1 {
		idx = ties[t.Rng.Intn(len(ties))]
	}
	return &node.Children[idx]
}

// uctScore implements spec.md §4.4's UCT formula: the strategy's
// exploitation term plus √2·√(ln n / max(nⱼ,1)), or −∞ if the child is
// already fully visited.
func (t *Tree[C, St]) uctScore(parent, child *Node[St]) float64 {
	if child.FullyVisited {
		return math.Inf(-1)
	}
	n := float64(parent.N)
	nj := float64(child.N)
	explore := math.Sqrt2 * math.Sqrt(math.Log(n)/math.Max(nj, 1))
	return t.Strategy.Select(t.Context, parent, child) + explore
}

// Expand is idempotent: a node reached by Select may already be expanded
// (it still has an unplayed sibling, so IsLeaf keeps returning it across
// iterations) — in that case Expand just hands back the first unplayed
// child instead of growing the tree again. Only once every child already
// has a playout is re-selecting an expanded node an invariant violation,
// per spec.md §4.4 step 5. On a node seen for the first time, Expand
// generates its children from the frontier of its path, marks it
// expanded, and returns either the first unplayed child, or node itself
// if the frontier was empty (node's op has no graph successors — it is
// terminal, and its schedule is already complete).
func (t *Tree[C, St]) Expand(g *graph.Graph[op.Operation], plat *platform.Platform, node *Node[St]) (*Node[St], error) {
	if node.Expanded {
		if len(node.Children) == 0 {
			return node, nil
		}
		for i := range node.Children {
			if node.Children[i].N == 0 {
				return &node.Children[i], nil
			}
		}
		return nil, schederr.NewInvariantViolation(node.Op.Desc(), errUnreachableExpansion)
	}

	completed := seq.New()
	for _, o := range node.PathFromRoot() {
		completed.Append(o)
	}

	fr, err := frontier.Expand(plat, g, completed, t.StreamBudget)
	if err != nil {
		return nil, err
	}

	node.Expanded = true
	if len(fr) == 0 {
		return node, nil
	}

	node.Children = make([]Node[St], len(fr))
	for i, f := range fr {
		node.Children[i] = Node[St]{
			Parent: node,
			Op:     f,
			State:  t.Strategy.InitState(),
			// A child whose own op has no graph successors is terminal on
			// sight (spec.md §4.4: "Terminal nodes have no children, so on
			// first visit they set fully_visited = true") — mark it expanded
			// now rather than waiting for a later Select/Expand to re-visit
			// it, or fully_visited propagation to the root would lag the
			// iteration count spec.md §8's scenarios assume.
			Expanded: isGraphSink(g, f),
		}
	}
	for i := range node.Children {
		if node.Children[i].N == 0 {
			return &node.Children[i], nil
		}
	}
	return nil, schederr.NewInvariantViolation(node.Op.Desc(), errUnreachableExpansion)
}

// isGraphSink reports whether o is a vertex of g with no successors (by
// identity, or by its unbound template for a bound candidate such as a
// BoundGpuOp). Synchronization ops are not graph vertices and are never
// sinks: the consumer they were inserted for is still to come.
func isGraphSink(g *graph.Graph[op.Operation], o op.BoundOp) bool {
	succs, ok := g.SuccsFindOrFindUnbound(o)
	return ok && len(succs) == 0
}

// Playout completes the schedule starting at leaf by repeatedly sampling a
// uniform-random frontier element and appending it until the frontier is
// empty, returning the full ordering (the implementer's literal
// translation of get_simulation_order).
func (t *Tree[C, St]) Playout(g *graph.Graph[op.Operation], plat *platform.Platform, leaf *Node[St]) (*seq.Sequence, error) {
	completed := seq.New()
	for _, o := range leaf.PathFromRoot() {
		completed.Append(o)
	}

	for {
		fr, err := frontier.Expand(plat, g, completed, t.StreamBudget)
		if err != nil {
			return nil, err
		}
		if len(fr) == 0 {
			break
		}
		choice := fr[t.Rng.Intn(len(fr))]
		completed.Append(choice)
	}
	return completed, nil
}

// Backprop increments n, recomputes fully_visited, and invokes
// Strategy.Backprop at every node on the path from leaf to the root,
// unconditionally — spec.md §9 resolves the source's disabled backprop
// block this way.
func (t *Tree[C, St]) Backprop(leaf *Node[St], result Sample) {
	for node := leaf; node != nil; node = node.Parent {
		node.N++
		node.FullyVisited = computeFullyVisited(node)
		t.Strategy.Backprop(t.Context, node, result)

		if d := node.Depth(); d > t.maxDepth {
			t.maxDepth = d
		}
	}
	t.cycles++
}

// BestChildPolicy selects which child BestOrder follows at each step of
// the final best-ordering walk, adapted from the teacher's
// BestChildPolicy (pkg/mcts/vars.go in the source repository this
// project grew from): there, a two-player search prefers the
// most-visited child as the robust choice over the highest-raw-value one;
// the same preference applies here.
type BestChildPolicy int

const (
	// BestChildMostVisits follows the child with the highest N, the
	// policy least sensitive to the stochastic noise of a single
	// playout's benchmark result.
	BestChildMostVisits BestChildPolicy = iota
	// BestChildHighestValue follows the child with the best strategy
	// exploitation score, ignoring visit count.
	BestChildHighestValue
)

// BestOrder walks from the root by repeatedly following policy's choice of
// child until it reaches a node with no children (a terminal node, or one
// not yet expanded), returning the schedule along that path.
// Unlike Select, it ignores the exploration term entirely — it reports
// the search's final recommendation, not where to sample next.
func (t *Tree[C, St]) BestOrder(policy BestChildPolicy) *seq.Sequence {
	node := t.Root
	for !node.IsTerminalResolved() && len(node.Children) > 0 {
		node = t.bestChild(node, policy)
	}
	completed := seq.New()
	for _, o := range node.PathFromRoot() {
		completed.Append(o)
	}
	return completed
}

func (t *Tree[C, St]) bestChild(node *Node[St], policy BestChildPolicy) *Node[St] {
	best := &node.Children[0]
	bestScore := t.bestChildScore(node, best, policy)
	for i := 1; i < len(node.Children); i++ {
		child := &node.Children[i]
		score := t.bestChildScore(node, child, policy)
		if score > bestScore {
			bestScore = score
			best = child
		}
	}
	return best
}

func (t *Tree[C, St]) bestChildScore(parent, child *Node[St], policy BestChildPolicy) float64 {
	if policy == BestChildHighestValue {
		return t.Strategy.Select(t.Context, parent, child)
	}
	return float64(child.N)
}

// computeFullyVisited implements spec.md §3/§4.4's rule: a node becomes
// fully visited once it has no children and has been expanded (terminal),
// or once every child is itself fully visited.
func computeFullyVisited[St any](n *Node[St]) bool {
	if len(n.Children) == 0 {
		return n.Expanded
	}
	for i := range n.Children {
		if !n.Children[i].FullyVisited {
			return false
		}
	}
	return true
}
