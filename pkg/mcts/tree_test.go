package mcts

import (
	"testing"

	"github.com/sandialabs/hetsched/pkg/graph"
	"github.com/sandialabs/hetsched/pkg/op"
	"github.com/sandialabs/hetsched/pkg/platform"
)

type fakeSample struct {
	median float64
	min    float64
}

func (f fakeSample) Median() float64 { return f.median }
func (f fakeSample) Min() float64    { return f.min }

func linearGraph() (*graph.Graph[op.Operation], op.BoundOp) {
	setup := op.NewCpuOp("setup")
	kernel := op.NewGpuOp("kernel")
	reduce := op.NewCpuOp("reduce")

	g := graph.New[op.Operation](setup)
	g.AddEdge(setup, kernel)
	g.AddEdge(kernel, reduce)
	return g, setup
}

// twoLeafGraph is spec.md §8 scenario S3: root's op has two successors,
// each with no further successors of its own.
func twoLeafGraph() (*graph.Graph[op.Operation], op.BoundOp) {
	root := op.NewCpuOp("root")
	leafA := op.NewCpuOp("leafA")
	leafB := op.NewCpuOp("leafB")

	g := graph.New[op.Operation](root)
	g.AddEdge(root, leafA)
	g.AddEdge(root, leafB)
	return g, root
}

func TestTreeSelectReturnsRootWhenUnexpanded(t *testing.T) {
	g, start := linearGraph()
	_ = g
	tree := NewTree[struct{}, TimesState](start, MinTimeStrategy{}, &struct{}{}, 1, 1)

	if tree.Select() != tree.Root {
		t.Fatal("an unexpanded root is a leaf; Select should return it directly")
	}
}

func TestTreeExpandCreatesChildrenAndReturnsFirstUnplayed(t *testing.T) {
	g, start := linearGraph()
	plat := platform.NewPlatform(nil)
	tree := NewTree[struct{}, TimesState](start, MinTimeStrategy{}, &struct{}{}, 1, 1)

	child, err := tree.Expand(g, plat, tree.Root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Root.Children) != 1 {
		t.Fatalf("expected exactly one child (the single-stream kernel binding), got %d", len(tree.Root.Children))
	}
	if child != &tree.Root.Children[0] {
		t.Fatal("Expand should return the first unplayed child")
	}
	if !tree.Root.Expanded {
		t.Fatal("Expand should mark the node expanded")
	}
}

// TestTreeExpandReentersExpandedNodeReturnsNextUnplayedChild covers
// spec.md §4.4 step 5: re-entering an already-expanded node is a fatal
// invariant violation only once every child has a playout, not merely
// because the node was expanded before. This is the normal case on a
// branching node: Select keeps returning the same expanded parent on
// every iteration until all of its children have been played, since
// IsLeaf is true whenever any child still has zero playouts.
func TestTreeExpandReentersExpandedNodeReturnsNextUnplayedChild(t *testing.T) {
	g, start := twoLeafGraph()
	plat := platform.NewPlatform(nil)
	tree := NewTree[struct{}, TimesState](start, MinTimeStrategy{}, &struct{}{}, 1, 1)

	first, err := tree.Expand(g, plat, tree.Root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Root.Children) != 2 {
		t.Fatalf("expected 2 children (leafA, leafB), got %d", len(tree.Root.Children))
	}
	tree.Backprop(first, fakeSample{median: 1, min: 1})

	second, err := tree.Expand(g, plat, tree.Root)
	if err != nil {
		t.Fatalf("re-expanding a node with an unplayed child should not error: %v", err)
	}
	if second == first {
		t.Fatal("expected the other, still-unplayed child, not the same node again")
	}
	if second.N != 0 {
		t.Fatal("Expand should always return a zero-playout child")
	}
}

func TestTreeExpandAllChildrenPlayedIsFatal(t *testing.T) {
	g, start := twoLeafGraph()
	plat := platform.NewPlatform(nil)
	tree := NewTree[struct{}, TimesState](start, MinTimeStrategy{}, &struct{}{}, 1, 1)

	if _, err := tree.Expand(g, plat, tree.Root); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range tree.Root.Children {
		tree.Root.Children[i].N = 1
	}
	if _, err := tree.Expand(g, plat, tree.Root); err == nil {
		t.Fatal("re-expanding a node whose children are all played should be a fatal invariant violation")
	}
}

// TestTreeTwoLeafRootFullyVisitedAfterSecondIteration is spec.md §8
// scenario S3 end to end: two iterations of select/expand/backprop over a
// two-leaf graph should leave the root fully visited, since each leaf's
// op has no graph successors and is therefore terminal on sight.
func TestTreeTwoLeafRootFullyVisitedAfterSecondIteration(t *testing.T) {
	g, start := twoLeafGraph()
	plat := platform.NewPlatform(nil)
	tree := NewTree[struct{}, TimesState](start, MinTimeStrategy{}, &struct{}{}, 1, 1)

	for i := 0; i < 2; i++ {
		selected := tree.Select()
		child, err := tree.Expand(g, plat, selected)
		if err != nil {
			t.Fatalf("iteration %d: unexpected error: %v", i, err)
		}
		tree.Backprop(child, fakeSample{median: 1, min: 1})
	}

	if !tree.Root.FullyVisited {
		t.Fatal("root should be fully visited after both two-leaf children have been played once each")
	}
}

func TestTreeExpandOnTerminalOpReturnsNodeItself(t *testing.T) {
	g, start := linearGraph()
	plat := platform.NewPlatform(nil)
	tree := NewTree[struct{}, TimesState](start, MinTimeStrategy{}, &struct{}{}, 1, 1)

	kernelChild, err := tree.Expand(g, plat, tree.Root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The GPU->CPU edge into reduce puts the Synchronizer's record and
	// event_sync ops ahead of it, so follow the first child down to reduce.
	reduceChild := kernelChild
	for reduceChild.Op.Name() != "reduce" {
		next, err := tree.Expand(g, plat, reduceChild)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if next == reduceChild {
			t.Fatalf("expansion stopped at %s before reaching reduce", reduceChild.Op.Desc())
		}
		reduceChild = next
	}
	terminal, err := tree.Expand(g, plat, reduceChild)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if terminal != reduceChild {
		t.Fatal("expanding a node whose op has no graph successors should return the node itself")
	}
	if !terminal.IsTerminalResolved() {
		t.Fatal("a node at the end of the DAG should be terminal-resolved after expansion")
	}
}

func TestTreePlayoutReachesFullLinearOrdering(t *testing.T) {
	g, start := linearGraph()
	plat := platform.NewPlatform(nil)
	tree := NewTree[struct{}, TimesState](start, MinTimeStrategy{}, &struct{}{}, 7, 1)

	order, err := tree.Playout(g, plat, tree.Root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The GPU->CPU edge into reduce makes the playout insert sync ops,
	// which are not graph vertices; count only the graph's own ops.
	graphOps := 0
	for _, o := range order.Ops() {
		if _, ok := g.PredsFindOrFindUnbound(o); ok {
			graphOps++
		}
	}
	if graphOps != 3 {
		t.Fatalf("the linear graph has exactly 3 ops, expected all 3 in the playout, got %d", graphOps)
	}
}

func TestTreeBackpropUpdatesAncestorsAndFullyVisited(t *testing.T) {
	g, start := linearGraph()
	plat := platform.NewPlatform(nil)
	tree := NewTree[struct{}, TimesState](start, MinTimeStrategy{}, &struct{}{}, 1, 1)

	kernelChild, err := tree.Expand(g, plat, tree.Root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tree.Backprop(kernelChild, fakeSample{median: 2.0, min: 1.5})

	if tree.Root.N != 1 {
		t.Fatalf("backprop should increment every ancestor's N, root.N=%d", tree.Root.N)
	}
	if kernelChild.N != 1 {
		t.Fatalf("backprop should increment the leaf's own N, got %d", kernelChild.N)
	}
	if tree.Cycles() != 1 {
		t.Fatalf("expected 1 recorded cycle, got %d", tree.Cycles())
	}
	// kernelChild has no children yet (unexpanded), so per computeFullyVisited
	// it is fully visited only once expanded+childless (terminal). It has
	// not been expanded, so it must not be marked fully visited.
	if kernelChild.FullyVisited {
		t.Fatal("an unexpanded node must not be reported fully visited")
	}
}

func TestBestOrderFollowsMostVisitedChild(t *testing.T) {
	start := op.NewCpuOp("start")
	tree := NewTree[struct{}, TimesState](start, MinTimeStrategy{}, &struct{}{}, 1, 4)

	tree.Root.Expanded = true
	tree.Root.Children = []Node[TimesState]{
		{Parent: tree.Root, Op: op.NewCpuOp("low"), Expanded: true, N: 3},
		{Parent: tree.Root, Op: op.NewCpuOp("high"), Expanded: true, N: 9},
	}

	order := tree.BestOrder(BestChildMostVisits)
	names := order.Names()
	if len(names) != 2 || names[1] != "high" {
		t.Fatalf("BestOrder should follow the most-visited child ('high'), got %v", names)
	}
}

func TestBestOrderHighestValuePolicyUsesStrategyScore(t *testing.T) {
	start := op.NewCpuOp("start")
	tree := NewTree[struct{}, TimesState](start, MinTimeStrategy{}, &struct{}{}, 1, 4)

	low := Node[TimesState]{Parent: tree.Root, Op: op.NewCpuOp("low"), Expanded: true, N: 9}
	low.State.insertSorted(10)
	high := Node[TimesState]{Parent: tree.Root, Op: op.NewCpuOp("high"), Expanded: true, N: 1}
	high.State.insertSorted(1)

	tree.Root.Expanded = true
	tree.Root.Children = []Node[TimesState]{low, high}

	order := tree.BestOrder(BestChildHighestValue)
	names := order.Names()
	if len(names) != 2 || names[1] != "high" {
		t.Fatalf("MinTimeStrategy scores -min(), so the node with the smaller observed time ('high', min=1) should win, got %v", names)
	}
}
