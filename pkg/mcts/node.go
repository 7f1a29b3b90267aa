// Package mcts implements the Monte Carlo Tree Search engine: UCT
// selection, expansion via the frontier expander, random-playout
// simulation, and backpropagation through a pluggable Strategy. The
// engine is single-threaded per rank (spec.md §5) — there is exactly one
// tree, owned by rank 0, and no virtual-loss or tree-parallel machinery.
package mcts

import (
	"github.com/sandialabs/hetsched/pkg/op"
)

// Node is one vertex of the search tree: a partial schedule ending in Op,
// reached by the path from the root. Children is an owning slice —
// grandchildren hold raw *Node back-pointers into it, which stay valid
// only because a node's Children slice is populated once, in full, by a
// single Expand call, and never appended to again afterward.
type Node[St any] struct {
	Parent   *Node[St]
	Children []Node[St]

	Op           op.BoundOp
	Expanded     bool
	FullyVisited bool
	N            int
	State        St
}

// NewRoot constructs the root node for rootOp (typically the graph's
// start operation). Spec.md's optimistic initial value for an unplayed
// child is realized implicitly by IsLeaf/Select always routing selection
// to a zero-playout child before UCT ever compares it against a played
// sibling, so there is no separate value field to seed here.
func NewRoot[St any](rootOp op.BoundOp, initState St) *Node[St] {
	return &Node[St]{Op: rootOp, State: initState}
}

// IsLeaf reports whether selection should stop at this node: it has never
// been expanded, or it has children but at least one has zero playouts
// (per spec.md §3's node invariant). A node that has been expanded and
// discovered to have no legal successors (terminal) is deliberately NOT a
// leaf by this definition — see IsTerminalResolved.
func (n *Node[St]) IsLeaf() bool {
	if len(n.Children) == 0 {
		return !n.Expanded
	}
	for i := range n.Children {
		if n.Children[i].N == 0 {
			return true
		}
	}
	return false
}

// IsTerminalResolved reports whether this node has already been expanded
// and found to have no legal next operation — its op has no successors in
// the graph, so its schedule is already complete.
func (n *Node[St]) IsTerminalResolved() bool {
	return n.Expanded && len(n.Children) == 0
}

// PathFromRoot reconstructs the ordered path from the tree root to n
// (inclusive) by walking Parent back-pointers.
func (n *Node[St]) PathFromRoot() []op.BoundOp {
	depth := 0
	for cur := n; cur != nil; cur = cur.Parent {
		depth++
	}
	path := make([]op.BoundOp, depth)
	i := depth - 1
	for cur := n; cur != nil; cur = cur.Parent {
		path[i] = cur.Op
		i--
	}
	return path
}

// Depth returns the number of ancestors between n and the root (the root
// itself is depth 0).
func (n *Node[St]) Depth() int {
	d := 0
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		d++
	}
	return d
}
