// Package graph implements the operation DAG: bidirectional adjacency
// over predecessors and successors, keyed by operation identity so lookups
// work regardless of whether a caller holds the same pointer the graph
// was built with.
package graph

import (
	"fmt"
	"sort"

	"github.com/sandialabs/hetsched/pkg/op"
	"github.com/sandialabs/hetsched/pkg/schederr"
)

// Graph is a bidirectional adjacency map over operations of type T.
// Edges are acyclic by construction contract (AddEdge does not check for
// cycles — callers build the DAG once, up front, from a known-acyclic
// description). Start is the distinguished source; it has no predecessors.
type Graph[T op.Operation] struct {
	start T

	// keyed by op.Key(); preds/succs values are ordered to keep iteration
	// (and therefore frontier generation) deterministic.
	byKey map[string]T
	preds map[string][]string
	succs map[string][]string
}

// New constructs a Graph whose distinguished start node is start.
func New[T op.Operation](start T) *Graph[T] {
	g := &Graph[T]{
		start: start,
		byKey: make(map[string]T),
		preds: make(map[string][]string),
		succs: make(map[string][]string),
	}
	g.addVertex(start)
	return g
}

func (g *Graph[T]) addVertex(o T) {
	k := o.Key()
	if _, ok := g.byKey[k]; !ok {
		g.byKey[k] = o
		if _, ok := g.preds[k]; !ok {
			g.preds[k] = nil
		}
		if _, ok := g.succs[k]; !ok {
			g.succs[k] = nil
		}
	}
}

// Start returns the graph's distinguished source.
func (g *Graph[T]) Start() T { return g.start }

// AddEdge records u -> v: v becomes a successor of u, u a predecessor of
// v. Both vertices are added to the graph if not already present.
func (g *Graph[T]) AddEdge(u, v T) {
	g.addVertex(u)
	g.addVertex(v)
	uk, vk := u.Key(), v.Key()
	if !containsKey(g.succs[uk], vk) {
		g.succs[uk] = append(g.succs[uk], vk)
	}
	if !containsKey(g.preds[vk], uk) {
		g.preds[vk] = append(g.preds[vk], uk)
	}
}

func containsKey(keys []string, k string) bool {
	for _, x := range keys {
		if x == k {
			return true
		}
	}
	return false
}

// Contains reports whether op (by identity) is a vertex of the graph.
func (g *Graph[T]) Contains(o op.Operation) bool {
	_, ok := g.byKey[o.Key()]
	return ok
}

// Succs returns the successors of op, and whether op is a vertex at all.
func (g *Graph[T]) Succs(o op.Operation) ([]T, bool) {
	keys, ok := g.succs[o.Key()]
	if !ok {
		return nil, false
	}
	return g.resolve(keys), true
}

// Preds returns the predecessors of op, and whether op is a vertex at all.
func (g *Graph[T]) Preds(o op.Operation) ([]T, bool) {
	keys, ok := g.preds[o.Key()]
	if !ok {
		return nil, false
	}
	return g.resolve(keys), true
}

func (g *Graph[T]) resolve(keys []string) []T {
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, g.byKey[k])
	}
	return out
}

// SuccsFindOrFindUnbound looks up successors by identity, falling back to
// the unbound form of a bound operation (so a BoundGpuOp's successors are
// found via its underlying GpuOp's edges) when op itself is not a vertex.
func (g *Graph[T]) SuccsFindOrFindUnbound(o op.Operation) ([]T, bool) {
	if succs, ok := g.Succs(o); ok {
		return succs, true
	}
	if ub, ok := o.(op.Unbindable); ok {
		return g.Succs(ub.Unbound())
	}
	return nil, false
}

// PredsFindOrFindUnbound mirrors SuccsFindOrFindUnbound for predecessor
// lookups: a BoundGpuOp not itself in the graph falls back to its
// underlying GpuOp template's predecessors.
func (g *Graph[T]) PredsFindOrFindUnbound(o op.Operation) ([]T, bool) {
	if preds, ok := g.Preds(o); ok {
		return preds, true
	}
	if ub, ok := o.(op.Unbindable); ok {
		return g.Preds(ub.Unbound())
	}
	return nil, false
}

// Replace rewires every edge incident on old so it instead touches
// newOp, and returns an error if old was never a vertex of the graph or
// newOp fails to bind (contains(newOp) is still false after rewiring,
// e.g. because of a Key collision).
func (g *Graph[T]) Replace(oldOp, newOp T) error {
	ok := oldOp.Key()
	if _, present := g.byKey[ok]; !present {
		return schederr.NewInvariantViolation(oldOp.Desc(), fmt.Errorf("replace: %s not in graph", oldOp.Desc()))
	}

	nk := newOp.Key()
	g.byKey[nk] = newOp
	g.preds[nk] = g.preds[ok]
	g.succs[nk] = g.succs[ok]

	for _, predKey := range g.preds[nk] {
		g.succs[predKey] = replaceKey(g.succs[predKey], ok, nk)
	}
	for _, succKey := range g.succs[nk] {
		g.preds[succKey] = replaceKey(g.preds[succKey], ok, nk)
	}

	delete(g.byKey, ok)
	delete(g.preds, ok)
	delete(g.succs, ok)

	if !g.Contains(newOp) {
		return schederr.NewInvariantViolation(newOp.Desc(), fmt.Errorf("replace-unbind failed to bind %s", newOp.Desc()))
	}
	return nil
}

func replaceKey(keys []string, old, newKey string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		if k == old {
			out[i] = newKey
		} else {
			out[i] = k
		}
	}
	return out
}

// Vertices returns all operations currently in the graph, in
// insertion-independent but stable (sorted by Key) order.
func (g *Graph[T]) Vertices() []T {
	keys := make([]string, 0, len(g.byKey))
	for k := range g.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return g.resolve(keys)
}
