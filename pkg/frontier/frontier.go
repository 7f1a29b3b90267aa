// Package frontier computes, from a graph and a partial schedule, the set
// of legal next BoundOps — including any synchronization ops the
// Synchronizer requires before a candidate becomes eligible. This is
// spec.md §4.2's frontier expander, the literal Go translation of
// get_frontier in original_source/src/mcts_node.cpp.
package frontier

import (
	"github.com/sandialabs/hetsched/pkg/graph"
	"github.com/sandialabs/hetsched/pkg/op"
	"github.com/sandialabs/hetsched/pkg/platform"
	"github.com/sandialabs/hetsched/pkg/seq"
	"github.com/sandialabs/hetsched/pkg/syncer"
)

// DefaultStreamBudget bounds how many distinct streams a GpuOp candidate
// will be offered across a search, per spec.md §9's combinatorial-explosion
// warning. Callers needing a different cap pass one to Expand.
const DefaultStreamBudget = 4

// Expand computes the frontier for (g, completed): all legal next
// BoundOps, deduplicated by value. streamBudget caps how many streams a
// GpuOp candidate may be offered on; pass frontier.DefaultStreamBudget
// for the documented default.
func Expand[T op.Operation](plat *platform.Platform, g *graph.Graph[T], completed *seq.Sequence, streamBudget int) ([]op.BoundOp, error) {
	candidates := candidatesFor(g, completed)

	var result []op.BoundOp
	for _, candidate := range candidates {
		variations := platformVariations(plat, candidate, streamBudget)
		for _, v := range variations {
			if syncer.IsSynced(v, g, completed) {
				result = append(result, v)
				continue
			}
			syncs, err := syncer.MakeSyncs(plat, v, g, completed)
			if err != nil {
				return nil, err
			}
			result = append(result, syncs...)
		}
	}
	return keepUniques(result), nil
}

// candidatesFor gathers every op with at least one completed predecessor
// (via identity-or-unbound successor lookup), then rejects ones already
// done or with an incomplete predecessor. spec.md §4.2/§8 S1: the
// frontier of an empty schedule is the graph's start op alone, since
// start has no predecessor to wait on completed for.
func candidatesFor[T op.Operation](g *graph.Graph[T], completed *seq.Sequence) []op.Operation {
	if completed.Len() == 0 {
		return []op.Operation{g.Start()}
	}

	var onePredCompleted []op.Operation
	seen := make(map[string]bool)
	for _, c := range completed.Ops() {
		succs, ok := g.SuccsFindOrFindUnbound(c)
		if !ok {
			continue
		}
		for _, s := range succs {
			k := s.Key()
			if seen[k] {
				continue
			}
			seen[k] = true
			onePredCompleted = append(onePredCompleted, s)
		}
	}

	var candidates []op.Operation
	for _, c := range onePredCompleted {
		if completed.ContainsUnbound(c) {
			continue
		}
		preds, _ := g.PredsFindOrFindUnbound(c)
		allDone := true
		for _, p := range preds {
			if !completed.ContainsUnbound(p) {
				allDone = false
				break
			}
		}
		if !allDone {
			continue
		}
		candidates = append(candidates, c)
	}
	return candidates
}

// platformVariations enumerates the resource assignments a candidate may
// take: a GpuOp gets one BoundGpuOp per existing stream plus one on a
// freshly allocated stream, capped at streamBudget; anything already
// bound, or a CpuOp, has exactly one variation — itself.
func platformVariations(plat *platform.Platform, candidate op.Operation, streamBudget int) []op.BoundOp {
	gpu, ok := candidate.(*op.GpuOp)
	if !ok {
		return []op.BoundOp{candidate.(op.BoundOp)}
	}

	existing := plat.Streams()
	variations := make([]op.BoundOp, 0, len(existing)+1)
	for _, s := range existing {
		variations = append(variations, op.NewBoundGpuOp(gpu, s))
	}
	if plat.NumStreams() < streamBudget {
		fresh := plat.NewStream()
		variations = append(variations, op.NewBoundGpuOp(gpu, fresh))
	}
	return variations
}

// keepUniques deduplicates by value (Key), preserving first-seen order.
func keepUniques(ops []op.BoundOp) []op.BoundOp {
	seen := make(map[string]bool, len(ops))
	out := make([]op.BoundOp, 0, len(ops))
	for _, o := range ops {
		k := o.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, o)
	}
	return out
}
