// Package driver implements the top-level search loop spec.md §4.5
// describes: select, expand, simulate, broadcast, benchmark,
// backpropagate, repeat until a stop condition fires. It is the one
// package that wires every other component (graph, platform, frontier via
// mcts.Tree, rankio, bench) together; every other package stays ignorant
// of the others' existence.
package driver

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sandialabs/hetsched/pkg/bench"
	"github.com/sandialabs/hetsched/pkg/frontier"
	"github.com/sandialabs/hetsched/pkg/graph"
	"github.com/sandialabs/hetsched/pkg/mcts"
	"github.com/sandialabs/hetsched/pkg/op"
	"github.com/sandialabs/hetsched/pkg/platform"
	"github.com/sandialabs/hetsched/pkg/rankio"
	"github.com/sandialabs/hetsched/pkg/schederr"
	"github.com/sandialabs/hetsched/pkg/seq"
)

// Driver owns one search: the tree rank 0 grows, the platform every rank
// plans against, the graph every rank holds its own copy of, and the
// transport used to agree on which ordering to benchmark each iteration.
type Driver[C any, St any] struct {
	Graph    *graph.Graph[op.Operation]
	Platform *platform.Platform
	Tree     *mcts.Tree[C, St]
	Bcast    rankio.Broadcaster
	Bench    bench.Benchmarker
	Limiter  *Limiter
	Cfg      Config

	log *logrus.Entry
}

// New constructs a Driver. tree must already be rooted at g.Start().
func New[C any, St any](g *graph.Graph[op.Operation], plat *platform.Platform, tree *mcts.Tree[C, St], bcast rankio.Broadcaster, benchmarker bench.Benchmarker, cfg Config) *Driver[C, St] {
	limiter := NewLimiter()
	limiter.SetLimits(&Limits{Iterations: cfg.Iterations, WallClock: cfg.WallClock, Infinite: cfg.Iterations == 0 && cfg.WallClock == 0})

	return &Driver[C, St]{
		Graph:    g,
		Platform: plat,
		Tree:     tree,
		Bcast:    bcast,
		Bench:    benchmarker,
		Limiter:  limiter,
		Cfg:      cfg,
		log: logrus.WithFields(logrus.Fields{
			"component": "driver",
			"rank":      plat.Comm().Rank(),
		}),
	}
}

// Run drives the search loop until the Limiter says stop, per spec.md
// §4.5's seven numbered steps, and returns the final diagnostics.
func (d *Driver[C, St]) Run(ctx context.Context) (Stats, error) {
	d.Limiter.SetContext(ctx)
	d.Limiter.Reset()

	rank := d.Platform.Comm().Rank()
	iteration := 0

	for {
		rootFullyVisited := d.Tree.Root.FullyVisited
		if !d.Limiter.Ok(iteration, rootFullyVisited) {
			break
		}

		if err := d.runIteration(rank); err != nil {
			return d.stats(iteration), err
		}
		iteration++

		d.Platform.ResetDynamicResources()
	}

	return d.stats(iteration), nil
}

func (d *Driver[C, St]) stats(iterations int) Stats {
	return Stats{
		Iterations:       iterations,
		MaxDepth:         d.Tree.MaxDepth(),
		Elapsed:          d.Limiter.Elapsed(),
		StopReason:       d.Limiter.StopReason(),
		RootFullyVisited: d.Tree.Root.FullyVisited,
	}
}

// runIteration runs one select/expand/simulate/broadcast/benchmark/
// backprop cycle. Only rank 0 drives selection and expansion; every rank
// (including rank 0) reconstructs the broadcast order against its own
// graph/platform and benchmarks it.
func (d *Driver[C, St]) runIteration(rank int) error {
	var names []string
	var child *mcts.Node[St]

	if rank == 0 {
		selected := d.Tree.Select()

		expanded, err := d.Tree.Expand(d.Graph, d.Platform, selected)
		if err != nil {
			return err
		}
		child = expanded

		order, err := d.Tree.Playout(d.Graph, d.Platform, child)
		if err != nil {
			return err
		}
		names = namesOf(order)
		d.log.WithField("op", child.Op.Desc()).Debug("expanded")
	}

	gotNames, err := d.Bcast.BroadcastNames(names)
	if err != nil {
		return err
	}

	// Every rank, including rank 0, resolves the benchmarked order from
	// names only, starting from a freshly zeroed event cursor: rank 0's
	// own Select/Expand/Playout call above already advanced its event
	// allocator as a side effect of computing the frontier, so without
	// this reset rank 0 would assign different absolute event IDs (and
	// therefore different sync-op names) than a rank replaying the same
	// names from a clean cursor.
	d.Platform.ResetDynamicResources()

	order, err := resolveOrder(d.Graph, d.Platform, gotNames, d.Tree.StreamBudget)
	if err != nil {
		return err
	}

	result, err := d.Bench.Benchmark(order, d.Platform)
	if err != nil {
		return err
	}

	if rank == 0 {
		d.Tree.Backprop(child, result)
		d.log.WithField("result", result.String()).Debug("backprop")
	}
	return nil
}

// namesOf renders order as wire identifiers via op.Identifier, not bare
// Name: a GpuOp's Name is stream-agnostic, so a uniform-random Playout
// choice between e.g. kernel@stream0 and kernel@stream1 would otherwise
// be indistinguishable on the wire, and resolveOrder would silently
// replay the wrong stream binding (spec.md §8 S2/S5, invariant 7).
func namesOf(order *seq.Sequence) []string {
	names := make([]string, order.Len())
	for i, o := range order.Ops() {
		names[i] = op.Identifier(o)
	}
	return names
}

// resolveOrder rebuilds a Sequence from a received identifier list by
// replaying frontier.Expand over g/plat, picking at each step the
// frontier candidate whose op.Identifier matches the next broadcast
// identifier. Every rank runs the identical deterministic frontier
// computation, so the resolved Sequence's stream assignments agree with
// rank 0's even when a GpuOp playout chose to run on a non-default
// stream — an unknown identifier is a broken cross-rank invariant, not a
// recoverable condition.
func resolveOrder(g *graph.Graph[op.Operation], plat *platform.Platform, names []string, streamBudget int) (*seq.Sequence, error) {
	completed := seq.New()
	for _, name := range names {
		fr, err := frontier.Expand(plat, g, completed, streamBudget)
		if err != nil {
			return nil, err
		}
		choice, ok := findByIdentifier(fr, name)
		if !ok {
			return nil, schederr.NewConfigError("rankio.BroadcastNames", fmt.Errorf("unknown operation identifier %q during broadcast resolution", name))
		}
		completed.Append(choice)
	}
	return completed, nil
}

func findByIdentifier(fr []op.BoundOp, id string) (op.BoundOp, bool) {
	for _, o := range fr {
		if op.Identifier(o) == id {
			return o, true
		}
	}
	return nil, false
}
