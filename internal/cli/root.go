// Package cli wires spec.md §6's CLI surface (--iters, --streams, --seed,
// --strategy, --replay) to pkg/driver, in the cobra idiom
// mizuho-u-cube/cmd and jinterlante1206-AleutianLocal/cmd/aleutian use
// elsewhere in this codebase's lineage.
package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sandialabs/hetsched/internal/demo"
	"github.com/sandialabs/hetsched/pkg/bench"
	"github.com/sandialabs/hetsched/pkg/driver"
	"github.com/sandialabs/hetsched/pkg/graph"
	"github.com/sandialabs/hetsched/pkg/mcts"
	"github.com/sandialabs/hetsched/pkg/op"
	"github.com/sandialabs/hetsched/pkg/platform"
	"github.com/sandialabs/hetsched/pkg/rankio"
)

var rootCmd = &cobra.Command{
	Use:   "hetsched",
	Short: "MCTS scheduler for heterogeneous operation DAGs",
	Long: `hetsched searches for a low-latency ordering of a CPU/GPU/MPI
operation graph via Monte Carlo Tree Search, benchmarking each candidate
ordering either empirically or by CSV replay.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().Int("iters", 0, "iteration budget (0 = unbounded, subject to --wallclock)")
	rootCmd.Flags().Duration("wallclock", 0, "wall-clock budget, e.g. 30s (0 = unbounded, subject to --iters)")
	rootCmd.Flags().Int("streams", 4, "stream budget the frontier expander may grow accelerator streams up to")
	rootCmd.Flags().Int64("seed", 1, "RNG seed for tie-breaking and random playouts")
	rootCmd.Flags().String("strategy", "normalized-range", "UCT exploitation strategy: normalized-range or min-time")
	rootCmd.Flags().String("replay", "", "CSV path to replay pre-measured results from, instead of benchmarking")
	rootCmd.Flags().Int("bench-runs", 20, "empirical benchmarker repetitions per ordering (ignored with --replay)")
}

// Execute runs the root command; main's sole responsibility is calling
// this and translating a non-nil error into a non-zero exit code.
func Execute() error {
	return rootCmd.Execute()
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := configFromFlags(cmd)
	if err != nil {
		return err
	}

	g := demo.Graph()
	plat, err := platform.MakeNStreams(cfg.Streams, rankio.LocalComm{})
	if err != nil {
		return err
	}

	benchmarker, err := newBenchmarker(cfg)
	if err != nil {
		return err
	}

	start, ok := g.Start().(op.BoundOp)
	if !ok {
		return fmt.Errorf("graph start operation %s is not bound", g.Start().Desc())
	}

	var names []string
	var stats driver.Stats
	switch cfg.Strategy {
	case driver.StrategyMinTime:
		names, stats, err = runWithStrategy[struct{}, mcts.TimesState](g, plat, start, cfg, &struct{}{}, mcts.MinTimeStrategy{}, benchmarker)
	default:
		names, stats, err = runWithStrategy[mcts.NormalizedRangeContext, mcts.TimesState](g, plat, start, cfg, mcts.NewNormalizedRangeContext(), mcts.NormalizedRangeStrategy{}, benchmarker)
	}
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"order":      names,
		"iterations": stats.Iterations,
		"max_depth":  stats.MaxDepth,
		"stop":       stats.StopReason.String(),
	}).Info("search complete")
	return nil
}

func runWithStrategy[C any, St any](g *graph.Graph[op.Operation], plat *platform.Platform, start op.BoundOp, cfg driver.Config, ctx *C, strategy mcts.Strategy[C, St], benchmarker bench.Benchmarker) ([]string, driver.Stats, error) {
	tree := mcts.NewTree[C, St](start, strategy, ctx, cfg.Seed, cfg.Streams)
	d := driver.New[C, St](g, plat, tree, rankio.LocalBroadcaster{}, benchmarker, cfg)

	stats, err := d.Run(context.Background())
	if err != nil {
		return nil, stats, err
	}

	order := tree.BestOrder(mcts.BestChildMostVisits)
	names := make([]string, order.Len())
	for i, o := range order.Ops() {
		names[i] = o.Desc()
	}
	return names, stats, nil
}

func newBenchmarker(cfg driver.Config) (bench.Benchmarker, error) {
	if cfg.Replay != "" {
		return bench.NewCsvBenchmarker(cfg.Replay)
	}
	return bench.NewEmpiricalBenchmarker(bench.Opts{Runs: cfg.BenchRuns}), nil
}

func configFromFlags(cmd *cobra.Command) (driver.Config, error) {
	cfg := driver.DefaultConfig()

	iters, _ := cmd.Flags().GetInt("iters")
	cfg.Iterations = iters

	wall, _ := cmd.Flags().GetDuration("wallclock")
	cfg.WallClock = wall

	streams, _ := cmd.Flags().GetInt("streams")
	cfg.Streams = streams

	seed, _ := cmd.Flags().GetInt64("seed")
	cfg.Seed = seed

	strategy, _ := cmd.Flags().GetString("strategy")
	switch strategy {
	case string(driver.StrategyMinTime):
		cfg.Strategy = driver.StrategyMinTime
	case string(driver.StrategyNormalizedRange):
		cfg.Strategy = driver.StrategyNormalizedRange
	default:
		return cfg, fmt.Errorf("unknown --strategy %q", strategy)
	}

	replay, _ := cmd.Flags().GetString("replay")
	cfg.Replay = replay

	runs, _ := cmd.Flags().GetInt("bench-runs")
	cfg.BenchRuns = runs

	return cfg, nil
}
