package bench

import (
	"time"

	"github.com/sandialabs/hetsched/pkg/platform"
	"github.com/sandialabs/hetsched/pkg/schederr"
	"github.com/sandialabs/hetsched/pkg/seq"
)

// Opts configures a single Benchmark call. Runs defaults to 20, within
// spec.md §4.6's documented 10-50 range.
type Opts struct {
	Runs int
}

// DefaultOpts returns the documented default run count.
func DefaultOpts() Opts { return Opts{Runs: 20} }

// EmpiricalBenchmarker runs a candidate ordering k times and summarizes
// the wall-clock latency of each run, grounded in
// original_source/include/sched/benchmarker.hpp's EmpiricalBenchmarker.
// It satisfies Benchmarker.
type EmpiricalBenchmarker struct {
	Opts Opts
}

func NewEmpiricalBenchmarker(opts Opts) *EmpiricalBenchmarker { return &EmpiricalBenchmarker{Opts: opts} }

// Benchmark runs order Opts.Runs times, resetting the platform's dynamic
// resources before each run so the same physical events are reused, and
// returns the percentile/stddev summary of the observed wall-clock
// durations.
func (b *EmpiricalBenchmarker) Benchmark(order *seq.Sequence, plat *platform.Platform) (Result, error) {
	runs := b.Opts.Runs
	if runs <= 0 {
		runs = DefaultOpts().Runs
	}

	samples := make([]float64, 0, runs)
	for i := 0; i < runs; i++ {
		plat.ResetDynamicResources()

		start := time.Now()
		for _, o := range order.Ops() {
			if err := o.Run(plat); err != nil {
				return Result{}, schederr.NewResourceError(o.Desc(), err)
			}
		}
		samples = append(samples, time.Since(start).Seconds())
	}

	return Summarize(samples)
}
