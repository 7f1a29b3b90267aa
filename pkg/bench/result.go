// Package bench runs a candidate operation ordering and reports its
// latency distribution, either by measuring it directly (Empirical) or by
// looking it up from a pre-measured CSV (CSV replay), per spec.md §4.6.
package bench

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
)

// Result is the percentile summary of one candidate ordering's measured
// latency, spec.md §3's BenchResult. It implements mcts.Sample so it can
// backpropagate directly into the search tree.
type Result struct {
	Pct01   float64
	Pct10   float64
	Pct50   float64
	Pct90   float64
	Pct99   float64
	Stddev  float64
	// RunID tags which empirical run produced this result, so operators
	// can correlate a backprop event in the search log with a specific
	// measured run.
	RunID string
}

func (r Result) Median() float64 { return r.Pct50 }
func (r Result) Min() float64    { return r.Pct01 }

func (r Result) String() string {
	return fmt.Sprintf("p01=%.3f p10=%.3f p50=%.3f p90=%.3f p99=%.3f stddev=%.3f",
		r.Pct01, r.Pct10, r.Pct50, r.Pct90, r.Pct99, r.Stddev)
}

// Summarize computes a Result's percentile/stddev fields from a set of
// observed sample durations (in seconds), using montanaflynn/stats's
// nearest-rank percentiles, which are defined for any non-empty sample
// set regardless of its size.
func Summarize(samples []float64) (Result, error) {
	data := stats.LoadRawData(samples)

	p01, err := stats.PercentileNearestRank(data, 1)
	if err != nil {
		return Result{}, err
	}
	p10, err := stats.PercentileNearestRank(data, 10)
	if err != nil {
		return Result{}, err
	}
	p50, err := stats.Median(data)
	if err != nil {
		return Result{}, err
	}
	p90, err := stats.PercentileNearestRank(data, 90)
	if err != nil {
		return Result{}, err
	}
	p99, err := stats.PercentileNearestRank(data, 99)
	if err != nil {
		return Result{}, err
	}
	sd, err := stats.StandardDeviation(data)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Pct01:  p01,
		Pct10:  p10,
		Pct50:  p50,
		Pct90:  p90,
		Pct99:  p99,
		Stddev: sd,
		RunID:  uuid.NewString(),
	}, nil
}
