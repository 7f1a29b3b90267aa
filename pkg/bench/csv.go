package bench

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sandialabs/hetsched/pkg/op"
	"github.com/sandialabs/hetsched/pkg/platform"
	"github.com/sandialabs/hetsched/pkg/schederr"
	"github.com/sandialabs/hetsched/pkg/seq"
)

// Benchmarker is the common contract the driver loop benchmarks a chosen
// ordering through, satisfied by both EmpiricalBenchmarker (measures) and
// CsvBenchmarker (replays pre-measured rows). plat is unused by
// CsvBenchmarker but kept in the signature so the two are interchangeable
// at the driver's call site.
type Benchmarker interface {
	Benchmark(order *seq.Sequence, plat *platform.Platform) (Result, error)
}

// dataRow is one pre-measured ordering, adapted from
// original_source/include/sched/benchmarker.hpp's Benchmark::DataRow.
type dataRow struct {
	ids []string
	res Result
}

// CsvBenchmarker replays pre-measured results instead of running the
// ordering: constructed with a CSV path holding one row per ordering
// (header `pct01,pct10,pct50,pct90,pct99,stddev,op1,op2,...`, data rows
// the six numerics followed by `name@stream` identifiers), per spec.md §6.
type CsvBenchmarker struct {
	rows []dataRow
}

// NewCsvBenchmarker reads and indexes every row of the CSV at path.
func NewCsvBenchmarker(path string) (*CsvBenchmarker, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, schederr.NewConfigError("csv-benchmarker", err)
	}
	defer f.Close()
	return newCsvBenchmarkerFromReader(f)
}

func newCsvBenchmarkerFromReader(r io.Reader) (*CsvBenchmarker, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, schederr.NewConfigError("csv-benchmarker", err)
	}
	if len(records) < 1 {
		return nil, schederr.NewConfigError("csv-benchmarker", fmt.Errorf("empty csv"))
	}

	b := &CsvBenchmarker{}
	for _, rec := range records[1:] { // skip header
		if len(rec) < 6 {
			return nil, schederr.NewConfigError("csv-benchmarker", fmt.Errorf("row has fewer than 6 numeric columns: %v", rec))
		}
		nums := make([]float64, 6)
		for i := 0; i < 6; i++ {
			v, err := strconv.ParseFloat(rec[i], 64)
			if err != nil {
				return nil, schederr.NewConfigError("csv-benchmarker", fmt.Errorf("row column %d: %w", i, err))
			}
			nums[i] = v
		}
		b.rows = append(b.rows, dataRow{
			ids: append([]string(nil), rec[6:]...),
			res: Result{
				Pct01: nums[0], Pct10: nums[1], Pct50: nums[2],
				Pct90: nums[3], Pct99: nums[4], Stddev: nums[5],
			},
		})
	}
	return b, nil
}

// Benchmark finds the row whose operation identifiers match order
// (by name and stream) and returns its Result; if no row matches, it
// fails with a ConfigError (NotFound), per spec.md §4.6. plat is unused;
// it is present only so CsvBenchmarker satisfies Benchmarker.
func (b *CsvBenchmarker) Benchmark(order *seq.Sequence, plat *platform.Platform) (Result, error) {
	want := identifiersOf(order)
	for _, row := range b.rows {
		if equalIdentifiers(row.ids, want) {
			return row.res, nil
		}
	}
	return Result{}, schederr.NewConfigError("csv-benchmarker", fmt.Errorf("no replay row matches ordering of %d ops", order.Len()))
}

func identifiersOf(order *seq.Sequence) []string {
	out := make([]string, order.Len())
	for i, o := range order.Ops() {
		out[i] = op.Identifier(o)
	}
	return out
}

func equalIdentifiers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
