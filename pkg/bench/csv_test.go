package bench

import (
	"strings"
	"testing"

	"github.com/sandialabs/hetsched/pkg/op"
	"github.com/sandialabs/hetsched/pkg/platform"
	"github.com/sandialabs/hetsched/pkg/schederr"
	"github.com/sandialabs/hetsched/pkg/seq"
)

func ordering() *seq.Sequence {
	s := seq.New()
	s.Append(op.NewCpuOp("work"))
	s.Append(op.NewBoundGpuOp(op.NewGpuOp("kernel"), platform.Stream{ID: 0}))
	return s
}

func TestCsvBenchmarkerMatchesRowByIdentifiers(t *testing.T) {
	csv := "pct01,pct10,pct50,pct90,pct99,stddev,op1,op2\n" +
		"0.1,0.2,0.3,0.4,0.5,0.01,work,kernel@0\n"

	b, err := newCsvBenchmarkerFromReader(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := b.Benchmark(ordering(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Pct50 != 0.3 {
		t.Fatalf("expected pct50 0.3, got %f", res.Pct50)
	}
}

func TestCsvBenchmarkerReturnsConfigErrorWhenNoRowMatches(t *testing.T) {
	csv := "pct01,pct10,pct50,pct90,pct99,stddev,op1,op2\n" +
		"0.1,0.2,0.3,0.4,0.5,0.01,other,kernel@1\n"

	b, err := newCsvBenchmarkerFromReader(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = b.Benchmark(ordering(), nil)
	if err == nil {
		t.Fatal("expected an error when no CSV row matches the ordering")
	}
	var cfgErr *schederr.ConfigError
	if !asConfigError(err, &cfgErr) {
		t.Fatalf("expected a *schederr.ConfigError, got %T", err)
	}
}

func TestNewCsvBenchmarkerRejectsEmptyFile(t *testing.T) {
	if _, err := newCsvBenchmarkerFromReader(strings.NewReader("")); err == nil {
		t.Fatal("an empty CSV should fail to parse")
	}
}

func TestNewCsvBenchmarkerRejectsShortRow(t *testing.T) {
	csv := "pct01,pct10,pct50,pct90,pct99,stddev,op1\n0.1,0.2,0.3\n"
	if _, err := newCsvBenchmarkerFromReader(strings.NewReader(csv)); err == nil {
		t.Fatal("a row with fewer than 6 numeric columns should fail to parse")
	}
}

func asConfigError(err error, target **schederr.ConfigError) bool {
	ce, ok := err.(*schederr.ConfigError)
	if !ok {
		return false
	}
	*target = ce
	return true
}
