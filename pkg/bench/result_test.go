package bench

import "testing"

func TestSummarizeOrdersPercentilesAscending(t *testing.T) {
	samples := []float64{0.5, 0.1, 0.9, 0.2, 0.8, 0.3, 0.7, 0.4, 0.6, 1.0}
	res, err := Summarize(samples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Pct01 > res.Pct10 || res.Pct10 > res.Pct50 || res.Pct50 > res.Pct90 || res.Pct90 > res.Pct99 {
		t.Fatalf("percentiles should be non-decreasing, got %s", res)
	}
	if res.RunID == "" {
		t.Fatal("Summarize should stamp a non-empty RunID")
	}
}

func TestResultImplementsSample(t *testing.T) {
	res := Result{Pct01: 1.5, Pct50: 2.5}
	if res.Min() != 1.5 {
		t.Fatalf("Min should report Pct01, got %f", res.Min())
	}
	if res.Median() != 2.5 {
		t.Fatalf("Median should report Pct50, got %f", res.Median())
	}
}
