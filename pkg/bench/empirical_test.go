package bench

import (
	"testing"

	"github.com/sandialabs/hetsched/pkg/op"
	"github.com/sandialabs/hetsched/pkg/platform"
	"github.com/sandialabs/hetsched/pkg/seq"
)

func TestEmpiricalBenchmarkerRunsConfiguredCount(t *testing.T) {
	runs := 0
	cpu := op.NewCpuOp("work")
	cpu.RunFunc = func(*platform.Platform) error {
		runs++
		return nil
	}

	order := seq.New()
	order.Append(cpu)

	b := NewEmpiricalBenchmarker(Opts{Runs: 5})
	plat := platform.NewPlatform(nil)

	if _, err := b.Benchmark(order, plat); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runs != 5 {
		t.Fatalf("expected the ordering to run 5 times, ran %d", runs)
	}
}

func TestEmpiricalBenchmarkerDefaultsRunsWhenZero(t *testing.T) {
	runs := 0
	cpu := op.NewCpuOp("work")
	cpu.RunFunc = func(*platform.Platform) error {
		runs++
		return nil
	}
	order := seq.New()
	order.Append(cpu)

	b := NewEmpiricalBenchmarker(Opts{})
	plat := platform.NewPlatform(nil)

	if _, err := b.Benchmark(order, plat); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runs != DefaultOpts().Runs {
		t.Fatalf("expected the default run count %d, got %d", DefaultOpts().Runs, runs)
	}
}

func TestEmpiricalBenchmarkerResetsPlatformBetweenRuns(t *testing.T) {
	var seenIDs []uint32
	cpu := op.NewCpuOp("work")
	cpu.RunFunc = func(p *platform.Platform) error {
		e := p.NewEvent()
		seenIDs = append(seenIDs, e.ID)
		return nil
	}
	order := seq.New()
	order.Append(cpu)

	b := NewEmpiricalBenchmarker(Opts{Runs: 3})
	plat := platform.NewPlatform(nil)

	if _, err := b.Benchmark(order, plat); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, id := range seenIDs {
		if id != 0 {
			t.Fatalf("resetting dynamic resources before each run should make every run allocate event 0, saw IDs %v", seenIDs)
		}
	}
	if plat.NumEvents() != 1 {
		t.Fatalf("the physical event pool should stay at size 1 across repeated runs, got %d", plat.NumEvents())
	}
}

func TestEmpiricalBenchmarkerPropagatesRunError(t *testing.T) {
	cpu := op.NewCpuOp("broken")
	cpu.RunFunc = func(*platform.Platform) error {
		return errFake
	}
	order := seq.New()
	order.Append(cpu)

	b := NewEmpiricalBenchmarker(Opts{Runs: 1})
	plat := platform.NewPlatform(nil)

	if _, err := b.Benchmark(order, plat); err == nil {
		t.Fatal("a failing op.Run should surface as an error from Benchmark")
	}
}

type fakeErr struct{}

func (fakeErr) Error() string { return "boom" }

var errFake = fakeErr{}
