package seq

import (
	"testing"

	"github.com/sandialabs/hetsched/pkg/op"
	"github.com/sandialabs/hetsched/pkg/platform"
)

func TestAppendUpdatesBothIndices(t *testing.T) {
	s := New()
	cpu := op.NewCpuOp("setup")
	s.Append(cpu)

	if !s.Contains(cpu) {
		t.Fatal("Contains should find an appended op by exact key")
	}
	if !s.ContainsUnbound(cpu) {
		t.Fatal("ContainsUnbound should find an appended op whose unbound identity matches")
	}
	if s.Len() != 1 {
		t.Fatalf("expected length 1, got %d", s.Len())
	}
}

func TestContainsUnboundMatchesAcrossStreamBindings(t *testing.T) {
	gpu := op.NewGpuOp("kernel")
	bound := op.NewBoundGpuOp(gpu, platform.Stream{ID: 1})

	s := New()
	s.Append(bound)

	if !s.ContainsUnbound(gpu) {
		t.Fatal("a stream-bound GpuOp in the sequence should satisfy ContainsUnbound for its unbound template")
	}
	if s.Contains(gpu) {
		t.Fatal("Contains is exact-match only; the unbound template itself was never appended")
	}
}

func TestFindUnboundReturnsFirstMatch(t *testing.T) {
	gpu := op.NewGpuOp("kernel")
	bound := op.NewBoundGpuOp(gpu, platform.Stream{ID: 2})

	s := New()
	s.Append(bound)

	found, ok := s.FindUnbound(gpu)
	if !ok {
		t.Fatal("FindUnbound should resolve the unbound template to its bound form")
	}
	if found.(*op.BoundGpuOp).Stream().ID != 2 {
		t.Fatalf("expected stream 2, got %d", found.(*op.BoundGpuOp).Stream().ID)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := New()
	s.Append(op.NewCpuOp("a"))

	c := s.Clone()
	c.Append(op.NewCpuOp("b"))

	if s.Len() != 1 {
		t.Fatalf("cloning then appending to the clone must not affect the original, original len=%d", s.Len())
	}
	if c.Len() != 2 {
		t.Fatalf("expected clone length 2, got %d", c.Len())
	}
}
