package op

import (
	"testing"

	"github.com/sandialabs/hetsched/pkg/platform"
)

func TestCpuOpKeyStable(t *testing.T) {
	a := NewCpuOp("setup")
	b := NewCpuOp("setup")
	if a.Key() != b.Key() {
		t.Fatalf("two CpuOps with the same name should share a Key, got %q and %q", a.Key(), b.Key())
	}
	if !a.Equal(b) {
		t.Fatal("two CpuOps with the same name should be Equal")
	}
}

func TestBoundGpuOpUnboundRoundTrip(t *testing.T) {
	gpu := NewGpuOp("kernel")
	bound := NewBoundGpuOp(gpu, platform.Stream{ID: 2})

	ub, ok := Operation(bound).(Unbindable)
	if !ok {
		t.Fatal("BoundGpuOp should implement Unbindable")
	}
	if ub.Unbound() != Operation(gpu) {
		t.Fatal("Unbound() should return the exact GpuOp it was bound from")
	}
	if bound.Name() != gpu.Name() {
		t.Fatalf("BoundGpuOp.Name() should match its template's name, got %q", bound.Name())
	}
}

func TestUnboundKeyBridgesBoundAndUnbound(t *testing.T) {
	gpu := NewGpuOp("kernel")
	bound := NewBoundGpuOp(gpu, platform.Stream{ID: 1})

	if UnboundKey(gpu) != UnboundKey(bound) {
		t.Fatalf("UnboundKey should agree for a GpuOp and any of its bound forms, got %q and %q", UnboundKey(gpu), UnboundKey(bound))
	}
}

func TestGpuOpRunWithoutBindingFails(t *testing.T) {
	gpu := NewGpuOp("kernel")
	if err := gpu.Run(platform.NewPlatform(nil)); err == nil {
		t.Fatal("an unbound GpuOp must not be runnable directly")
	}
}
