package op

import (
	"fmt"

	"github.com/sandialabs/hetsched/pkg/platform"
)

// GpuOp is an accelerator operation not yet assigned to a stream. It is
// not a BoundOp — the frontier expander must first pair it with a Stream
// via BoundGpuOp before it can enter a schedule.
type GpuOp struct {
	name    string
	RunFunc func(platform.Stream) error
}

func NewGpuOp(name string) *GpuOp {
	return &GpuOp{name: name}
}

func (o *GpuOp) Name() string { return o.name }
func (o *GpuOp) Tag() Tag     { return TagGpuUnbound }
func (o *GpuOp) Desc() string { return "gpu(" + o.name + ")" }
func (o *GpuOp) Key() string  { return "gpu:" + o.name }

func (o *GpuOp) Equal(other Operation) bool {
	o2, ok := other.(*GpuOp)
	return ok && o2.name == o.name
}

func (o *GpuOp) Less(other Operation) bool { return lessByTagThenKey(o, other) }

func (o *GpuOp) Clone() Operation {
	return &GpuOp{name: o.name, RunFunc: o.RunFunc}
}

// Run on an unbound GpuOp is a configuration error: it must be bound to a
// stream first.
func (o *GpuOp) Run(p *platform.Platform) error {
	return fmt.Errorf("gpu op %s is unbound, cannot run directly", o.name)
}

func (o *GpuOp) Fields() map[string]any {
	return map[string]any{}
}

// BoundGpuOp pairs a GpuOp with a specific Stream. Equality considers both
// the stream and the underlying GpuOp.
type BoundGpuOp struct {
	gpu    *GpuOp
	stream platform.Stream
}

func NewBoundGpuOp(gpu *GpuOp, stream platform.Stream) *BoundGpuOp {
	return &BoundGpuOp{gpu: gpu, stream: stream}
}

func (o *BoundGpuOp) bound() {}

func (o *BoundGpuOp) Name() string { return o.gpu.name }
func (o *BoundGpuOp) Tag() Tag     { return TagBoundGpu }
func (o *BoundGpuOp) Desc() string {
	return fmt.Sprintf("gpu_bound(%s@%s)", o.gpu.name, o.stream)
}
func (o *BoundGpuOp) Key() string {
	return fmt.Sprintf("gpu_bound:%s:%d", o.gpu.name, o.stream.ID)
}

func (o *BoundGpuOp) Stream() platform.Stream { return o.stream }

// Unbound returns the underlying GpuOp template, so the graph can fall
// back from a bound lookup to the unbound operation's declared edges.
func (o *BoundGpuOp) Unbound() Operation { return o.gpu }

func (o *BoundGpuOp) Equal(other Operation) bool {
	o2, ok := other.(*BoundGpuOp)
	if !ok {
		return false
	}
	return o2.stream == o.stream && o2.gpu.Equal(o.gpu)
}

func (o *BoundGpuOp) Less(other Operation) bool {
	o2, ok := other.(*BoundGpuOp)
	if !ok {
		return lessByTagThenKey(o, other)
	}
	if o.stream.ID != o2.stream.ID {
		return o.stream.ID < o2.stream.ID
	}
	return o.gpu.name < o2.gpu.name
}

func (o *BoundGpuOp) Clone() Operation {
	return &BoundGpuOp{gpu: o.gpu, stream: o.stream}
}

func (o *BoundGpuOp) Run(p *platform.Platform) error {
	if err := p.CudaStream(o.stream); err != nil {
		return err
	}
	if o.gpu.RunFunc == nil {
		return nil
	}
	return o.gpu.RunFunc(o.stream)
}

func (o *BoundGpuOp) Fields() map[string]any {
	return map[string]any{"stream": o.stream.ID}
}
