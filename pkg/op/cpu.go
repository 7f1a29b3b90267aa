package op

import "github.com/sandialabs/hetsched/pkg/platform"

// CpuOp executes on the CPU. It is itself a BoundOp: the CPU has no
// streams to bind to. RunFunc is supplied by the external collaborator
// that owns the real side effect; nil means a no-op, which is sufficient
// for search, benchmarking against synthetic timing, and tests.
type CpuOp struct {
	name    string
	RunFunc func(*platform.Platform) error
}

func NewCpuOp(name string) *CpuOp {
	return &CpuOp{name: name}
}

func (o *CpuOp) bound() {}

func (o *CpuOp) Name() string { return o.name }
func (o *CpuOp) Tag() Tag     { return TagCpu }
func (o *CpuOp) Desc() string { return "cpu(" + o.name + ")" }
func (o *CpuOp) Key() string  { return "cpu:" + o.name }

func (o *CpuOp) Equal(other Operation) bool {
	o2, ok := other.(*CpuOp)
	return ok && o2.name == o.name
}

func (o *CpuOp) Less(other Operation) bool { return lessByTagThenKey(o, other) }

func (o *CpuOp) Clone() Operation {
	return &CpuOp{name: o.name, RunFunc: o.RunFunc}
}

func (o *CpuOp) Run(p *platform.Platform) error {
	if o.RunFunc == nil {
		return nil
	}
	return o.RunFunc(p)
}

func (o *CpuOp) Fields() map[string]any {
	return map[string]any{}
}
