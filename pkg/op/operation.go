// Package op defines the polymorphic operation model the scheduler plans
// over: CPU operations, unbound accelerator operations, their
// stream-bound counterparts, the synchronization family the Synchronizer
// inserts, and the MPI primitives that wrap request handles. Every variant
// is a CpuOp-or-narrower BoundOp except the unbound GpuOp, which exists
// only as a template the frontier expander binds to a stream.
//
// The concrete CPU/GPU/MPI side effects belong to external collaborators;
// this package only carries their identity (name, tag, equality, order)
// and an optional injected Run, so tests can exercise scheduling logic
// without a real accelerator or MPI runtime.
package op

import "github.com/sandialabs/hetsched/pkg/platform"

// Tag discriminates operation variants. Values are stable and match the
// ordering used for tie-breaking comparisons.
type Tag int

const (
	TagCpu Tag = iota + 1
	TagGpuUnbound
	TagStreamWait
	TagStreamSync
	TagEventRecord
	TagStreamWaitEvent
	TagEventSync
	TagBoundGpu
	TagIrecv
	TagIsend
	TagWait
	TagOwningWaitall
	TagMultiWait
)

func (t Tag) String() string {
	switch t {
	case TagCpu:
		return "cpu"
	case TagGpuUnbound:
		return "gpu"
	case TagStreamWait:
		return "stream_wait"
	case TagStreamSync:
		return "stream_sync"
	case TagEventRecord:
		return "event_record"
	case TagStreamWaitEvent:
		return "stream_wait_event"
	case TagEventSync:
		return "event_sync"
	case TagBoundGpu:
		return "gpu_bound"
	case TagIrecv:
		return "irecv"
	case TagIsend:
		return "isend"
	case TagWait:
		return "wait"
	case TagOwningWaitall:
		return "owning_waitall"
	case TagMultiWait:
		return "multi_wait"
	default:
		return "unknown"
	}
}

// Operation is the shared capability every variant implements: a stable
// name, a discriminant tag, a strict-weak order, a run side effect, a
// clone, and a JSON projection (via Fields).
type Operation interface {
	Name() string
	Tag() Tag
	// Desc is a short human-readable description, used in error messages
	// and diagnostics; unlike Name it is not required to be unique.
	Desc() string
	// Key is the canonical identity used for map/set membership: two
	// operations with the same Key are the same BoundOp.
	Key() string
	Equal(other Operation) bool
	Less(other Operation) bool
	Clone() Operation
	Run(p *platform.Platform) error
	// Fields returns the variant-specific JSON fields (without kind/name/
	// in_graph, which the caller adds).
	Fields() map[string]any
}

// BoundOp is any Operation that is actually runnable: every variant except
// the unbound GpuOp.
type BoundOp interface {
	Operation
	bound()
}

// Unbindable is implemented by operations that have an underlying unbound
// template, currently only BoundGpuOp. Graph.SuccsFindOrFindUnbound uses
// it to fall back from a bound lookup to the unbound template's edges.
type Unbindable interface {
	Unbound() Operation
}

// UnboundKey is the identity used for "same underlying operation
// regardless of stream binding" comparisons: a BoundGpuOp's unbound key is
// its GpuOp template's key; every other variant's unbound key is its own.
func UnboundKey(o Operation) string {
	if ub, ok := o.(Unbindable); ok {
		return ub.Unbound().Key()
	}
	return o.Key()
}

// lessByTagThenKey implements the "stable by variant tag, then
// discriminating fields" ordering spec.md mandates, shared by every
// variant's Less.
func lessByTagThenKey(a, b Operation) bool {
	if a.Tag() != b.Tag() {
		return a.Tag() < b.Tag()
	}
	return a.Key() < b.Key()
}
