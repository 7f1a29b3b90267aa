// Package seq implements the ordered partial schedule: an append-only list
// of BoundOps with the two membership predicates the Synchronizer and
// frontier expander need (exact and unbound-identity).
package seq

import "github.com/sandialabs/hetsched/pkg/op"

// Sequence is an ordered, append-only list of completed BoundOps. It
// maintains a hash index by canonical (unbound) identity alongside the
// ordered slice, so membership checks stay O(1) as the schedule grows —
// spec.md §4.3 calls this out explicitly for contains_unbound.
type Sequence struct {
	ops []op.BoundOp

	exact   map[string]int // op.Key() -> count
	unbound map[string]int // op.UnboundKey(op) -> count
}

// New returns an empty Sequence.
func New() *Sequence {
	return &Sequence{
		exact:   make(map[string]int),
		unbound: make(map[string]int),
	}
}

// Append adds o to the end of the sequence.
func (s *Sequence) Append(o op.BoundOp) {
	s.ops = append(s.ops, o)
	s.exact[o.Key()]++
	s.unbound[op.UnboundKey(o)]++
}

// Len returns the number of completed operations.
func (s *Sequence) Len() int { return len(s.ops) }

// At returns the op at index i.
func (s *Sequence) At(i int) op.BoundOp { return s.ops[i] }

// Ops returns the underlying ordered slice; callers must not mutate it.
func (s *Sequence) Ops() []op.BoundOp { return s.ops }

// Contains reports whether o (exact match, by Key) is present.
func (s *Sequence) Contains(o op.Operation) bool {
	return s.exact[o.Key()] > 0
}

// ContainsUnbound reports whether any element equals o, or shares the same
// underlying unbound operation as o (e.g. a BoundGpuOp already present on
// some stream satisfies ContainsUnbound for its GpuOp template, and vice
// versa).
func (s *Sequence) ContainsUnbound(o op.Operation) bool {
	return s.unbound[op.UnboundKey(o)] > 0
}

// FindUnbound returns the bound element of the sequence whose underlying
// unbound identity matches o (the first such element, in order), used by
// the Synchronizer to recover which stream a predecessor actually ran on.
func (s *Sequence) FindUnbound(o op.Operation) (op.BoundOp, bool) {
	key := op.UnboundKey(o)
	for _, e := range s.ops {
		if op.UnboundKey(e) == key {
			return e, true
		}
	}
	return nil, false
}

// IndexOf returns the index of the first element equal to o, or -1.
func (s *Sequence) IndexOf(o op.Operation) int {
	for i, e := range s.ops {
		if e.Equal(o) {
			return i
		}
	}
	return -1
}

// Clone returns a copy of the sequence that shares no mutable state with
// the original; appending to one does not affect the other.
func (s *Sequence) Clone() *Sequence {
	c := New()
	c.ops = make([]op.BoundOp, len(s.ops))
	copy(c.ops, s.ops)
	for k, v := range s.exact {
		c.exact[k] = v
	}
	for k, v := range s.unbound {
		c.unbound[k] = v
	}
	return c
}

// Equal reports element-wise equality between two sequences.
func (s *Sequence) Equal(other *Sequence) bool {
	if s.Len() != other.Len() {
		return false
	}
	for i := range s.ops {
		if !s.ops[i].Equal(other.ops[i]) {
			return false
		}
	}
	return true
}

// Names returns the Name() of every element in order. A BoundGpuOp's Name
// carries no stream; the broadcast wire protocol and CSV replay key on
// op.Identifier instead.
func (s *Sequence) Names() []string {
	out := make([]string, len(s.ops))
	for i, o := range s.ops {
		out[i] = o.Name()
	}
	return out
}
