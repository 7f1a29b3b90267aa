package op

import (
	"fmt"

	"github.com/sandialabs/hetsched/pkg/platform"
)

// The MPI ops wrap request handles but never resolve them here: the real
// MPI_Isend/Irecv/Wait calls belong to the external collaborator that owns
// the communicator buffers. RunFunc lets tests and the empirical
// benchmarker inject synthetic timing without linking an MPI runtime.

// Isend is a non-blocking send.
type Isend struct {
	name    string
	Dest    int
	MsgTag  int
	RunFunc func(*platform.Platform) error
}

func NewIsend(name string, dest, msgTag int) *Isend {
	return &Isend{name: name, Dest: dest, MsgTag: msgTag}
}

func (o *Isend) bound()       {}
func (o *Isend) Name() string { return o.name }
func (o *Isend) Tag() Tag     { return TagIsend }
func (o *Isend) Desc() string { return fmt.Sprintf("isend(%s->rank%d)", o.name, o.Dest) }
func (o *Isend) Key() string  { return "isend:" + o.name }

func (o *Isend) Equal(other Operation) bool {
	o2, ok := other.(*Isend)
	return ok && o2.name == o.name && o2.Dest == o.Dest && o2.MsgTag == o.MsgTag
}
func (o *Isend) Less(other Operation) bool { return lessByTagThenKey(o, other) }
func (o *Isend) Clone() Operation          { return &Isend{name: o.name, Dest: o.Dest, MsgTag: o.MsgTag, RunFunc: o.RunFunc} }
func (o *Isend) Run(p *platform.Platform) error {
	if o.RunFunc == nil {
		return nil
	}
	return o.RunFunc(p)
}
func (o *Isend) Fields() map[string]any {
	return map[string]any{"dest": o.Dest, "tag": o.MsgTag}
}

// Irecv is a non-blocking receive.
type Irecv struct {
	name    string
	Source  int
	MsgTag  int
	RunFunc func(*platform.Platform) error
}

func NewIrecv(name string, source, msgTag int) *Irecv {
	return &Irecv{name: name, Source: source, MsgTag: msgTag}
}

func (o *Irecv) bound()       {}
func (o *Irecv) Name() string { return o.name }
func (o *Irecv) Tag() Tag     { return TagIrecv }
func (o *Irecv) Desc() string { return fmt.Sprintf("irecv(%s<-rank%d)", o.name, o.Source) }
func (o *Irecv) Key() string  { return "irecv:" + o.name }

func (o *Irecv) Equal(other Operation) bool {
	o2, ok := other.(*Irecv)
	return ok && o2.name == o.name && o2.Source == o.Source && o2.MsgTag == o.MsgTag
}
func (o *Irecv) Less(other Operation) bool { return lessByTagThenKey(o, other) }
func (o *Irecv) Clone() Operation {
	return &Irecv{name: o.name, Source: o.Source, MsgTag: o.MsgTag, RunFunc: o.RunFunc}
}
func (o *Irecv) Run(p *platform.Platform) error {
	if o.RunFunc == nil {
		return nil
	}
	return o.RunFunc(p)
}
func (o *Irecv) Fields() map[string]any {
	return map[string]any{"source": o.Source, "tag": o.MsgTag}
}

// Wait blocks the CPU for a single outstanding request, named by the
// Isend/Irecv that produced it.
type Wait struct {
	name    string
	Request string
	RunFunc func(*platform.Platform) error
}

func NewWait(name, request string) *Wait {
	return &Wait{name: name, Request: request}
}

func (o *Wait) bound()       {}
func (o *Wait) Name() string { return o.name }
func (o *Wait) Tag() Tag     { return TagWait }
func (o *Wait) Desc() string { return fmt.Sprintf("wait(%s)", o.Request) }
func (o *Wait) Key() string  { return "wait:" + o.name }

func (o *Wait) Equal(other Operation) bool {
	o2, ok := other.(*Wait)
	return ok && o2.name == o.name && o2.Request == o.Request
}
func (o *Wait) Less(other Operation) bool { return lessByTagThenKey(o, other) }
func (o *Wait) Clone() Operation          { return &Wait{name: o.name, Request: o.Request, RunFunc: o.RunFunc} }
func (o *Wait) Run(p *platform.Platform) error {
	if o.RunFunc == nil {
		return nil
	}
	return o.RunFunc(p)
}
func (o *Wait) Fields() map[string]any {
	return map[string]any{"request": o.Request}
}

// OwningWaitall owns a set of request handles by name and blocks the CPU
// until all of them complete.
type OwningWaitall struct {
	name     string
	requests []string
	RunFunc  func(*platform.Platform) error
}

func NewOwningWaitall(name string) *OwningWaitall {
	return &OwningWaitall{name: name}
}

func (o *OwningWaitall) AddRequest(name string) { o.requests = append(o.requests, name) }
func (o *OwningWaitall) Requests() []string      { return o.requests }

func (o *OwningWaitall) bound()       {}
func (o *OwningWaitall) Name() string { return o.name }
func (o *OwningWaitall) Tag() Tag     { return TagOwningWaitall }
func (o *OwningWaitall) Desc() string {
	return fmt.Sprintf("owning_waitall(%s, n=%d)", o.name, len(o.requests))
}
func (o *OwningWaitall) Key() string { return "owning_waitall:" + o.name }

func (o *OwningWaitall) Equal(other Operation) bool {
	o2, ok := other.(*OwningWaitall)
	return ok && o2.name == o.name
}
func (o *OwningWaitall) Less(other Operation) bool { return lessByTagThenKey(o, other) }
func (o *OwningWaitall) Clone() Operation {
	reqs := make([]string, len(o.requests))
	copy(reqs, o.requests)
	return &OwningWaitall{name: o.name, requests: reqs, RunFunc: o.RunFunc}
}
func (o *OwningWaitall) Run(p *platform.Platform) error {
	if o.RunFunc == nil {
		return nil
	}
	return o.RunFunc(p)
}
func (o *OwningWaitall) Fields() map[string]any {
	return map[string]any{"requests": o.requests}
}

// MultiWait blocks the CPU until every request it was given at
// construction completes; unlike OwningWaitall it does not own the
// requests (they may be shared with other MultiWaits).
type MultiWait struct {
	name     string
	requests []string
	RunFunc  func(*platform.Platform) error
}

func NewMultiWait(name string, requests []string) *MultiWait {
	reqs := make([]string, len(requests))
	copy(reqs, requests)
	return &MultiWait{name: name, requests: reqs}
}

func (o *MultiWait) Requests() []string { return o.requests }

func (o *MultiWait) bound()       {}
func (o *MultiWait) Name() string { return o.name }
func (o *MultiWait) Tag() Tag     { return TagMultiWait }
func (o *MultiWait) Desc() string {
	return fmt.Sprintf("multi_wait(%s, n=%d)", o.name, len(o.requests))
}
func (o *MultiWait) Key() string { return "multi_wait:" + o.name }

func (o *MultiWait) Equal(other Operation) bool {
	o2, ok := other.(*MultiWait)
	return ok && o2.name == o.name
}
func (o *MultiWait) Less(other Operation) bool { return lessByTagThenKey(o, other) }
func (o *MultiWait) Clone() Operation {
	reqs := make([]string, len(o.requests))
	copy(reqs, o.requests)
	return &MultiWait{name: o.name, requests: reqs, RunFunc: o.RunFunc}
}
func (o *MultiWait) Run(p *platform.Platform) error {
	if o.RunFunc == nil {
		return nil
	}
	return o.RunFunc(p)
}
func (o *MultiWait) Fields() map[string]any {
	return map[string]any{"requests": o.requests}
}
