package op

import (
	"fmt"

	"github.com/sandialabs/hetsched/pkg/platform"
)

// CudaEventRecord records event on stream. The Synchronizer inserts one
// whenever a consumer on a different stream (or the CPU) needs to observe
// a producer's completion.
type CudaEventRecord struct {
	Event  platform.Event
	Stream platform.Stream
}

func (o *CudaEventRecord) bound()      {}
func (o *CudaEventRecord) Name() string { return o.Desc() }
func (o *CudaEventRecord) Tag() Tag     { return TagEventRecord }
func (o *CudaEventRecord) Desc() string {
	return fmt.Sprintf("event_record(%s<-%s)", o.Event, o.Stream)
}
func (o *CudaEventRecord) Key() string {
	return fmt.Sprintf("event_record:%d:%d", o.Event.ID, o.Stream.ID)
}

func (o *CudaEventRecord) Equal(other Operation) bool {
	o2, ok := other.(*CudaEventRecord)
	return ok && o2.Event == o.Event && o2.Stream == o.Stream
}
func (o *CudaEventRecord) Less(other Operation) bool { return lessByTagThenKey(o, other) }
func (o *CudaEventRecord) Clone() Operation          { c := *o; return &c }
func (o *CudaEventRecord) Run(p *platform.Platform) error {
	if err := p.CudaStream(o.Stream); err != nil {
		return err
	}
	return p.CudaEvent(o.Event)
}
func (o *CudaEventRecord) Fields() map[string]any {
	return map[string]any{"event": o.Event.ID, "stream": o.Stream.ID}
}

// CudaStreamWaitEvent enqueues on Stream a wait for Event, ordering that
// stream's future work after whatever recorded the event.
type CudaStreamWaitEvent struct {
	Stream platform.Stream
	Event  platform.Event
}

func (o *CudaStreamWaitEvent) bound()       {}
func (o *CudaStreamWaitEvent) Name() string { return o.Desc() }
func (o *CudaStreamWaitEvent) Tag() Tag     { return TagStreamWaitEvent }
func (o *CudaStreamWaitEvent) Desc() string {
	return fmt.Sprintf("stream_wait_event(%s waits %s)", o.Stream, o.Event)
}
func (o *CudaStreamWaitEvent) Key() string {
	return fmt.Sprintf("stream_wait_event:%d:%d", o.Stream.ID, o.Event.ID)
}

func (o *CudaStreamWaitEvent) Equal(other Operation) bool {
	o2, ok := other.(*CudaStreamWaitEvent)
	return ok && o2.Stream == o.Stream && o2.Event == o.Event
}
func (o *CudaStreamWaitEvent) Less(other Operation) bool { return lessByTagThenKey(o, other) }
func (o *CudaStreamWaitEvent) Clone() Operation          { c := *o; return &c }
func (o *CudaStreamWaitEvent) Run(p *platform.Platform) error {
	if err := p.CudaStream(o.Stream); err != nil {
		return err
	}
	return p.CudaEvent(o.Event)
}
func (o *CudaStreamWaitEvent) Fields() map[string]any {
	return map[string]any{"stream": o.Stream.ID, "event": o.Event.ID}
}

// CudaEventSync blocks the CPU until Event completes.
type CudaEventSync struct {
	Event platform.Event
}

func (o *CudaEventSync) bound()       {}
func (o *CudaEventSync) Name() string { return o.Desc() }
func (o *CudaEventSync) Tag() Tag     { return TagEventSync }
func (o *CudaEventSync) Desc() string { return fmt.Sprintf("event_sync(%s)", o.Event) }
func (o *CudaEventSync) Key() string  { return fmt.Sprintf("event_sync:%d", o.Event.ID) }

func (o *CudaEventSync) Equal(other Operation) bool {
	o2, ok := other.(*CudaEventSync)
	return ok && o2.Event == o.Event
}
func (o *CudaEventSync) Less(other Operation) bool { return lessByTagThenKey(o, other) }
func (o *CudaEventSync) Clone() Operation          { c := *o; return &c }
func (o *CudaEventSync) Run(p *platform.Platform) error {
	return p.CudaEvent(o.Event)
}
func (o *CudaEventSync) Fields() map[string]any {
	return map[string]any{"event": o.Event.ID}
}

// StreamSync blocks the CPU until Stream drains entirely.
type StreamSync struct {
	Stream platform.Stream
}

func (o *StreamSync) bound()       {}
func (o *StreamSync) Name() string { return o.Desc() }
func (o *StreamSync) Tag() Tag     { return TagStreamSync }
func (o *StreamSync) Desc() string { return fmt.Sprintf("stream_sync(%s)", o.Stream) }
func (o *StreamSync) Key() string  { return fmt.Sprintf("stream_sync:%d", o.Stream.ID) }

func (o *StreamSync) Equal(other Operation) bool {
	o2, ok := other.(*StreamSync)
	return ok && o2.Stream == o.Stream
}
func (o *StreamSync) Less(other Operation) bool { return lessByTagThenKey(o, other) }
func (o *StreamSync) Clone() Operation          { c := *o; return &c }
func (o *StreamSync) Run(p *platform.Platform) error {
	return p.CudaStream(o.Stream)
}
func (o *StreamSync) Fields() map[string]any {
	return map[string]any{"stream": o.Stream.ID}
}

// StreamWait is the composite convenience op the scheduler may insert
// directly instead of a separate record+wait pair: it records Event on
// Waitee then makes Waiter wait for it.
type StreamWait struct {
	Waitee platform.Stream
	Waiter platform.Stream
	Event  platform.Event
}

func (o *StreamWait) bound()       {}
func (o *StreamWait) Name() string { return o.Desc() }
func (o *StreamWait) Tag() Tag     { return TagStreamWait }
func (o *StreamWait) Desc() string {
	return fmt.Sprintf("stream_wait(%s waits on %s via %s)", o.Waiter, o.Waitee, o.Event)
}
func (o *StreamWait) Key() string {
	return fmt.Sprintf("stream_wait:%d:%d:%d", o.Waitee.ID, o.Waiter.ID, o.Event.ID)
}

func (o *StreamWait) Equal(other Operation) bool {
	o2, ok := other.(*StreamWait)
	return ok && o2.Waitee == o.Waitee && o2.Waiter == o.Waiter && o2.Event == o.Event
}
func (o *StreamWait) Less(other Operation) bool { return lessByTagThenKey(o, other) }
func (o *StreamWait) Clone() Operation          { c := *o; return &c }
func (o *StreamWait) Run(p *platform.Platform) error {
	rec := &CudaEventRecord{Event: o.Event, Stream: o.Waitee}
	if err := rec.Run(p); err != nil {
		return err
	}
	wait := &CudaStreamWaitEvent{Stream: o.Waiter, Event: o.Event}
	return wait.Run(p)
}
func (o *StreamWait) Fields() map[string]any {
	return map[string]any{"waitee": o.Waitee.ID, "waiter": o.Waiter.ID, "event": o.Event.ID}
}

// MatchesStreamWait reports whether a StreamWait already present in a
// sequence satisfies the same waitee/waiter/event relationship as a
// proposed record+wait pair — the Synchronizer treats the two as
// interchangeable evidence of synchronization, per spec.md §4.1 rule 2.
func MatchesStreamWait(sw *StreamWait, waitee, waiter platform.Stream, event platform.Event) bool {
	return sw.Waitee == waitee && sw.Waiter == waiter && sw.Event == event
}
