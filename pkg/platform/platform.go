// Package platform models the execution platform the scheduler plans
// against: a monotonically growing pool of stream and event handles, plus
// the MPI communicator rank/size a run was launched with. The platform
// itself never runs an operation; it only hands out and resolves handles.
package platform

import (
	"fmt"

	"github.com/sandialabs/hetsched/pkg/schederr"
)

// Stream is an opaque handle to an ordered queue of accelerator work.
// Operations issued to the same stream execute in issue order; streams
// execute concurrently with one another.
type Stream struct {
	ID uint32
}

// Event is an opaque handle used to synchronize across streams, or between
// a stream and the CPU.
type Event struct {
	ID uint32
}

func (s Stream) String() string { return fmt.Sprintf("stream%d", s.ID) }
func (e Event) String() string  { return fmt.Sprintf("event%d", e.ID) }

// Comm describes the minimal rank/size a Platform needs from the MPI
// communicator it was constructed with. rankio.Comm implements it.
type Comm interface {
	Rank() int
	Size() int
}

// Platform owns the physical lifetime of stream and event handles. Handles
// are issued monotonically and never freed until the Platform itself is
// discarded; only the event allocator's cursor is reset between playouts
// via ResetDynamicResources, so the same physical events are reused across
// simulated runs without ever reallocating them.
type Platform struct {
	comm Comm

	streams  []Stream
	events   []Event
	iEvent   int // next free index into events; events[:iEvent] are "in use" this playout
	cStreams int // streams allocated at construction time, index 0 is the default stream
}

// NewPlatform constructs a Platform with a single default stream (index 0)
// bound to the given communicator.
func NewPlatform(comm Comm) *Platform {
	p := &Platform{comm: comm}
	p.streams = append(p.streams, Stream{ID: 0})
	p.cStreams = 1
	return p
}

// MakeNStreams constructs a Platform pre-seeded with n streams (n >= 1).
func MakeNStreams(n int, comm Comm) (*Platform, error) {
	if n < 1 {
		return nil, schederr.NewConfigError("platform", fmt.Errorf("need at least 1 stream, got %d", n))
	}
	p := NewPlatform(comm)
	for i := 1; i < n; i++ {
		p.NewStream()
	}
	return p, nil
}

// Comm returns the communicator this platform was constructed with.
func (p *Platform) Comm() Comm { return p.comm }

// NumStreams returns the number of streams currently allocated.
func (p *Platform) NumStreams() int { return len(p.streams) }

// NumEvents returns the number of event handles ever allocated (not just
// those currently "in use" this playout).
func (p *Platform) NumEvents() int { return len(p.events) }

// NewStream allocates and returns a fresh stream handle.
func (p *Platform) NewStream() Stream {
	s := Stream{ID: uint32(len(p.streams))}
	p.streams = append(p.streams, s)
	return s
}

// NewEvent allocates (or reuses, if the dynamic pool was reset and has
// spare capacity) the next event handle.
func (p *Platform) NewEvent() Event {
	if p.iEvent < len(p.events) {
		e := p.events[p.iEvent]
		p.iEvent++
		return e
	}
	e := Event{ID: uint32(len(p.events))}
	p.events = append(p.events, e)
	p.iEvent++
	return e
}

// CudaStream validates and resolves a Stream handle. A Stream obtained from
// this Platform is always valid; a handle from another Platform, or one
// fabricated out of band, fails validation.
func (p *Platform) CudaStream(s Stream) error {
	if int(s.ID) >= len(p.streams) {
		return schederr.NewConfigError("platform", fmt.Errorf("stream %d out of range, have %d streams", s.ID, len(p.streams)))
	}
	return nil
}

// CudaEvent validates an Event handle against the total pool: a handle
// from another Platform, or one fabricated out of band, fails validation.
// It does not consult the dynamic-reuse cursor (iEvent) — that cursor
// only governs NewEvent's allocate-or-reuse choice during frontier
// construction, not whether a given, already-resolved ordering's embedded
// event IDs remain valid across the repeated ResetDynamicResources calls
// a Benchmarker makes between runs of the same ordering.
func (p *Platform) CudaEvent(e Event) error {
	if int(e.ID) >= len(p.events) {
		return schederr.NewConfigError("platform", fmt.Errorf("event %d never allocated", e.ID))
	}
	return nil
}

// ResetDynamicResources returns the event allocator's cursor to zero so the
// same physical event handles are reused by the next playout. Streams are
// never reset; they are considered part of the fixed platform topology for
// the duration of a search.
func (p *Platform) ResetDynamicResources() {
	p.iEvent = 0
}

// Streams returns a copy of the currently allocated stream handles.
func (p *Platform) Streams() []Stream {
	out := make([]Stream, len(p.streams))
	copy(out, p.streams)
	return out
}
