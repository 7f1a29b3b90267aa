// Package rankio implements the Comm contract platform.Platform needs
// from its communicator, and the rank-0-broadcasts-names-only wire
// protocol spec.md §6 defines, grounded in
// original_source/src/mcts.cpp's mpi_bcast: an int32 count, N int32 name
// lengths, then the concatenated name bytes. It moves names only — never
// operations — so it stays decoupled from pkg/op and pkg/seq; the driver
// is responsible for turning a received name list back into a Sequence by
// walking its own copy of the graph and platform.
package rankio

// LocalComm is the single-process communicator: rank 0 of size 1. It is
// the Comm every non-MPI test and single-rank CLI invocation constructs
// its Platform with.
type LocalComm struct{}

func (LocalComm) Rank() int { return 0 }
func (LocalComm) Size() int { return 1 }

// Broadcaster moves the chosen order's operation names from rank 0 to
// every other rank, per spec.md §6's broadcast wire format. Called by
// every rank once per MCTS iteration.
type Broadcaster interface {
	// BroadcastNames is called with the chosen order's names on rank 0;
	// the argument is ignored on every other rank. Every rank, including
	// rank 0, gets back the same name list.
	BroadcastNames(names []string) ([]string, error)
}
