package rankio

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/sandialabs/hetsched/pkg/schederr"
)

// TCPComm is a real multi-process communicator: rank 0 listens and every
// other rank dials in, mirroring the star topology MPI_COMM_WORLD gives the
// root in original_source/src/mcts.cpp's mpi_bcast. It only ever moves the
// one message mpi_bcast moves — the chosen order's operation names — so it
// does not attempt to be a general MPI replacement.
type TCPComm struct {
	rank  int
	size  int
	conns []net.Conn // rank 0: conns[r] for r in [1,size); other ranks: conns[0] only
}

// ListenTCPComm is called by rank 0. It listens on addr and blocks until
// size-1 other ranks have connected and announced their rank.
func ListenTCPComm(size int, addr string) (*TCPComm, error) {
	if size < 1 {
		return nil, schederr.NewConfigError("rankio.ListenTCPComm", fmt.Errorf("size must be >= 1, got %d", size))
	}
	c := &TCPComm{rank: 0, size: size, conns: make([]net.Conn, size)}
	if size == 1 {
		return c, nil
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, schederr.NewRuntimeFailure("rankio.ListenTCPComm", err)
	}
	defer ln.Close()

	for accepted := 0; accepted < size-1; accepted++ {
		conn, err := ln.Accept()
		if err != nil {
			return nil, schederr.NewRuntimeFailure("rankio.ListenTCPComm", err)
		}
		var rank int32
		if err := binary.Read(conn, binary.BigEndian, &rank); err != nil {
			return nil, schederr.NewRuntimeFailure("rankio.ListenTCPComm", err)
		}
		if rank < 1 || int(rank) >= size || c.conns[rank] != nil {
			return nil, schederr.NewConfigError("rankio.ListenTCPComm", fmt.Errorf("bad or duplicate announced rank %d", rank))
		}
		c.conns[rank] = conn
	}
	return c, nil
}

// DialTCPComm is called by every rank other than 0. It connects to addr
// (rank 0's listen address) and announces its own rank.
func DialTCPComm(rank, size int, addr string) (*TCPComm, error) {
	if rank < 1 || rank >= size {
		return nil, schederr.NewConfigError("rankio.DialTCPComm", fmt.Errorf("rank must be in [1,%d), got %d", size, rank))
	}
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, schederr.NewRuntimeFailure("rankio.DialTCPComm", err)
	}
	if err := binary.Write(conn, binary.BigEndian, int32(rank)); err != nil {
		return nil, schederr.NewRuntimeFailure("rankio.DialTCPComm", err)
	}
	conns := make([]net.Conn, size)
	conns[0] = conn
	return &TCPComm{rank: rank, size: size, conns: conns}, nil
}

func (c *TCPComm) Rank() int { return c.rank }
func (c *TCPComm) Size() int { return c.size }

// Close closes every connection this rank holds.
func (c *TCPComm) Close() error {
	var first error
	for _, conn := range c.conns {
		if conn == nil {
			continue
		}
		if err := conn.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// BroadcastNames implements Broadcaster over the TCP star topology: rank 0
// writes the wire-format message to every other rank's connection in
// turn; every other rank reads the same message off its connection to
// rank 0.
func (c *TCPComm) BroadcastNames(names []string) ([]string, error) {
	if c.rank == 0 {
		for r := 1; r < c.size; r++ {
			if err := writeNames(c.conns[r], names); err != nil {
				return nil, schederr.NewRuntimeFailure("rankio.BroadcastNames", err)
			}
		}
		return names, nil
	}

	got, err := readNames(c.conns[0])
	if err != nil {
		return nil, schederr.NewRuntimeFailure("rankio.BroadcastNames", err)
	}
	return got, nil
}

// writeNames sends the wire format mpi_bcast uses: an int32 count, then one
// int32 per name giving its byte length, then the names' bytes
// concatenated with no separators.
func writeNames(w io.Writer, names []string) error {
	if err := binary.Write(w, binary.BigEndian, int32(len(names))); err != nil {
		return err
	}
	for _, n := range names {
		if err := binary.Write(w, binary.BigEndian, int32(len(n))); err != nil {
			return err
		}
	}
	for _, n := range names {
		if _, err := w.Write([]byte(n)); err != nil {
			return err
		}
	}
	return nil
}

func readNames(r io.Reader) ([]string, error) {
	var count int32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, err
	}
	lengths := make([]int32, count)
	for i := range lengths {
		if err := binary.Read(r, binary.BigEndian, &lengths[i]); err != nil {
			return nil, err
		}
	}
	names := make([]string, count)
	for i, l := range lengths {
		buf := make([]byte, l)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		names[i] = string(buf)
	}
	return names, nil
}
