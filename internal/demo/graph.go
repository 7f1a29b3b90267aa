// Package demo builds the small heterogeneous operation graph the CLI
// runs the search against, in the absence of a spec-defined input file
// format (spec.md §6 documents the CLI as "present only for
// completeness" — real callers build their own graph and drive
// pkg/driver directly, as internal/cli does here).
package demo

import (
	"github.com/sandialabs/hetsched/pkg/graph"
	"github.com/sandialabs/hetsched/pkg/op"
)

// Graph builds a small CPU→GPU→MPI DAG: a host-side setup op feeds two
// independent GPU kernels, whose results are exchanged with a neighbor
// rank before a final host-side reduction. It uses CPU, GPU, Isend, Irecv
// and Wait operations; OwningWaitall and MultiWait do not appear in it.
func Graph() *graph.Graph[op.Operation] {
	setup := op.NewCpuOp("setup")
	kernelA := op.NewGpuOp("kernel_a")
	kernelB := op.NewGpuOp("kernel_b")
	send := op.NewIsend("exchange_send", 1, 0)
	recv := op.NewIrecv("exchange_recv", 1, 0)
	wait := op.NewWait("exchange_wait", "exchange_send")
	reduce := op.NewCpuOp("reduce")

	g := graph.New[op.Operation](setup)
	g.AddEdge(setup, kernelA)
	g.AddEdge(setup, kernelB)
	g.AddEdge(kernelA, send)
	g.AddEdge(kernelB, recv)
	g.AddEdge(send, wait)
	g.AddEdge(recv, wait)
	g.AddEdge(wait, reduce)
	return g
}
