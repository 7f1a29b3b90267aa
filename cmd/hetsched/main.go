// Command hetsched runs the MCTS scheduler against a small demonstration
// operation graph. The CLI surface itself is present only for
// completeness (spec.md §6) — embedding callers are expected to build
// their own graph of op.Operation values and drive pkg/driver directly;
// this binary exists so the --iters/--streams/--seed/--strategy/--replay
// flags have somewhere to attach.
package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sandialabs/hetsched/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		logrus.WithError(err).Error("hetsched exited with an error")
		os.Exit(1)
	}
}
