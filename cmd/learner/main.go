// Command learner runs a single learner process. Delivered values are
// written to standard output, one per line, in instance order.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/paxoscore/multipaxos/internal/config"
	"github.com/paxoscore/multipaxos/internal/paxos"
	"github.com/paxoscore/multipaxos/internal/rolelog"
	"github.com/paxoscore/multipaxos/internal/transport"

	"github.com/google/uuid"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <uid> <config_file>\n", os.Args[0])
		os.Exit(1)
	}
	uid, err := strconv.Atoi(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid uid %q: %v\n", os.Args[1], err)
		os.Exit(1)
	}

	cfg, err := config.Load(os.Args[2])
	if err != nil {
		rolelog.New('L', uid).WithError(err).Fatal("failed to load config")
	}

	t, err := transport.NewUDPTransport(cfg.Learners.Address())
	if err != nil {
		rolelog.New('L', uid).WithError(err).Fatal("failed to bind learner socket")
	}

	l := paxos.NewLearner[uint64](
		uid,
		uuid.New(),
		t,
		cfg.Proposers.Address(),
		os.Stdout,
		rolelog.New('L', uid),
	)

	if err := l.Run(); err != nil {
		rolelog.New('L', uid).WithError(err).Fatal("learner stopped")
	}
}
