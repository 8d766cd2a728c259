// Command proposer runs a single proposer process: it reads its uid and a
// config file, binds its proposer group socket, and runs the Paxos proposer
// loop until the process is killed.
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
		rolelog.New('P', uid).WithError(err).Fatal("failed to load config")
	}

	t, err := transport.NewUDPTransport(cfg.Proposers.Address())
	if err != nil {
		rolelog.New('P', uid).WithError(err).Fatal("failed to bind proposer socket")
	}

	p := paxos.NewProposer[uint64](
		uid,
		uuid.New(),
		t,
		cfg.Proposers.Address(),
		cfg.Acceptors.Address(),
		cfg.Learners.Address(),
		cfg.Majority(),
		rolelog.New('P', uid),
	)

	if err := p.Run(); err != nil {
		rolelog.New('P', uid).WithError(err).Fatal("proposer stopped")
	}
}
