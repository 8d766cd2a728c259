// Command acceptor runs a single acceptor process.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/paxoscore/multipaxos/internal/config"
	"github.com/paxoscore/multipaxos/internal/paxos"
	"github.com/paxoscore/multipaxos/internal/rolelog"
	"github.com/paxoscore/multipaxos/internal/storage"
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
		rolelog.New('A', uid).WithError(err).Fatal("failed to load config")
	}

	t, err := transport.NewUDPTransport(cfg.Acceptors.Address())
	if err != nil {
		rolelog.New('A', uid).WithError(err).Fatal("failed to bind acceptor socket")
	}

	a := paxos.NewAcceptor[uint64](
		uid,
		uuid.New(),
		t,
		cfg.Proposers.Address(),
		storage.NewMemoryStore[uint64](),
		rolelog.New('A', uid),
	)

	if err := a.Run(); err != nil {
		rolelog.New('A', uid).WithError(err).Fatal("acceptor stopped")
	}
}
