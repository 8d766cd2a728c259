// Command client sends one or more proposal values to the proposer group.
// With exactly <uid> and <config_file>, it reads values interactively from
// standard input, one per line, until EOF. Given additional positional
// arguments, it sends each of those values in order and exits.
package main

import (
	"bufio"
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
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <uid> <config_file> [value ...]\n", os.Args[0])
		os.Exit(1)
	}
	uid, err := strconv.Atoi(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid uid %q: %v\n", os.Args[1], err)
		os.Exit(1)
	}

	log := rolelog.New('C', uid)

	cfg, err := config.Load(os.Args[2])
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	t, err := transport.NewUDPTransport(cfg.Clients.Address())
	if err != nil {
		log.WithError(err).Fatal("failed to bind client socket")
	}

	c := paxos.NewClient[uint64](uuid.New(), t, cfg.Proposers.Address(), log)

	if len(os.Args) > 3 {
		for _, arg := range os.Args[3:] {
			value, err := strconv.ParseUint(arg, 10, 64)
			if err != nil {
				fmt.Fprintf(os.Stderr, "only unsigned integer proposals are supported: %v\n", err)
				os.Exit(1)
			}
			if err := c.Propose(value); err != nil {
				log.WithError(err).Fatal("propose failed")
			}
		}
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("Enter the proposal: ")
		if !scanner.Scan() {
			return
		}
		value, err := strconv.ParseUint(scanner.Text(), 10, 64)
		if err != nil {
			fmt.Fprintln(os.Stderr, "only unsigned integer proposals are supported")
			continue
		}
		if err := c.Propose(value); err != nil {
			log.WithError(err).Fatal("propose failed")
		}
	}
}
