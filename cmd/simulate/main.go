// Command simulate runs a full Multi-Paxos cluster in a single process over an
// in-memory bus: a handful of proposers, acceptors and learners, fed by one
// client, with no sockets involved. It takes no arguments.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/paxoscore/multipaxos/internal/node"
	"github.com/paxoscore/multipaxos/internal/transport"
)

const (
	numProposers = 2
	numAcceptors = 3
	numLearners  = 2
)

func main() {
	topology := node.Topology{
		Proposers: transport.GroupAddress{Host: "239.1.1.1", Port: 9000},
		Acceptors: transport.GroupAddress{Host: "239.1.1.2", Port: 9001},
		Learners:  transport.GroupAddress{Host: "239.1.1.3", Port: 9002},
	}

	cluster := node.NewCluster(topology, numProposers, numAcceptors, numLearners, os.Stdout)
	cluster.Start()

	client := cluster.Client()
	values := []uint64{7, 42, 9}
	for _, v := range values {
		if err := client.Propose(v); err != nil {
			fmt.Fprintf(os.Stderr, "propose %d: %v\n", v, err)
			os.Exit(1)
		}
		time.Sleep(50 * time.Millisecond)
	}

	// give the cluster time to finish delivering before the process exits.
	time.Sleep(250 * time.Millisecond)
}
