// Package node wires a full local cluster together over an in-memory bus,
// for the simulator binary and for tests that want every role running in
// one process without touching real sockets.
package node

import (
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/paxoscore/multipaxos/internal/paxos"
	"github.com/paxoscore/multipaxos/internal/rolelog"
	"github.com/paxoscore/multipaxos/internal/storage"
	"github.com/paxoscore/multipaxos/internal/transport"
)

// Topology names the three multicast groups a cluster communicates over.
type Topology struct {
	Proposers transport.GroupAddress
	Acceptors transport.GroupAddress
	Learners  transport.GroupAddress
}

// Cluster holds every role instance for a local run. Every role joins its
// group during NewCluster, before any of them can send a byte; Start only
// then launches their message loops, so no role's first CatchUp can race
// a peer that hasn't bound its socket yet.
type Cluster struct {
	bus      *transport.Bus
	topology Topology

	proposers []*paxos.Proposer[uint64]
	acceptors []*paxos.Acceptor[uint64]
	learners  []*paxos.Learner[uint64]
}

// NewCluster allocates a cluster over a fresh in-memory bus. numProposers,
// numAcceptors and numLearners size each role group; out is where every
// learner in the cluster writes delivered values. All learners share out,
// so their lines are interleaved with nothing marking which learner wrote
// each one.
func NewCluster(topology Topology, numProposers, numAcceptors, numLearners int, out io.Writer) *Cluster {
	c := &Cluster{bus: transport.NewBus(), topology: topology}
	majority := paxos.Majority(numAcceptors)

	for i := 1; i <= numProposers; i++ {
		t := c.bus.Join(topology.Proposers)
		p := paxos.NewProposer[uint64](i, uuid.New(), t, topology.Proposers, topology.Acceptors, topology.Learners, majority, rolelog.New('P', i))
		c.proposers = append(c.proposers, p)
	}

	for i := 1; i <= numAcceptors; i++ {
		t := c.bus.Join(topology.Acceptors)
		a := paxos.NewAcceptor[uint64](i, uuid.New(), t, topology.Proposers, storage.NewMemoryStore[uint64](), rolelog.New('A', i))
		c.acceptors = append(c.acceptors, a)
	}

	for i := 1; i <= numLearners; i++ {
		t := c.bus.Join(topology.Learners)
		l := paxos.NewLearner[uint64](i, uuid.New(), t, topology.Proposers, out, rolelog.New('L', i))
		c.learners = append(c.learners, l)
	}

	return c
}

// Start runs every role's message loop in its own goroutine. Every
// goroutine blocks on a shared barrier until all of them (and only them)
// have been launched, so no proposer's initial CatchUp, and no acceptor's
// or learner's first receive, can race a sibling that hasn't started
// running yet. It does not block the caller; errors surfacing from a
// role's Run are logged on logrus's standard logger, naming only the kind
// of role, and otherwise swallowed, matching how a standalone binary would report them (the
// process that owns that role would exit, but one goroutine dying inside
// the simulator shouldn't take the others down with it).
func (c *Cluster) Start() {
	n := len(c.proposers) + len(c.acceptors) + len(c.learners)
	var barrier sync.WaitGroup
	barrier.Add(n)

	run := func(loop func() error, onErr func(error)) {
		go func() {
			barrier.Done()
			barrier.Wait()
			if err := loop(); err != nil {
				onErr(err)
			}
		}()
	}

	for _, p := range c.proposers {
		p := p
		run(p.Run, func(err error) { logrus.WithError(err).Error("proposer stopped") })
	}
	for _, a := range c.acceptors {
		a := a
		run(a.Run, func(err error) { logrus.WithError(err).Error("acceptor stopped") })
	}
	for _, l := range c.learners {
		l := l
		run(l.Run, func(err error) { logrus.WithError(err).Error("learner stopped") })
	}
}

// Client returns a fresh client joined to the cluster's bus, addressed at
// its proposer group.
func (c *Cluster) Client() *paxos.Client[uint64] {
	t := c.bus.Join(c.topology.Proposers)
	return paxos.NewClient[uint64](uuid.New(), t, c.topology.Proposers, rolelog.New('C', 0))
}
