package paxos

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/paxoscore/multipaxos/internal/rolelog"
	"github.com/paxoscore/multipaxos/internal/storage"
	"github.com/paxoscore/multipaxos/internal/transport"
	"github.com/paxoscore/multipaxos/internal/wire"
)

func newTestAcceptor(t *testing.T) (*Acceptor[uint64], *transport.Bus, transport.GroupAddress, *transport.MemoryTransport) {
	t.Helper()
	bus := transport.NewBus()
	proposerGroup := transport.GroupAddress{Host: "239.0.0.1", Port: 9000}
	listener := bus.Join(proposerGroup)
	acceptorTransport := bus.Join(transport.GroupAddress{Host: "239.0.0.2", Port: 9100})
	acc := NewAcceptor[uint64](1, uuid.New(), acceptorTransport, proposerGroup, storage.NewMemoryStore[uint64](), rolelog.New('A', 1))
	return acc, bus, proposerGroup, listener
}

func recvPromise(t *testing.T, listener *transport.MemoryTransport) wire.Promise[uint64] {
	t.Helper()
	frame, err := listener.Receive()
	require.NoError(t, err)
	msg, err := wire.Decode[uint64](frame)
	require.NoError(t, err)
	require.Equal(t, wire.PhasePromise, msg.Phase)
	return *msg.Promise
}

func recvAcceptance(t *testing.T, listener *transport.MemoryTransport) wire.Acceptance[uint64] {
	t.Helper()
	frame, err := listener.Receive()
	require.NoError(t, err)
	msg, err := wire.Decode[uint64](frame)
	require.NoError(t, err)
	require.Equal(t, wire.PhaseAcceptance, msg.Phase)
	return *msg.Acceptance
}

func TestAcceptorPromisesHigherRound(t *testing.T) {
	acc, _, _, listener := newTestAcceptor(t)
	proposer := uuid.New()

	acc.HandlePreparation(wire.Preparation{CRnd: 5, Sender: proposer, Instance: 1})

	promise := recvPromise(t, listener)
	require.Equal(t, uint64(5), promise.Rnd)
	require.Equal(t, uint64(0), promise.VRnd)
	require.Nil(t, promise.VVal)
	require.Equal(t, proposer, promise.Receiver)
	require.Equal(t, acc.self, promise.Sender)
	require.NotEqual(t, proposer, promise.Sender)
}

func TestAcceptorRejectsLowerPreparation(t *testing.T) {
	acc, _, _, listener := newTestAcceptor(t)
	proposer := uuid.New()

	acc.HandlePreparation(wire.Preparation{CRnd: 5, Sender: proposer, Instance: 1})
	recvPromise(t, listener)

	acc.HandlePreparation(wire.Preparation{CRnd: 3, Sender: proposer, Instance: 1})

	if _, ok := listener.TryReceive(); ok {
		t.Fatal("acceptor must not reply to a lower-numbered preparation")
	}
}

func TestAcceptorVotesAtOrAbovePromisedRound(t *testing.T) {
	acc, _, _, listener := newTestAcceptor(t)
	proposer := uuid.New()

	acc.HandlePreparation(wire.Preparation{CRnd: 5, Sender: proposer, Instance: 1})
	recvPromise(t, listener)

	acc.HandleProposal(wire.Proposal[uint64]{CRnd: 5, CVal: ptr(uint64(42)), Sender: proposer, Instance: 1})

	acceptance := recvAcceptance(t, listener)
	require.Equal(t, uint64(5), acceptance.VRnd)
	require.NotNil(t, acceptance.VVal)
	require.Equal(t, uint64(42), *acceptance.VVal)
}

func TestAcceptorRejectsProposalBelowPromise(t *testing.T) {
	acc, _, _, listener := newTestAcceptor(t)
	proposer := uuid.New()

	acc.HandlePreparation(wire.Preparation{CRnd: 5, Sender: proposer, Instance: 1})
	recvPromise(t, listener)

	acc.HandleProposal(wire.Proposal[uint64]{CRnd: 3, CVal: ptr(uint64(1)), Sender: proposer, Instance: 1})

	if _, ok := listener.TryReceive(); ok {
		t.Fatal("acceptor must not vote below its promised round")
	}
}

func TestAcceptorAcceptsAtExactlyPromisedRound(t *testing.T) {
	acc, _, _, listener := newTestAcceptor(t)
	proposer := uuid.New()

	acc.HandlePreparation(wire.Preparation{CRnd: 5, Sender: proposer, Instance: 1})
	recvPromise(t, listener)

	acc.HandleProposal(wire.Proposal[uint64]{CRnd: 5, CVal: ptr(uint64(7)), Sender: proposer, Instance: 1})
	acceptance := recvAcceptance(t, listener)
	require.Equal(t, uint64(7), *acceptance.VVal)
}

func ptr[T any](v T) *T { return &v }
