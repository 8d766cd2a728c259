package paxos

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/paxoscore/multipaxos/internal/rolelog"
	"github.com/paxoscore/multipaxos/internal/transport"
	"github.com/paxoscore/multipaxos/internal/wire"
)

func TestClientProposeSendsRequestOnce(t *testing.T) {
	bus := transport.NewBus()
	proposerGroup := transport.GroupAddress{Host: "239.0.0.9", Port: 9500}
	listener := bus.Join(proposerGroup)
	self := uuid.New()

	c := NewClient[uint64](self, bus.Join(proposerGroup), proposerGroup, rolelog.New('C', 1))
	require.NoError(t, c.Propose(7))

	frame, err := listener.Receive()
	require.NoError(t, err)
	msg, err := wire.Decode[uint64](frame)
	require.NoError(t, err)
	require.Equal(t, wire.PhaseRequest, msg.Phase)
	require.Equal(t, uint64(7), msg.Request.Value)
	require.Equal(t, self, msg.Request.Sender)

	if _, ok := listener.TryReceive(); ok {
		t.Fatal("Propose must send exactly one Request")
	}
}
