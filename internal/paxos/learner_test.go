package paxos

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/paxoscore/multipaxos/internal/rolelog"
	"github.com/paxoscore/multipaxos/internal/transport"
	"github.com/paxoscore/multipaxos/internal/wire"
)

func newTestLearner(t *testing.T) (*Learner[uint64], *bytes.Buffer, uuid.UUID) {
	t.Helper()
	bus := transport.NewBus()
	proposerGroup := transport.GroupAddress{Host: "239.0.0.1", Port: 9000}
	tr := bus.Join(transport.GroupAddress{Host: "239.0.0.4", Port: 9300})
	var out bytes.Buffer
	self := uuid.New()
	l := NewLearner[uint64](1, self, tr, proposerGroup, &out, rolelog.New('L', 1))
	return l, &out, self
}

func TestLearnerDeliversInOrder(t *testing.T) {
	l, out, _ := newTestLearner(t)

	l.handleLearning(wire.Learning[uint64]{LearnedValue: 42, Instance: 2})
	require.Empty(t, out.String(), "instance 2 must wait for instance 1")

	l.handleLearning(wire.Learning[uint64]{LearnedValue: 7, Instance: 1})
	require.Equal(t, "7\n42\n", out.String())
}

func TestLearnerDeduplicatesLearning(t *testing.T) {
	l, out, _ := newTestLearner(t)

	l.handleLearning(wire.Learning[uint64]{LearnedValue: 7, Instance: 1})
	l.handleLearning(wire.Learning[uint64]{LearnedValue: 7, Instance: 1})

	require.Equal(t, "7\n", out.String())
}

func TestLearnerMergesReportThenDelivers(t *testing.T) {
	l, out, self := newTestLearner(t)

	l.handleReport(wire.Report[uint64]{
		NumOfInstances: 1,
		LearnedValues:  map[uint64]uint64{1: 5},
		Receiver:       self,
	})
	require.Equal(t, "5\n", out.String())
}

func TestLearnerIgnoresReportAddressedElsewhere(t *testing.T) {
	l, out, _ := newTestLearner(t)

	l.handleReport(wire.Report[uint64]{
		LearnedValues: map[uint64]uint64{1: 5},
		Receiver:      uuid.New(),
	})
	require.Empty(t, out.String())
}
