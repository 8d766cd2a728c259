package paxos

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/paxoscore/multipaxos/internal/transport"
	"github.com/paxoscore/multipaxos/internal/wire"
)

// Client is a thin producer: it sends one Request to the proposer group
// and returns. It never awaits a reply; retries, if wanted, are the
// surrounding harness's concern.
type Client[T comparable] struct {
	self          uuid.UUID
	transport     transport.GroupTransport
	proposerGroup transport.GroupAddress
	log           *logrus.Entry
}

func NewClient[T comparable](self uuid.UUID, t transport.GroupTransport, proposerGroup transport.GroupAddress, log *logrus.Entry) *Client[T] {
	return &Client[T]{self: self, transport: t, proposerGroup: proposerGroup, log: log}
}

// Propose sends value to the proposer group exactly once.
func (c *Client[T]) Propose(value T) error {
	msg := wire.NewRequest(value, c.self)
	frame, err := wire.Encode(msg)
	if err != nil {
		return errors.Wrap(err, "encode request")
	}
	if err := c.transport.Send(frame, c.proposerGroup); err != nil {
		return errors.Wrap(err, "send request")
	}
	c.log.Debugf("-> %s Request value=%v", c.proposerGroup, value)
	return nil
}
