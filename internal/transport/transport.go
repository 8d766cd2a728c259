// Package transport implements the group transport the core consumes: a
// fire-and-forget send to a named group address and a blocking receive of
// whatever arrives. It makes no ordering, delivery, or uniqueness
// guarantees; see the UDP multicast and in-memory implementations.
package transport

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by Receive once the transport has been closed.
var ErrClosed = errors.New("transport: closed")

// GroupAddress names a role's shared group: a host/port pair that every
// peer in the role joins (UDP multicast) or registers under (in-memory).
type GroupAddress struct {
	Host string
	Port int
}

func (g GroupAddress) String() string {
	return fmt.Sprintf("%s:%d", g.Host, g.Port)
}

// GroupTransport is the narrow interface the core depends on. send is
// best-effort and never blocks on delivery; receive blocks until exactly
// one frame is available.
type GroupTransport interface {
	Send(frame []byte, group GroupAddress) error
	Receive() ([]byte, error)
	Close() error
}
