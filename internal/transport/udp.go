package transport

import (
	"context"
	"net"
	"strconv"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"
)

// maxFrame bounds a single datagram. The reference substrate never sends
// anything close to this; it exists so Receive can size its buffer once.
const maxFrame = 16384

// UDPTransport joins an IPv4 multicast group with address reuse enabled, so
// that several role instances co-located on one host can all bind the same
// group port. Send addresses any group, including ones this transport did
// not join.
type UDPTransport struct {
	group GroupAddress
	conn  *net.UDPConn
	pconn *ipv4.PacketConn
}

// NewUDPTransport binds to group.Port with SO_REUSEADDR, joins the IPv4
// multicast group at group.Host on the default interface, and enables
// multicast loopback so same-host peers see each other's traffic.
func NewUDPTransport(group GroupAddress) (*UDPTransport, error) {
	lc := net.ListenConfig{Control: reuseAddrControl}
	pc, err := lc.ListenPacket(context.Background(), "udp4", net.JoinHostPort("", strconv.Itoa(group.Port)))
	if err != nil {
		return nil, errors.Wrapf(err, "listen on port %d", group.Port)
	}
	udpConn, ok := pc.(*net.UDPConn)
	if !ok {
		pc.Close()
		return nil, errors.New("listen config did not return a UDP connection")
	}

	pconn := ipv4.NewPacketConn(udpConn)
	groupAddr := &net.UDPAddr{IP: net.ParseIP(group.Host)}
	if err := pconn.JoinGroup(nil, groupAddr); err != nil {
		udpConn.Close()
		return nil, errors.Wrapf(err, "join multicast group %s", group.Host)
	}
	if err := pconn.SetMulticastLoopback(true); err != nil {
		udpConn.Close()
		return nil, errors.Wrap(err, "enable multicast loopback")
	}

	return &UDPTransport{group: group, conn: udpConn, pconn: pconn}, nil
}

func (t *UDPTransport) Send(frame []byte, group GroupAddress) error {
	addr := &net.UDPAddr{IP: net.ParseIP(group.Host), Port: group.Port}
	if _, err := t.conn.WriteTo(frame, addr); err != nil {
		return errors.Wrapf(err, "send to %s", group)
	}
	return nil
}

func (t *UDPTransport) Receive() ([]byte, error) {
	buf := make([]byte, maxFrame)
	n, _, err := t.conn.ReadFrom(buf)
	if err != nil {
		return nil, errors.Wrap(err, "receive")
	}
	return buf[:n], nil
}

func (t *UDPTransport) Close() error {
	return t.conn.Close()
}

// reuseAddrControl sets SO_REUSEADDR before bind, letting multiple
// processes on one host share the group's listening port. SO_REUSEPORT is
// not set.
func reuseAddrControl(_, _ string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
