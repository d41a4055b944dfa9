// Package streamsock adapts a net.Conn (TCP or Unix stream socket) into a
// zlink.Socket. It is intentionally thin: the core owns all framing and
// buffering, this package only splits a net.Conn into independently usable
// halves.
package streamsock

import (
	"bufio"
	"errors"
	"net"

	"github.com/zeenix/zlink"
)

// Socket wraps a net.Conn as a zlink.Socket.
type Socket struct {
	conn net.Conn
	w    *bufio.Writer
}

// New wraps conn. The caller remains responsible for conn.Close(); zlink
// never closes a Socket itself: socket lifecycle is external.
func New(conn net.Conn) *Socket {
	return &Socket{conn: conn, w: bufio.NewWriter(conn)}
}

// ReadHalf implements zlink.Socket.
func (s *Socket) ReadHalf() zlink.ReadHalf { return s.conn }

// WriteHalf implements zlink.Socket, flushing the bufio.Writer on Flush.
func (s *Socket) WriteHalf() zlink.WriteHalf { return zlink.NewWriteHalf(s.w) }

// Conn returns the underlying net.Conn, e.g. to query peer credentials on a
// *net.UnixConn or to Close() it.
func (s *Socket) Conn() net.Conn { return s.conn }

// PeerCredentials implements zlink.PeerCredentials for a Socket backed by a
// *net.UnixConn. Socket always satisfies the interface; the call itself
// fails when conn is not a Unix domain socket or the platform has no
// SO_PEERCRED-style lookup.
func (s *Socket) PeerCredentials() (uid, gid, pid int, err error) {
	uc, ok := s.conn.(*net.UnixConn)
	if !ok {
		return 0, 0, 0, errNotUnixConn
	}
	return unixPeerCredentials(uc)
}

// Listener adapts a net.Listener into a zlink.Listener by wrapping each
// accepted net.Conn as a Socket via zlink.SocketListener. opts configures
// the Buffer policy (zlink.WithProfile/WithCapacityClass) applied to every
// accepted Connection; it is resolved on each accept.
func Listener(ln net.Listener, opts ...zlink.Option) zlink.Listener {
	return &zlink.SocketListener{
		Opts: opts,
		Accepter: func() (zlink.Socket, error) {
			conn, err := ln.Accept()
			if err != nil {
				if ne, ok := err.(net.Error); ok && !ne.Temporary() {
					return nil, zlink.ErrListenerClosed
				}
				return nil, err
			}
			return New(conn), nil
		},
	}
}

var errNotUnixConn = errors.New("streamsock: peer credentials require a *net.UnixConn")
