package zlink

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// connIDCounter is the only process-wide mutable state in the core: a
// monotonic counter whose values carry no correctness weight, used only
// for observability.
var connIDCounter uint64

func nextConnID() uint64 {
	return atomic.AddUint64(&connIDCounter, 1)
}

// Connection joins a read half and a write half under a unique connection
// identity.
type Connection struct {
	// ID is a process-local monotonic identity, cheap to use as a map key.
	ID uint64
	// TraceID is a process-wide-unique identity suitable for correlating
	// this Connection's log lines across services, since ID is only
	// unique within one running process.
	TraceID uuid.UUID
	Read    *ReadConnection
	Write   *WriteConnection

	// PeerUID, PeerGID, PeerPID hold the originating Socket's
	// PeerCredentials, or -1 when the Socket does not implement
	// PeerCredentials or the lookup failed.
	PeerUID int
	PeerGID int
	PeerPID int
}

// NewConnection wraps a Socket, allocating a fresh connection id and a
// Buffer for the read half. If sock implements PeerCredentials, the result
// is probed eagerly and attached to the Connection.
func NewConnection(sock Socket, class CapacityClass, fixed bool) *Connection {
	buf := NewBuffer(class, fixed)
	conn := &Connection{
		ID:      nextConnID(),
		TraceID: uuid.New(),
		Read:    NewReadConnection(sock.ReadHalf(), buf),
		Write:   NewWriteConnection(sock.WriteHalf()),
		PeerUID: -1,
		PeerGID: -1,
		PeerPID: -1,
	}
	if pc, ok := sock.(PeerCredentials); ok {
		if uid, gid, pid, err := pc.PeerCredentials(); err == nil {
			conn.PeerUID, conn.PeerGID, conn.PeerPID = uid, gid, pid
		}
	}
	return conn
}

// NewConnectionWithOptions builds a Connection the same way NewConnection
// does, deriving its Buffer policy from opts (WithProfile/WithCapacityClass)
// instead of explicit class/fixed arguments. Listener implementations in
// transport packages use this so they expose the same Option surface
// NewServer/NewProxy do, rather than a parallel class/fixed parameter pair.
func NewConnectionWithOptions(sock Socket, opts ...Option) *Connection {
	cfg := resolve(opts)
	return NewConnection(sock, cfg.CapacityClass, cfg.Profile == ProfileFixed)
}

// Split yields the connection id alongside the two halves, for use in
// separate goroutines; the halves themselves carry no id, so a caller that
// logs from both passes the id along with each. Merging the halves back
// together is not required or supported.
func (c *Connection) Split() (id uint64, r *ReadConnection, w *WriteConnection) {
	return c.ID, c.Read, c.Write
}
