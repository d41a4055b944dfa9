package zlink

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// ErrListenerClosed is a fatal Listener error: Serve stops accepting and
// returns once every in-flight connection goroutine has finished.
var ErrListenerClosed = errors.New("varlink: listener closed")

// Server multiplexes many Connections against a single Service: one
// goroutine per accepted Connection, each independently looping
// receive-call -> dispatch -> reply. Every live Connection makes forward
// progress bounded only by the Go runtime scheduler's own preemption and
// fairness guarantees, so no connection can starve the others the way an
// unfair single-threaded multiplexer could (see DESIGN.md for the
// reasoning behind this choice).
type Server struct {
	listener Listener
	service  *builtinService
	config   Config

	mu      sync.Mutex
	live    map[uint64]*Connection
	wg      sync.WaitGroup
	closing bool
}

// NewServer creates a Server that accepts Connections from l and dispatches
// Calls to svc.
func NewServer(l Listener, svc Service, opts ...Option) *Server {
	cfg := resolve(opts)
	return &Server{
		listener: l,
		service:  newBuiltinService(svc, cfg),
		config:   cfg,
		live:     make(map[uint64]*Connection),
	}
}

// Serve accepts Connections, spawning one goroutine per Connection, until
// Accept returns ErrListenerClosed or returns any error after ctx has been
// cancelled; a cancelled ctx does not by itself interrupt a blocked Accept.
// It returns once every spawned goroutine has finished.
func (s *Server) Serve(ctx context.Context) error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrListenerClosed) {
				s.wg.Wait()
				return nil
			}
			s.config.Logger.Warn().Err(err).Msg("varlink: accept failed")
			continue
		}

		s.mu.Lock()
		if s.closing {
			s.mu.Unlock()
			continue
		}
		s.live[conn.ID] = conn
		s.mu.Unlock()

		acceptLog := s.config.Logger.Debug().Uint64("conn", conn.ID)
		if conn.PeerPID >= 0 {
			acceptLog = acceptLog.Int("peer_uid", conn.PeerUID).Int("peer_gid", conn.PeerGID).Int("peer_pid", conn.PeerPID)
		}
		acceptLog.Msg("varlink: connection accepted")

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConnection(ctx, conn)
		}()
	}
}

// Shutdown makes Serve stop serving newly accepted Connections and waits,
// bounded by ctx, for every live connection goroutine to finish. Existing
// Connections keep being served, in-flight Multi pumps included, until the
// peer disconnects, a reply write fails, or Serve's ctx is cancelled.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) drop(conn *Connection) {
	s.mu.Lock()
	delete(s.live, conn.ID)
	s.mu.Unlock()
}

func (s *Server) serveConnection(ctx context.Context, conn *Connection) {
	defer s.drop(conn)
	logCtx := s.config.Logger.With().Uint64("conn", conn.ID).Str("trace", conn.TraceID.String())
	if conn.PeerPID >= 0 {
		logCtx = logCtx.Int("peer_uid", conn.PeerUID).Int("peer_gid", conn.PeerGID).Int("peer_pid", conn.PeerPID)
	}
	log := logCtx.Logger()

	for {
		if ctx.Err() != nil {
			return
		}

		call, err := conn.Read.ReceiveCall()
		if err != nil {
			if errors.Is(err, ErrDisconnected) {
				log.Debug().Msg("varlink: peer disconnected")
			} else {
				log.Warn().Err(err).Msg("varlink: receive failed")
			}
			return
		}

		log.Debug().Str("method", call.Method).Bool("oneway", call.Oneway).Bool("more", call.More).Msg("varlink: dispatching call")

		if err := s.dispatch(conn, call); err != nil {
			log.Warn().Err(err).Msg("varlink: reply failed, dropping connection")
			return
		}
	}
}

// dispatch validates call, invokes the Service, and writes the resulting
// reply (or reply stream) to conn. It returns non-nil only for a transport
// failure that should drop the connection.
//
// A Call with more than one of {Oneway, More, Upgrade} set never reaches
// here: Call.Validate rejects it as a ProtocolViolationError back in
// ReceiveCall, dropping the connection before dispatch is called.
func (s *Server) dispatch(conn *Connection, call *Call) error {
	if call.Upgrade {
		// Upgrade is reserved pass-through; the core has nothing to
		// upgrade to, so it is rejected rather than silently ignored.
		return s.writeReply(conn, call, ErrorReply(ErrInvalidParameter, InvalidParameterError{Parameter: "upgrade"}))
	}

	reply := s.service.Handle(call)

	if reply.seq != nil && !call.More {
		// The Service returned a Multi reply for a Call that never set
		// More=true: synthesize the standard error instead.
		reply = ErrorReply(ErrExpectedMore, ExpectedMoreError{})
	}

	return s.writeReply(conn, call, reply)
}

// writeReply writes a MethodReply to conn, pumping a Multi sequence to
// completion if present. Oneway calls discard every reply (including a
// Multi terminator) but the sequence is still drained so any side effects
// in the handler complete deterministically, per the oneway contract.
func (s *Server) writeReply(conn *Connection, call *Call, reply MethodReply) error {
	switch {
	case reply.seq != nil:
		for {
			params, ok, err := reply.seq.Next()
			if err != nil {
				if call.Oneway {
					return nil
				}
				return conn.Write.SendError(ErrMethodNotImplemented, MethodNotImplementedError{Method: call.Method})
			}
			if !ok {
				break
			}
			if call.Oneway {
				continue
			}
			params, merr := marshalOrNil(params)
			if merr != nil {
				panic(merr)
			}
			if err := conn.Write.SendReply(&Reply{Parameters: params, Continues: true}); err != nil {
				return err
			}
		}
		if call.Oneway {
			return nil
		}
		return conn.Write.SendReply(terminator())

	case reply.err != nil:
		if call.Oneway {
			return nil
		}
		return conn.Write.SendError(reply.err.name, reply.err.params)

	default:
		if call.Oneway {
			return nil
		}
		params, merr := marshalOrNil(reply.single)
		if merr != nil {
			panic(merr)
		}
		return conn.Write.SendReply(&Reply{Parameters: params})
	}
}

// marshalOrNil marshals v, or returns a nil RawMessage (omitted on the
// wire) when v is nil.
func marshalOrNil(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
