package zlink

import (
	"encoding/json"
	"fmt"
)

// Proxy is the typed client wrapper around a Connection: the
// Immediate form sends one Call and waits for its Reply, while Chain builds
// a pipelined batch.
type Proxy struct {
	conn   *Connection
	config Config
}

// NewProxy wraps sock as a Connection built per the resolved Config's
// Profile/CapacityClass, and returns a Proxy over it.
func NewProxy(sock Socket, opts ...Option) *Proxy {
	cfg := resolve(opts)
	conn := NewConnection(sock, cfg.CapacityClass, cfg.Profile == ProfileFixed)
	return &Proxy{conn: conn, config: cfg}
}

// Connection returns the Connection this Proxy wraps, e.g. to inspect its
// PeerUID/PeerGID/PeerPID or TraceID.
func (p *Proxy) Connection() *Connection { return p.conn }

// Call performs the Immediate form: send a Call for method, receive the
// next Reply frame, and decode it into out (ignored if nil). userErr, if
// non-nil, receives a freshly zeroed instance of the user's error type to
// populate on a user-error reply; pass nil when the method declares no
// errors of its own.
//
// Returns a *ServiceError for a built-in error, the populated userErr
// (as an error) for a recognized user error, or a transport/parse error
// for anything else.
func (p *Proxy) Call(method string, params, out any, userErr any) error {
	call := &Call{Method: method}
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return &FrameMalformedError{Err: err}
		}
		call.Parameters = b
	}
	if err := p.conn.Write.SendCall(call); err != nil {
		return err
	}

	reply, err := p.conn.Read.ReceiveReply()
	if err != nil {
		return err
	}
	return decodeReply(reply, out, userErr)
}

// CallOneway performs a fire-and-forget call: no reply is read.
func (p *Proxy) CallOneway(method string, params any) error {
	call := &Call{Method: method, Oneway: true}
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return &FrameMalformedError{Err: err}
		}
		call.Parameters = b
	}
	return p.conn.Write.SendCall(call)
}

// CallMore performs a streaming call: it sends Call with More=true and
// returns a Stream that yields successive replies until the continues=false
// terminator.
func (p *Proxy) CallMore(method string, params any) (*Stream, error) {
	call := &Call{Method: method, More: true}
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return nil, &FrameMalformedError{Err: err}
		}
		call.Parameters = b
	}
	if err := p.conn.Write.SendCall(call); err != nil {
		return nil, err
	}
	return &Stream{conn: p.conn}, nil
}

// Stream reads successive replies to a More=true Call.
type Stream struct {
	conn   *Connection
	closed bool
}

// Next decodes the next reply into out and userErr (as Call does), and
// reports whether another reply is expected after this one.
func (s *Stream) Next(out, userErr any) (more bool, err error) {
	if s.closed {
		return false, fmt.Errorf("varlink: stream already closed")
	}
	reply, err := s.conn.Read.ReceiveReply()
	if err != nil {
		s.closed = true
		return false, err
	}
	if !reply.Continues {
		s.closed = true
	}
	if err := decodeReply(reply, out, userErr); err != nil {
		return false, err
	}
	return reply.Continues, nil
}

func decodeReply(reply *Reply, out, userErr any) error {
	if reply.IsError() {
		if serr, ok := decodeServiceError(reply); ok {
			return serr
		}
		if userErr != nil {
			if len(reply.Parameters) > 0 {
				if err := json.Unmarshal(reply.Parameters, userErr); err != nil {
					return &FrameMalformedError{Err: err}
				}
			}
			if e, ok := userErr.(error); ok {
				return e
			}
		}
		return &UserError{Name: reply.Error, Parameters: reply.Parameters}
	}

	if out != nil && len(reply.Parameters) > 0 {
		if err := json.Unmarshal(reply.Parameters, out); err != nil {
			return &FrameMalformedError{Err: err}
		}
	}
	return nil
}
