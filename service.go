package zlink

// ReplySequence is the lazy sequence of successive ReplySuccess values a
// Multi MethodReply yields. The Server pumps it to completion;
// it is never exposed to a handler's caller directly. Implementations
// should be cheap to abandon: Next will not be called again once the Server
// stops pumping (a failed write to the peer), and no cleanup beyond normal
// garbage collection is guaranteed.
type ReplySequence interface {
	// Next returns the next reply parameters, or ok=false once the
	// sequence is exhausted. An error ends the stream immediately; the
	// Server then writes an org.varlink.service.MethodNotImplemented error
	// reply in place of the continues=false terminator frame.
	Next() (params any, ok bool, err error)
}

// SliceSequence adapts a pre-computed slice of reply parameters into a
// ReplySequence, for handlers whose stream is not actually lazy.
type SliceSequence struct {
	values []any
	i      int
}

// NewSliceSequence wraps values as a ReplySequence.
func NewSliceSequence(values ...any) *SliceSequence {
	return &SliceSequence{values: values}
}

// Next implements ReplySequence.
func (s *SliceSequence) Next() (any, bool, error) {
	if s.i >= len(s.values) {
		return nil, false, nil
	}
	v := s.values[s.i]
	s.i++
	return v, true, nil
}

// FuncSequence adapts a generator function into a ReplySequence.
type FuncSequence func() (params any, ok bool, err error)

// Next implements ReplySequence.
func (f FuncSequence) Next() (any, bool, error) { return f() }

// MethodReply is the result a Service.Handle call returns: one
// of Single, Error, or Multi should be set, enforced by construction via
// SingleReply / ErrorReply / MultiReply rather than by a sum-type field
// check, since Go has no tagged unions.
type MethodReply struct {
	single any
	err    *wireError
	seq    ReplySequence
}

type wireError struct {
	name   string
	params any
}

// SingleReply constructs a terminal, one-shot success reply. params may be
// nil for a reply with no parameters.
func SingleReply(params any) MethodReply {
	return MethodReply{single: params}
}

// ErrorReply constructs a terminal error reply. name must be the
// interface-dotted error name; for built-in errors pass one of the Err*
// name constants (e.g. ErrMethodNotFound) with its payload type.
func ErrorReply(name string, params any) MethodReply {
	return MethodReply{err: &wireError{name: name, params: params}}
}

// MultiReply constructs a streaming reply: the Server pumps seq, writing
// each value with continues=true, then writes the continues=false
// terminator. Only valid when the originating Call had More=true; the
// Server enforces this.
func MultiReply(seq ReplySequence) MethodReply {
	return MethodReply{seq: seq}
}

// Service is a user-implemented dispatch target: one Call maps to one
// MethodReply. Implementations are typically generated by
// cmd/varlinkgen from a varlinkdef.Interface, but any type satisfying this
// interface is an equally valid core Service.
type Service interface {
	// Handle dispatches a single Call and returns its MethodReply. If the
	// Call's Oneway flag is set, the Server discards whatever MethodReply
	// is returned; Handle may detect Oneway on the Call and short-circuit.
	Handle(call *Call) MethodReply

	// Interfaces lists the interface names this Service implements,
	// excluding "org.varlink.service" itself, for GetInfo.
	Interfaces() []string

	// InterfaceDescription returns the IDL text for name, or
	// ("", false) if this Service does not implement it.
	InterfaceDescription(name string) (string, bool)
}
