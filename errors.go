package zlink

import (
	"errors"
	"fmt"
)

// ErrDisconnected is returned when the peer closed the connection cleanly,
// either before any frame was read or in between frames.
var ErrDisconnected = errors.New("varlink: disconnected")

// ErrPipeliningDisabled is returned by Chain.Send when the Proxy was built
// with WithPipelining(false); the Chain.Add/AddOneway calls preceding it
// enqueue nothing.
var ErrPipeliningDisabled = errors.New("varlink: pipelining disabled by Config")

// BufferOverflowError is returned by a fixed-capacity Buffer when a frame
// would not fit before a NUL terminator is found.
type BufferOverflowError struct {
	Capacity int
}

func (err *BufferOverflowError) Error() string {
	return fmt.Sprintf("varlink: frame exceeds buffer capacity (%d bytes)", err.Capacity)
}

// FrameMalformedError wraps a JSON decoding failure, or a frame that does
// not fit the Call/Reply schema.
type FrameMalformedError struct {
	Frame []byte
	Err   error
}

func (err *FrameMalformedError) Error() string {
	return fmt.Sprintf("varlink: malformed frame: %v", err.Err)
}

func (err *FrameMalformedError) Unwrap() error {
	return err.Err
}

// ProtocolViolationError is returned when a well-formed frame violates a
// semantic rule of the protocol.
type ProtocolViolationError struct {
	Reason string
}

func (err *ProtocolViolationError) Error() string {
	return "varlink: protocol violation: " + err.Reason
}

// IoError wraps a transport read/write/flush failure. The connection that
// produced it is no longer usable.
type IoError struct {
	Op  string
	Err error
}

func (err *IoError) Error() string {
	return fmt.Sprintf("varlink: %s: %v", err.Op, err.Err)
}

func (err *IoError) Unwrap() error {
	return err.Err
}

// ServiceError is a built-in org.varlink.service error. It is kept
// distinct from UserError so that generic code can recognize MethodNotFound
// and friends with errors.As, regardless of the user's own error type.
type ServiceError struct {
	Name       string
	Parameters any
}

func (err *ServiceError) Error() string {
	return fmt.Sprintf("varlink: service error %s", err.Name)
}

// UserError is a successfully typed error declared by the user's interface.
// Proxy returns it when no user error value was supplied. Code generated by
// cmd/varlinkgen produces concrete error types of its own (not embedding
// this) that implement `error` and a `VarlinkErrorName() string` method.
type UserError struct {
	Name       string
	Parameters []byte
}

func (err *UserError) Error() string {
	return fmt.Sprintf("varlink: call failed: %s", err.Name)
}

// Named is implemented by generated/user error types so a Service.Handle
// implementation can derive the interface-dotted error name to pass to
// ErrorReply directly from the error value, rather than repeating the name
// as a separate literal.
type Named interface {
	VarlinkErrorName() string
}
