package zlink

import (
	"bytes"
	"encoding/json"
)

// WriteConnection serializes and frames outgoing messages. It
// owns a staging buffer used for pipelined batches; Send* methods
// write immediately, while Enqueue/FlushEnqueued batch several frames into
// a single WriteAll.
type WriteConnection struct {
	w       WriteHalf
	staging bytes.Buffer
}

// NewWriteConnection creates a WriteConnection writing to w.
func NewWriteConnection(w WriteHalf) *WriteConnection {
	return &WriteConnection{w: w}
}

func frame(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		panic("varlink: refusing to frame a zero-length message")
	}
	return append(b, 0), nil
}

func (wc *WriteConnection) writeNow(v any) error {
	b, err := frame(v)
	if err != nil {
		return &FrameMalformedError{Err: err}
	}
	if err := wc.w.WriteAll(b); err != nil {
		return &IoError{Op: "write", Err: err}
	}
	if err := wc.w.Flush(); err != nil {
		return &IoError{Op: "flush", Err: err}
	}
	return nil
}

// SendCall serializes, frames, and writes a Call.
func (wc *WriteConnection) SendCall(call *Call) error {
	if err := call.Validate(); err != nil {
		return err
	}
	return wc.writeNow(call)
}

// SendReply serializes, frames, and writes a Reply.
func (wc *WriteConnection) SendReply(reply *Reply) error {
	if err := reply.Validate(); err != nil {
		return err
	}
	return wc.writeNow(reply)
}

// SendError serializes, frames, and writes a Reply in its error variant,
// carrying name and an arbitrary JSON-serializable payload.
func (wc *WriteConnection) SendError(name string, parameters any) error {
	params, err := json.Marshal(parameters)
	if err != nil {
		return &FrameMalformedError{Err: err}
	}
	if string(params) == "null" {
		params = nil
	}
	return wc.writeNow(&Reply{Error: name, Parameters: params})
}

// Enqueue appends a serialized, framed Call to the staging buffer without
// writing it to the socket. Used to build a pipelined batch.
func (wc *WriteConnection) Enqueue(call *Call) error {
	if err := call.Validate(); err != nil {
		return err
	}
	b, err := frame(call)
	if err != nil {
		return &FrameMalformedError{Err: err}
	}
	wc.staging.Write(b)
	return nil
}

// FlushEnqueued issues one WriteAll of the concatenated staged frames, then
// clears the staging buffer, whether it succeeded or not.
func (wc *WriteConnection) FlushEnqueued() error {
	defer wc.staging.Reset()

	if wc.staging.Len() == 0 {
		return nil
	}
	if err := wc.w.WriteAll(wc.staging.Bytes()); err != nil {
		return &IoError{Op: "write", Err: err}
	}
	if err := wc.w.Flush(); err != nil {
		return &IoError{Op: "flush", Err: err}
	}
	return nil
}
