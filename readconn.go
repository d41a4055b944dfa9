package zlink

import (
	"encoding/json"
	"io"
)

// ReadConnection parses incoming JSON frames off a ReadHalf into
// caller-chosen types, borrowing from its Buffer.
//
// At most one outstanding frame-borrow is valid at a time: the slice
// returned by ReceiveFrame (and any json.RawMessage values decoded from it)
// is only valid until the next Receive* call.
type ReadConnection struct {
	r   ReadHalf
	buf *Buffer
}

// NewReadConnection creates a ReadConnection reading from r, backed by buf.
func NewReadConnection(r ReadHalf, buf *Buffer) *ReadConnection {
	return &ReadConnection{r: r, buf: buf}
}

// ReceiveFrame fills from the socket until the Buffer holds at least one
// complete frame, then returns a borrow of that frame's bytes, excluding
// the NUL terminator.
//
// It fails with ErrDisconnected on clean EOF at a frame boundary, and with a
// FrameMalformedError (wrapping io.ErrUnexpectedEOF) when the stream ends
// after some bytes of an unterminated frame had already been buffered.
func (rc *ReadConnection) ReceiveFrame() ([]byte, error) {
	for {
		frame, ok, err := rc.buf.FindFrame()
		if err != nil {
			return nil, err
		}
		if ok {
			return frame, nil
		}

		tail := rc.buf.AppendFill()
		if tail == nil {
			return nil, &BufferOverflowError{Capacity: rc.buf.capacity}
		}

		n, err := rc.r.Read(tail)
		if n > 0 {
			rc.buf.Reported(n)
		}
		if err != nil {
			if err == io.EOF {
				if n > 0 {
					// Let FindFrame see the final bytes first; the next
					// Read reports (0, io.EOF) again.
					continue
				}
				if rc.buf.Len() == 0 {
					return nil, ErrDisconnected
				}
				return nil, &FrameMalformedError{Err: io.ErrUnexpectedEOF}
			}
			return nil, &IoError{Op: "read", Err: err}
		}
		if n == 0 {
			return nil, ErrDisconnected
		}
	}
}

// ReceiveCall receives a frame and deserializes it as a Call. A frame
// carrying an "error" field is a protocol error in this (request) direction.
func (rc *ReadConnection) ReceiveCall() (*Call, error) {
	frame, err := rc.ReceiveFrame()
	if err != nil {
		return nil, err
	}

	var probe struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(frame, &probe); err != nil {
		return nil, &FrameMalformedError{Frame: frame, Err: err}
	}
	if probe.Error != nil {
		return nil, &ProtocolViolationError{Reason: "received a reply-shaped frame where a call was expected"}
	}

	var call Call
	if err := json.Unmarshal(frame, &call); err != nil {
		return nil, &FrameMalformedError{Frame: frame, Err: err}
	}
	if err := call.Validate(); err != nil {
		return nil, err
	}
	return &call, nil
}

// ReceiveReply receives a frame and parses it as a Reply. The caller is
// responsible for further decoding Parameters into a built-in error, a user
// error, or a success type.
func (rc *ReadConnection) ReceiveReply() (*Reply, error) {
	frame, err := rc.ReceiveFrame()
	if err != nil {
		return nil, err
	}

	var reply Reply
	if err := json.Unmarshal(frame, &reply); err != nil {
		return nil, &FrameMalformedError{Frame: frame, Err: err}
	}
	if err := reply.Validate(); err != nil {
		return nil, err
	}
	return &reply, nil
}
