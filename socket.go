package zlink

import "io"

// ReadHalf is the read side of a Socket. Read follows the
// io.Reader convention: a return of (0, nil) is not a valid clean EOF — EOF
// is always signalled as (n, io.EOF) with n possibly > 0, and a subsequent
// call returns (0, io.EOF).
type ReadHalf interface {
	io.Reader
}

// WriteHalf is the write side of a Socket. WriteAll must be atomic with
// respect to a single call: either the full buffer reaches the peer (modulo
// partial internal writes, which implementations must retry to completion)
// or an error is returned and the connection must be considered
// unrecoverable. Flush may no-op for transports without internal buffering.
type WriteHalf interface {
	WriteAll(p []byte) error
	Flush() error
}

// Socket is a duplex byte stream split into independent halves, each
// independently movable into its own goroutine.
type Socket interface {
	ReadHalf() ReadHalf
	WriteHalf() WriteHalf
}

// PeerCredentials is an optional capability a Socket implementation may
// satisfy when its underlying transport can report the identity of the
// process on the other end (e.g. SO_PEERCRED on a Unix domain socket).
// NewConnection probes for it and, when present, attaches the result to
// the resulting Connection for observability logging; it is never
// consulted by the dispatch path itself.
type PeerCredentials interface {
	PeerCredentials() (uid, gid, pid int, err error)
}

// writeAllWriter adapts a plain io.Writer into a WriteHalf by looping until
// the full buffer has been written, per the "partial writes must be
// retried" transport contract. Transports with no internal
// buffering of their own (character devices, raw file descriptors) use this
// instead of hand-rolling the retry loop; NewWriteHalf is the exported
// constructor.
type writeAllWriter struct {
	w io.Writer
	f interface{ Flush() error }
}

// NewWriteHalf adapts w into a WriteHalf, retrying partial writes to
// completion. If w also implements an `Flush() error` method, it is called
// from WriteHalf.Flush; otherwise Flush no-ops.
func NewWriteHalf(w io.Writer) WriteHalf {
	f, _ := w.(interface{ Flush() error })
	return &writeAllWriter{w: w, f: f}
}

func (w *writeAllWriter) WriteAll(p []byte) error {
	for len(p) > 0 {
		n, err := w.w.Write(p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}

func (w *writeAllWriter) Flush() error {
	if w.f == nil {
		return nil
	}
	return w.f.Flush()
}
