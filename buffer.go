package zlink

import "bytes"

// CapacityClass selects the initial (heap profile) or hard (fixed profile)
// size of a Buffer.
type CapacityClass int

const (
	Capacity2KiB  CapacityClass = 2 * 1024
	Capacity4KiB  CapacityClass = 4 * 1024
	Capacity16KiB CapacityClass = 16 * 1024
	Capacity1MiB  CapacityClass = 1024 * 1024
)

// compactThreshold bounds how much of the backing array must be a consumed
// prefix before compact() bothers to shift the unconsumed suffix down.
const compactThreshold = 4 * 1024

// Buffer is a growable-or-fixed byte buffer with NUL-delimited frame
// boundary detection. One Buffer is owned per ReadConnection.
//
// Invariant: consumed <= filled <= len(data); in the fixed profile,
// len(data) never exceeds the configured capacity class.
type Buffer struct {
	data     []byte
	consumed int
	filled   int
	fixed    bool
	capacity int
}

// NewBuffer creates a Buffer. If fixed is true, the Buffer never grows past
// class and FindFrame returns a *BufferOverflowError instead of asking for
// more room; otherwise class is only the initial allocation hint.
func NewBuffer(class CapacityClass, fixed bool) *Buffer {
	return &Buffer{
		data:     make([]byte, 0, int(class)),
		fixed:    fixed,
		capacity: int(class),
	}
}

// Len returns the number of unconsumed, filled bytes.
func (b *Buffer) Len() int {
	return b.filled - b.consumed
}

// AppendFill returns a writable tail slice for a transport to Read into.
// Reported returns the number of bytes the caller actually wrote into the
// returned slice; it must be called (with however many bytes were read,
// possibly zero) before the next AppendFill or FindFrame call.
//
// AppendFill grows the backing array in the heap profile when the unfilled
// tail is exhausted; in the fixed profile it returns a possibly-empty slice
// once the backing array has reached its capacity, and the caller must treat
// a subsequent failed FindFrame as a BufferOverflowError.
func (b *Buffer) AppendFill() []byte {
	b.compact()

	if free := cap(b.data) - b.filled; free == 0 {
		if b.fixed {
			if cap(b.data) >= b.capacity {
				return nil
			}
			b.grow()
		} else {
			b.grow()
		}
	}
	return b.data[b.filled:cap(b.data)]
}

// Reported records that n bytes were written into the slice previously
// returned by AppendFill.
func (b *Buffer) Reported(n int) {
	b.filled += n
	b.data = b.data[:b.filled]
}

// grow doubles the backing array, bounded by the capacity class as an
// initial hint rather than a hard cap in the heap profile.
func (b *Buffer) grow() {
	newCap := cap(b.data) * 2
	if newCap == 0 {
		newCap = b.capacity
		if newCap == 0 {
			newCap = int(Capacity4KiB)
		}
	}
	if b.fixed && newCap > b.capacity {
		newCap = b.capacity
	}
	grown := make([]byte, b.filled, newCap)
	copy(grown, b.data[:b.filled])
	b.data = grown
}

// compact shifts the unconsumed suffix to the front of the backing array
// once the consumed prefix has grown past compactThreshold, so repeated
// small frames don't walk the backing array forward forever.
func (b *Buffer) compact() {
	if b.consumed == 0 || b.consumed < compactThreshold {
		return
	}
	n := copy(b.data[:b.filled-b.consumed], b.data[b.consumed:b.filled])
	b.filled = n
	b.consumed = 0
	b.data = b.data[:b.filled]
}

// FindFrame scans forward from the consumed offset for the next NUL byte
// using the fast byte-seek primitive (bytes.IndexByte, which the Go runtime
// already vectorizes — see DESIGN.md), returning the frame's bytes
// excluding the terminator and advancing the consumed offset past it.
//
// ok is false when no complete frame is currently buffered; in the fixed
// profile, once the backing array is full and still holds no NUL, err is a
// *BufferOverflowError.
func (b *Buffer) FindFrame() (frame []byte, ok bool, err error) {
	unconsumed := b.data[b.consumed:b.filled]
	idx := bytes.IndexByte(unconsumed, 0)
	if idx < 0 {
		if b.fixed && b.filled == cap(b.data) && cap(b.data) >= b.capacity {
			return nil, false, &BufferOverflowError{Capacity: b.capacity}
		}
		return nil, false, nil
	}
	frame = unconsumed[:idx]
	b.consumed += idx + 1
	return frame, true, nil
}

// Reset discards all buffered bytes, leaving the Buffer empty and
// recoverable, e.g. after an oversized frame has been discarded.
func (b *Buffer) Reset() {
	b.consumed = 0
	b.filled = 0
	b.data = b.data[:0]
}
