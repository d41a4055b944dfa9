// Package usb adapts a USB gadget character device into a zlink.Socket.
// A Socket is nothing more than an independently-movable read/write half
// pair over a duplex byte stream; a USB function endpoint
// file (e.g. /dev/usb-ffs/varlink/ep1, opened read-write) already is one,
// so this package is a thin os.File wrapper with no USB-specific framing.
package usb

import (
	"os"

	"github.com/zeenix/zlink"
)

// Socket wraps an *os.File opened on a USB gadget endpoint as a
// zlink.Socket.
type Socket struct {
	f *os.File
}

// Open opens path (typically a FunctionFS or gadgetfs endpoint node)
// read-write and wraps it as a Socket.
func Open(path string) (*Socket, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return &Socket{f: f}, nil
}

// ReadHalf implements zlink.Socket.
func (s *Socket) ReadHalf() zlink.ReadHalf { return s.f }

// WriteHalf implements zlink.Socket. Character device writes are not
// internally buffered by this package, so Flush no-ops.
func (s *Socket) WriteHalf() zlink.WriteHalf { return zlink.NewWriteHalf(s.f) }

// Close releases the underlying endpoint file.
func (s *Socket) Close() error { return s.f.Close() }

// Listener hands off endpoint Sockets passed to Offer, one Connection per
// Socket. It does not watch or enumerate endpoint files itself: real USB
// gadget enumeration is environment-specific (FunctionFS epN lifecycle,
// configfs bind/unbind), so an external watcher opens new endpoints and
// calls Offer as they are bound.
type Listener struct {
	offers chan *Socket
	opts   []zlink.Option
}

// NewListener creates a Listener; opts (zlink.WithProfile/WithCapacityClass)
// configure the Buffer policy applied to every Connection produced from an
// Offer; they are resolved on each Accept.
func NewListener(opts ...zlink.Option) *Listener {
	return &Listener{offers: make(chan *Socket), opts: opts}
}

// Offer hands a newly opened endpoint Socket to a pending Accept call. It
// blocks until Accept consumes it or the Listener is closed.
func (l *Listener) Offer(sock *Socket) {
	l.offers <- sock
}

// Close stops the Listener; any blocked Accept returns zlink.ErrListenerClosed.
func (l *Listener) Close() { close(l.offers) }

// Accept implements zlink.Listener.
func (l *Listener) Accept() (*zlink.Connection, error) {
	sock, ok := <-l.offers
	if !ok {
		return nil, zlink.ErrListenerClosed
	}
	return zlink.NewConnectionWithOptions(sock, l.opts...), nil
}
