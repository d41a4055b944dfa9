// Command example runs an org.example varlink service on a Unix socket,
// demonstrating the Server half of the core against exampleapi.Service.
package main

import (
	"context"
	"log"
	"net"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/zeenix/zlink"
	"github.com/zeenix/zlink/example/exampleapi"
	"github.com/zeenix/zlink/transport/streamsock"
)

const socketPath = "./org.example.sock"

type backend struct {
	mu   sync.Mutex
	logs []string
}

func (b *backend) Add(a, b2 int) int { return a + b2 }

func (b *backend) Divide(a, b2 int) (int, error) {
	if b2 == 0 {
		return 0, &exampleapi.DivisionByZeroError{Message: "nope"}
	}
	return a / b2, nil
}

func (b *backend) Log(message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logs = append(b.logs, message)
}

func main() {
	_ = os.Remove(socketPath)

	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		log.Fatal(err)
	}
	defer ln.Close()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	listener := streamsock.Listener(ln, zlink.WithCapacityClass(zlink.Capacity16KiB))
	server := zlink.NewServer(listener, exampleapi.Service{Backend: &backend{}},
		zlink.WithLogger(logger),
		zlink.WithServiceInfo("zlink", "example", "1.0", "https://github.com/zeenix/zlink"),
	)

	logger.Info().Str("socket", socketPath).Msg("listening")
	if err := server.Serve(context.Background()); err != nil {
		log.Fatal(err)
	}
}
