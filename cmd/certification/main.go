// Command certification dials a running example server and exercises every
// scenario from the core's testable properties: a plain call, a typed
// error, a streaming reply, a pipelined batch, and introspection.
package main

import (
	"flag"
	"log"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: certification [ client ] [ -protocol PROTOCOL ] [ -socket SOCKET ]")
	}

	mode := os.Args[1]
	cmd := flag.NewFlagSet(mode, flag.ExitOnError)
	protocol := cmd.String("protocol", "unix", "Protocol (tcp, unix, ...)")
	socket := cmd.String("socket", "./org.example.sock", "Socket address")
	cmd.Parse(os.Args[2:])

	switch mode {
	case "client":
		client(*protocol, *socket)
	default:
		log.Fatal("usage: certification client [ -protocol PROTOCOL ] [ -socket SOCKET ]")
	}
}
