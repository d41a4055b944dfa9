package zlink

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zeenix/zlink/transport/streamsock"
)

type echoService struct{}

type echoIn struct {
	Message string `json:"message"`
}

func (echoService) Interfaces() []string { return []string{"org.example"} }

func (echoService) InterfaceDescription(name string) (string, bool) {
	if name == "org.example" {
		return "interface org.example\nmethod Echo(message: string) -> (message: string)\n", true
	}
	return "", false
}

func (echoService) Handle(call *Call) MethodReply {
	switch call.Method {
	case "org.example.Echo":
		var in echoIn
		_ = json.Unmarshal(call.Parameters, &in)
		return SingleReply(echoIn{Message: in.Message})
	case "org.example.Fail":
		return ErrorReply("org.example.Failed", struct{}{})
	case "org.example.Count":
		var in struct {
			N int `json:"n"`
		}
		_ = json.Unmarshal(call.Parameters, &in)
		i := 0
		return MultiReply(FuncSequence(func() (any, bool, error) {
			if i >= in.N {
				return nil, false, nil
			}
			out := struct {
				I int `json:"i"`
			}{I: i}
			i++
			return out, true, nil
		}))
	default:
		return ErrorReply(ErrMethodNotFound, MethodNotFoundError{Method: call.Method})
	}
}

func startTestServer(t *testing.T) *Proxy {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	listener := streamsock.Listener(ln, WithCapacityClass(Capacity4KiB))
	server := NewServer(listener, echoService{})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go server.Serve(ctx)

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return NewProxy(streamsock.New(conn), WithCapacityClass(Capacity4KiB))
}

func TestServerEchoImmediate(t *testing.T) {
	proxy := startTestServer(t)

	var out echoIn
	err := proxy.Call("org.example.Echo", echoIn{Message: "hi"}, &out, nil)
	require.NoError(t, err)
	require.Equal(t, "hi", out.Message)
}

func TestServerErrorReply(t *testing.T) {
	proxy := startTestServer(t)

	err := proxy.Call("org.example.Fail", nil, nil, nil)
	require.Error(t, err)
	var uerr *UserError
	require.ErrorAs(t, err, &uerr)
	require.Equal(t, "org.example.Failed", uerr.Name)
}

func TestServerMethodNotFound(t *testing.T) {
	proxy := startTestServer(t)

	err := proxy.Call("org.example.Nope", nil, nil, nil)
	require.Error(t, err)
	var serr *ServiceError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, ErrMethodNotFound, serr.Name)
}

func TestServerStreamingReply(t *testing.T) {
	proxy := startTestServer(t)

	stream, err := proxy.CallMore("org.example.Count", struct {
		N int `json:"n"`
	}{N: 3})
	require.NoError(t, err)

	var got []int
	for {
		var out struct {
			I int `json:"i"`
		}
		more, err := stream.Next(&out, nil)
		require.NoError(t, err)
		if !more {
			break
		}
		got = append(got, out.I)
	}
	require.Equal(t, []int{0, 1, 2}, got)
}

func TestServerExpectedMoreWhenMultiWithoutMoreFlag(t *testing.T) {
	proxy := startTestServer(t)

	err := proxy.Call("org.example.Count", struct {
		N int `json:"n"`
	}{N: 2}, nil, nil)
	require.Error(t, err)
	var serr *ServiceError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, ErrExpectedMore, serr.Name)
}

func TestServerBuiltinGetInfoAndDescription(t *testing.T) {
	proxy := startTestServer(t)

	var info struct {
		Interfaces []string `json:"interfaces"`
	}
	require.NoError(t, proxy.Call("org.varlink.service.GetInfo", nil, &info, nil))
	require.Contains(t, info.Interfaces, "org.varlink.service")
	require.Contains(t, info.Interfaces, "org.example")

	var desc struct {
		Description string `json:"description"`
	}
	require.NoError(t, proxy.Call("org.varlink.service.GetInterfaceDescription",
		map[string]string{"interface": "org.example"}, &desc, nil))
	require.Contains(t, desc.Description, "interface org.example")

	err := proxy.Call("org.varlink.service.GetInterfaceDescription",
		map[string]string{"interface": "org.nonexistent"}, &desc, nil)
	require.Error(t, err)
	var serr *ServiceError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, ErrInterfaceNotFound, serr.Name)
}

func TestChainPipelinesInFIFOOrderSkippingOneway(t *testing.T) {
	proxy := startTestServer(t)

	chain := proxy.Chain().
		Add("org.example.Echo", echoIn{Message: "one"}).
		AddOneway("org.example.Echo", echoIn{Message: "ignored"}).
		Add("org.example.Echo", echoIn{Message: "two"})

	replies, err := chain.Send()
	require.NoError(t, err)

	var got []string
	for {
		var out echoIn
		ok, err := replies.Next(&out, nil)
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, out.Message)
	}
	require.Equal(t, []string{"one", "two"}, got)
}

func TestServerShutdownStopsAcceptingNewConnections(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	listener := streamsock.Listener(ln, WithCapacityClass(Capacity4KiB))
	server := NewServer(listener, echoService{})

	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(shutdownCtx))

	ln.Close()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after Shutdown and listener close")
	}
}
