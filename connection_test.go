package zlink

import (
	"encoding/json"
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeenix/zlink/transport/streamsock"
)

func pipeConnections(t *testing.T) (clientConn, serverConn net.Conn, a, b *Connection) {
	t.Helper()
	c1, c2 := net.Pipe()
	t.Cleanup(func() { c1.Close(); c2.Close() })
	return c1, c2,
		NewConnection(streamsock.New(c1), Capacity4KiB, false),
		NewConnection(streamsock.New(c2), Capacity4KiB, false)
}

func TestCallReplyRoundTrip(t *testing.T) {
	_, _, client, server := pipeConnections(t)

	type pingParams struct {
		Name string `json:"name"`
	}
	params, err := json.Marshal(pingParams{Name: "world"})
	require.NoError(t, err)

	go func() {
		call := &Call{Method: "org.example.Ping", Parameters: params}
		_ = client.Write.SendCall(call)
	}()

	call, err := server.Read.ReceiveCall()
	require.NoError(t, err)
	require.Equal(t, "org.example.Ping", call.Method)

	var got pingParams
	require.NoError(t, json.Unmarshal(call.Parameters, &got))
	require.Equal(t, "world", got.Name)

	go func() {
		_ = server.Write.SendReply(&Reply{Parameters: json.RawMessage(`{"ok":true}`)})
	}()

	reply, err := client.Read.ReceiveReply()
	require.NoError(t, err)
	require.False(t, reply.IsError())
	require.JSONEq(t, `{"ok":true}`, string(reply.Parameters))
}

func TestReceiveCallRejectsReplyShapedFrame(t *testing.T) {
	_, _, client, server := pipeConnections(t)

	go func() {
		_ = client.Write.SendError("org.example.Bad", nil)
	}()

	_, err := server.Read.ReceiveCall()
	require.Error(t, err)
	var violation *ProtocolViolationError
	require.ErrorAs(t, err, &violation)
}

func TestReceiveFrameReportsDisconnect(t *testing.T) {
	clientRaw, _, _, server := pipeConnections(t)

	require.NoError(t, clientRaw.Close())

	_, err := server.Read.ReceiveFrame()
	require.ErrorIs(t, err, ErrDisconnected)
}
