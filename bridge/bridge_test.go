package bridge

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkahng/tactoe/transport"
)

// pair returns a Transport backed by one end of a net.Pipe and a raw
// *transport.Transport for the test to drive the other end as the peer.
func pair(t *testing.T) (*transport.Transport, *transport.Transport) {
	t.Helper()
	a, b := net.Pipe()
	return transport.New(a), transport.New(b)
}

func TestRun_StopsOnFinishedStatus(t *testing.T) {
	server, serverPeer := pair(t)
	client, clientPeer := pair(t)
	defer serverPeer.Close()
	defer clientPeer.Close()

	done := make(chan error, 1)
	go func() { done <- Run(server, client) }()

	require.NoError(t, serverPeer.Send(transport.NewFrame(map[string]any{
		"type":        "show_game_status",
		"game_status": "finished",
	})))

	got, err := clientPeer.Receive()
	require.NoError(t, err)
	assert.Equal(t, "finished", got.Content["game_status"])

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after finished status")
	}
}

func TestRun_ForwardsClientToServer(t *testing.T) {
	server, serverPeer := pair(t)
	client, clientPeer := pair(t)
	defer server.Close()
	defer client.Close()
	defer serverPeer.Close()
	defer clientPeer.Close()

	go Run(server, client)

	require.NoError(t, clientPeer.Send(transport.NewFrame(map[string]any{
		"type": "place_mark", "row": 1, "col": 1, "username": "alice",
	})))

	got, err := serverPeer.Receive()
	require.NoError(t, err)
	assert.Equal(t, "place_mark", got.Content["type"])
}

func TestRun_ServerDisconnectReported(t *testing.T) {
	server, serverPeer := pair(t)
	client, clientPeer := pair(t)
	defer client.Close()
	defer clientPeer.Close()

	done := make(chan error, 1)
	go func() { done <- Run(server, client) }()

	require.NoError(t, serverPeer.Close())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrServerDisconnected)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after server disconnect")
	}
}

func TestRun_PlayerDisconnectReported(t *testing.T) {
	server, serverPeer := pair(t)
	client, clientPeer := pair(t)
	defer server.Close()
	defer serverPeer.Close()

	done := make(chan error, 1)
	go func() { done <- Run(server, client) }()

	require.NoError(t, clientPeer.Close())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrPlayerDisconnected)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after player disconnect")
	}
}
