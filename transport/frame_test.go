package transport

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pipeTransports(t *testing.T) (*Transport, *Transport) {
	t.Helper()
	a, b := net.Pipe()
	return New(a), New(b)
}

func TestTransport_SendReceiveRoundTrip(t *testing.T) {
	client, server := pipeTransports(t)
	defer client.Close()
	defer server.Close()

	want := NewFrame(map[string]any{
		"type":     "start_game",
		"username": "alice",
		"game_type": "single",
	})

	errCh := make(chan error, 1)
	go func() { errCh <- client.Send(want) }()

	got, err := server.Receive()
	require.NoError(t, err)
	require.NoError(t, <-errCh)

	assert.Equal(t, want.Content["type"], got.Content["type"])
	assert.Equal(t, want.Content["username"], got.Content["username"])
	assert.Equal(t, want.Content["game_type"], got.Content["game_type"])
}

func TestTransport_PreservesOrderBackToBack(t *testing.T) {
	client, server := pipeTransports(t)
	defer client.Close()
	defer server.Close()

	frames := []Frame{
		NewFrame(map[string]any{"type": "chat", "text_message": "one"}),
		NewFrame(map[string]any{"type": "chat", "text_message": "two"}),
		NewFrame(map[string]any{"type": "chat", "text_message": "three"}),
	}

	go func() {
		for _, f := range frames {
			_ = client.Send(f)
		}
	}()

	for _, want := range frames {
		got, err := server.Receive()
		require.NoError(t, err)
		assert.Equal(t, want.Content["text_message"], got.Content["text_message"])
	}
}

func TestTransport_ReceiveOnClosedPeerIsPeerClosed(t *testing.T) {
	client, server := pipeTransports(t)
	require.NoError(t, client.Close())

	_, err := server.Receive()
	assert.ErrorIs(t, err, ErrPeerClosed)
}

func TestTransport_MissingTypeIsProtocolError(t *testing.T) {
	client, server := pipeTransports(t)
	defer client.Close()
	defer server.Close()

	go func() {
		_ = client.Send(Frame{Header: map[string]any{}, Content: map[string]any{"no_type": true}})
	}()

	_, err := server.Receive()
	assert.ErrorIs(t, err, ErrProtocolError)
}

func TestTransport_CloseIsIdempotent(t *testing.T) {
	client, _ := pipeTransports(t)
	assert.NoError(t, client.Close())
	assert.NoError(t, client.Close())
}
