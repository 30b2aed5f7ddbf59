// Package chatroom implements the broker-side session handle (ChatRoom) and
// its pooled repository (spec §4.4, §4.5): a ChatRoom owns the address of
// the game-server data channel serving one session, and bridges a player's
// transport to it on demand.
package chatroom

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tkahng/tactoe/bridge"
	"github.com/tkahng/tactoe/transport"
)

// ChatRoom is a handle to one game-server-hosted session: the address to
// dial for its data channel, plus the id the broker uses to track it across
// its pools.
type ChatRoom struct {
	RoomID        string
	ServerAddress string
	dialBackoff   []time.Duration
}

// New creates a ChatRoom for a session hosted at serverAddress, identified
// by a freshly generated room id.
func New(serverAddress string) *ChatRoom {
	return &ChatRoom{
		RoomID:        uuid.NewString(),
		ServerAddress: serverAddress,
		dialBackoff:   transport.DefaultDialBackoff,
	}
}

// AddPlayer dials the game-server's data channel, forwards startFrame to
// announce the player, then bridges the new server connection to client
// until the game ends or either side disconnects. The dialed server
// connection is always closed before AddPlayer returns.
func (c *ChatRoom) AddPlayer(client *transport.Transport, startFrame transport.Frame) error {
	server, err := transport.DialWithBackoff(c.ServerAddress, c.dialBackoff)
	if err != nil {
		return fmt.Errorf("chatroom %s: dial game-server: %w", c.RoomID, err)
	}
	defer server.Close()

	if err := server.Send(startFrame); err != nil {
		return fmt.Errorf("chatroom %s: announce player: %w", c.RoomID, err)
	}

	return bridge.Run(server, client)
}
