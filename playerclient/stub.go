// Package playerclient implements the player-side of the protocol: a thin
// send-only stub plus a response-driven controller that tracks the local UI
// state (spec §4.9).
package playerclient

import (
	"github.com/tkahng/tactoe/proto"
	"github.com/tkahng/tactoe/transport"
)

// Stub exposes one method per player-to-server request frame.
type Stub struct {
	conn     *transport.Transport
	username string
}

// NewStub wraps a connected transport for username.
func NewStub(conn *transport.Transport, username string) *Stub {
	return &Stub{conn: conn, username: username}
}

// StartGame requests matchmaking for gameType ("single" or "multi").
func (s *Stub) StartGame(gameType string) error {
	f, err := proto.ToFrame(proto.StartGame{Type: proto.TypeStartGame, GameType: gameType, Username: s.username})
	if err != nil {
		return err
	}
	return s.conn.Send(f)
}

// PlaceMark requests a move at (row, col).
func (s *Stub) PlaceMark(row, col int) error {
	f, err := proto.ToFrame(proto.PlaceMark{Type: proto.TypePlaceMark, Row: row, Col: col, Username: s.username})
	if err != nil {
		return err
	}
	return s.conn.Send(f)
}

// Chat sends a line of chat text.
func (s *Stub) Chat(text string) error {
	f, err := proto.ToFrame(proto.Chat{Type: proto.TypeChat, TextMessage: text, Username: s.username})
	if err != nil {
		return err
	}
	return s.conn.Send(f)
}

// CancelGame abandons an in-progress game.
func (s *Stub) CancelGame() error {
	f, err := proto.ToFrame(proto.CancelGame{Type: proto.TypeCancelGame, Username: s.username})
	if err != nil {
		return err
	}
	return s.conn.Send(f)
}

// ChangeGame abandons the matchmaking queue.
func (s *Stub) ChangeGame() error {
	f, err := proto.ToFrame(proto.ChangeGame{Type: proto.TypeChangeGame, Username: s.username})
	if err != nil {
		return err
	}
	return s.conn.Send(f)
}

// Reconnect announces a returning player to a game-server within the
// reconnect window.
func (s *Stub) Reconnect() error {
	f, err := proto.ToFrame(proto.Reconnect{Type: proto.TypeReconnect, Username: s.username})
	if err != nil {
		return err
	}
	return s.conn.Send(f)
}

// Receive reads the next server frame.
func (s *Stub) Receive() (transport.Frame, error) {
	return s.conn.Receive()
}

// Close releases the underlying transport.
func (s *Stub) Close() error {
	return s.conn.Close()
}
