// Package proto defines the typed Go shapes of every frame content exchanged
// between player, broker, and game-server (spec §6), plus helpers to
// convert them to/from the generic map[string]any carried by transport.Frame.
package proto

import (
	"encoding/json"

	"github.com/tkahng/tactoe/transport"
)

// Player-to-server request types (§6.2).
const (
	TypeStartGame  = "start_game"
	TypePlaceMark  = "place_mark"
	TypeChat       = "chat"
	TypeCancelGame = "cancel_game"
	TypeChangeGame = "change_game"
	TypeReconnect  = "reconnect"
)

// Server-to-player frame types (§6.1, §6.3).
const (
	TypeShowGameStatus  = "show_game_status"
	TypeServerAssigned  = "server_assigned"
	TypeServerCrashed   = "server_crashed"
	TypeOpponentEscaped = "opponent_escaped"
	TypeGameChanged     = "game_changed"
)

// Broker<->game-server control frame types (§6.4).
const (
	TypeHandshake      = "handshake"
	TypePutToFree      = "put_to_free"
	TypePutToMultiFree = "put_to_multi_free"
	TypePutToWaiting   = "put_to_waiting"
)

// Game status values carried in show_game_status / game_changed frames.
const (
	GameStatusRunning  = "running"
	GameStatusFinished = "finished"
)

// Game type values carried in start_game / server_assigned frames.
const (
	GameTypeSingle = "single"
	GameTypeMulti  = "multi"
)

// StartGame is the player's request to enter matchmaking (§6.2).
type StartGame struct {
	Type     string `json:"type"`
	GameType string `json:"game_type"`
	Username string `json:"username"`
}

// PlaceMark is a player's move request (§6.2).
type PlaceMark struct {
	Type     string `json:"type"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	Username string `json:"username"`
}

// Chat is a player chat message (§6.2), echoed server-side to every other
// connected peer.
type Chat struct {
	Type        string `json:"type"`
	TextMessage string `json:"text_message"`
	Username    string `json:"username"`
}

// CancelGame is sent by a player abandoning an in-progress game (§6.2).
type CancelGame struct {
	Type     string `json:"type"`
	Username string `json:"username"`
}

// ChangeGame is sent by a player waiting in queue who wants out (§6.2).
type ChangeGame struct {
	Type     string `json:"type"`
	Username string `json:"username"`
}

// Reconnect is sent by a player re-attaching to a waiting session (§6.2).
type Reconnect struct {
	Type     string `json:"type"`
	Username string `json:"username"`
}

// ShowGameStatus is the server's per-change status broadcast (§6.1).
type ShowGameStatus struct {
	Type         string    `json:"type"`
	GameStatus   string    `json:"game_status"`
	GameBoard    [3][3]int `json:"game_board"`
	YourMark     int       `json:"your_mark"`
	OpponentMark int       `json:"opponent_mark"`
	CurrentUser  int       `json:"current_user"`
	Winner       *int      `json:"winner,omitempty"`
}

// ServerAssigned tells a multiplayer client it has been assigned a
// game-server and is waiting for a second player (§6.3).
type ServerAssigned struct {
	Type     string `json:"type"`
	GameType string `json:"game_type,omitempty"`
}

// ServerCrashed tells a client its game-server's control/data channel
// disappeared (§6.3).
type ServerCrashed struct {
	Type string `json:"type"`
}

// OpponentEscaped tells remaining peers that the opponent failed to
// reconnect within the reconnect window (§6.3).
type OpponentEscaped struct {
	Type       string `json:"type"`
	GameStatus string `json:"game_status"`
}

// GameChanged tells a queued player their wait was aborted (§6.3).
type GameChanged struct {
	Type       string `json:"type"`
	GameStatus string `json:"game_status"`
}

// Handshake is the game-server's first message to the broker on the
// control channel (§6.4).
type Handshake struct {
	Type string `json:"type"`
	Host string `json:"host"`
	Port int    `json:"port"`
}

// PutToFree moves the sending game-server's session handle to the free-any
// pool (§6.4).
type PutToFree struct {
	Type string `json:"type"`
}

// PutToMultiFree moves the sending game-server's session handle to the
// free-multi pool (§6.4).
type PutToMultiFree struct {
	Type string `json:"type"`
}

// PutToWaiting moves the sending game-server's session handle to the
// waiting-by-username pool (§6.4).
type PutToWaiting struct {
	Type     string `json:"type"`
	Username string `json:"username"`
}

// ToFrame marshals v (expected to be one of the structs above) into a
// transport.Frame via its JSON struct tags.
func ToFrame(v any) (transport.Frame, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return transport.Frame{}, err
	}
	var content map[string]any
	if err := json.Unmarshal(raw, &content); err != nil {
		return transport.Frame{}, err
	}
	return transport.NewFrame(content), nil
}

// Decode unmarshals a frame's content into dst (a pointer to one of the
// structs above).
func Decode(f transport.Frame, dst any) error {
	raw, err := json.Marshal(f.Content)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

// IntPtr is a small helper for populating ShowGameStatus.Winner.
func IntPtr(v int) *int {
	return &v
}
