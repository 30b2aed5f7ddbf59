package broker

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/tkahng/tactoe/bridge"
	"github.com/tkahng/tactoe/chatroom"
	"github.com/tkahng/tactoe/internal/raceutil"
	"github.com/tkahng/tactoe/proto"
	"github.com/tkahng/tactoe/transport"
)

// errChangeGameRequested signals that the queued player asked to abandon
// the wait for a free chatroom before one became available.
var errChangeGameRequested = errors.New("broker: change_game requested")

// ClientHandler owns one connected player's socket for as long as it stays
// connected, dispatching each start_game request into the repository and
// bridging the matched session for its duration.
type ClientHandler struct {
	conn             *transport.Transport
	repo             *chatroom.Repository
	connectedPlayers *int64
	logger           *zap.Logger
}

// NewClientHandler wraps a freshly accepted player connection.
// connectedPlayers is the broker-wide live-connection counter the admin
// feed reports; it is incremented for the lifetime of Run.
func NewClientHandler(conn *transport.Transport, repo *chatroom.Repository, connectedPlayers *int64, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{conn: conn, repo: repo, connectedPlayers: connectedPlayers, logger: logger}
}

// Run reads top-level requests from the player until they disconnect. Only
// start_game is recognized at this level; every other frame type is logged
// and ignored (gameplay frames are consumed inside the bridge once a
// session is matched, never here).
func (h *ClientHandler) Run() {
	defer h.conn.Close()

	atomic.AddInt64(h.connectedPlayers, 1)
	defer atomic.AddInt64(h.connectedPlayers, -1)

	for {
		f, err := h.conn.Receive()
		if err != nil {
			return
		}
		if f.Type() != proto.TypeStartGame {
			h.logger.Debug("unexpected frame from idle player", zap.String("type", f.Type()))
			continue
		}

		var start proto.StartGame
		if err := proto.Decode(f, &start); err != nil {
			h.logger.Warn("malformed start_game", zap.Error(err))
			continue
		}

		if err := h.handleGame(f, start); err != nil {
			return
		}
	}
}

// handleGame matches start to a chatroom and bridges the player through it.
// A non-nil return means the player disconnected and Run should stop.
func (h *ClientHandler) handleGame(startFrame transport.Frame, start proto.StartGame) error {
	room, ok := h.repo.PopWaiting(start.Username)
	if !ok {
		var err error
		room, err = h.popFreeOrChangeGame(start.GameType == proto.GameTypeSingle)
		if errors.Is(err, errChangeGameRequested) {
			return nil
		}
		if err != nil {
			return err
		}
	}

	err := room.AddPlayer(h.conn, startFrame)
	switch {
	case errors.Is(err, bridge.ErrServerDisconnected):
		f, ferr := proto.ToFrame(proto.ServerCrashed{Type: proto.TypeServerCrashed})
		if ferr == nil {
			_ = h.conn.Send(f)
		}
		return nil
	case errors.Is(err, bridge.ErrPlayerDisconnected):
		h.repo.ToWaiting(room, start.Username)
		return err
	default:
		h.repo.ToFreeAny(room)
		return nil
	}
}

// popFreeOrChangeGame races the repository's blocking free-chatroom pop
// against the player asking to abandon the wait, returning whichever
// resolves first (spec §4.7 step 2).
func (h *ClientHandler) popFreeOrChangeGame(singlePlayer bool) (*chatroom.ChatRoom, error) {
	ctx, cancel := context.WithCancel(context.Background())

	room, err := raceutil.Race(
		func() {
			cancel()
			_ = h.conn.SetReadDeadline(time.Now())
		},
		func() (*chatroom.ChatRoom, error) { return h.repo.PopFree(ctx, singlePlayer) },
		func() (*chatroom.ChatRoom, error) { return nil, waitForChangeGame(h.conn) },
	)
	_ = h.conn.SetReadDeadline(time.Time{})
	return room, err
}

func waitForChangeGame(conn *transport.Transport) error {
	for {
		f, err := conn.Receive()
		if err != nil {
			return err
		}
		if f.Type() == proto.TypeChangeGame {
			return errChangeGameRequested
		}
	}
}
