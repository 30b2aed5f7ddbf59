// Package broker implements the matchmaking process: it accepts game-server
// control connections and player connections, and routes players into
// chatrooms via the pooled repository (spec §4.6, §4.7).
package broker

import (
	"errors"

	"go.uber.org/zap"

	"github.com/tkahng/tactoe/chatroom"
	"github.com/tkahng/tactoe/proto"
	"github.com/tkahng/tactoe/transport"
)

// GameServerHandler owns one game-server's control channel for the
// lifetime of that connection, applying every pool-transition frame it
// sends to the shared repository.
type GameServerHandler struct {
	conn   *transport.Transport
	room   *chatroom.ChatRoom
	repo   *chatroom.Repository
	logger *zap.Logger
}

// NewGameServerHandler registers a fresh chatroom for room (into free-any,
// via repo.Add) and returns a handler ready to run its control loop.
func NewGameServerHandler(conn *transport.Transport, room *chatroom.ChatRoom, repo *chatroom.Repository, logger *zap.Logger) *GameServerHandler {
	repo.Add(room)
	return &GameServerHandler{conn: conn, room: room, repo: repo, logger: logger}
}

// Run reads pool-transition frames until the control channel closes, then
// unregisters the chatroom from every pool.
func (h *GameServerHandler) Run() {
	defer h.repo.Remove(h.room)
	defer h.conn.Close()

	for {
		f, err := h.conn.Receive()
		if err != nil {
			if errors.Is(err, transport.ErrPeerClosed) {
				h.logger.Info("game-server disconnected", zap.String("room_id", h.room.RoomID))
			} else {
				h.logger.Warn("game-server control channel error", zap.Error(err))
			}
			return
		}
		h.apply(f)
	}
}

func (h *GameServerHandler) apply(f transport.Frame) {
	switch f.Type() {
	case proto.TypePutToFree:
		h.repo.ToFreeAny(h.room)
	case proto.TypePutToMultiFree:
		h.repo.ToFreeMulti(h.room)
	case proto.TypePutToWaiting:
		var msg proto.PutToWaiting
		if err := proto.Decode(f, &msg); err != nil {
			h.logger.Warn("malformed put_to_waiting", zap.Error(err))
			return
		}
		h.repo.ToWaiting(h.room, msg.Username)
	default:
		h.logger.Warn("unknown gameserver message type", zap.String("type", f.Type()))
	}
}
