package broker

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tkahng/tactoe/chatroom"
	"github.com/tkahng/tactoe/proto"
	"github.com/tkahng/tactoe/transport"
)

// Broker owns the two listeners a broker process exposes: one for
// game-server control connections, one for player connections.
type Broker struct {
	Repo             *chatroom.Repository
	ConnectedPlayers *int64
	logger           *zap.Logger

	gameServerListener *transport.Listener
	playerListener     *transport.Listener
}

// New builds a Broker listening on gameServerAddr and playerAddr.
func New(gameServerAddr, playerAddr string, logger *zap.Logger) (*Broker, error) {
	gsListener, err := transport.Listen(gameServerAddr)
	if err != nil {
		return nil, fmt.Errorf("broker: listen game-server port: %w", err)
	}
	plListener, err := transport.Listen(playerAddr)
	if err != nil {
		gsListener.Close()
		return nil, fmt.Errorf("broker: listen player port: %w", err)
	}

	return &Broker{
		Repo:               chatroom.NewRepository(),
		ConnectedPlayers:   new(int64),
		logger:             logger,
		gameServerListener: gsListener,
		playerListener:     plListener,
	}, nil
}

// Run accepts game-server and player connections, each until its listener
// is closed. It blocks until the player listener is closed; call Close from
// another goroutine to stop both.
func (b *Broker) Run() {
	go b.acceptGameServers()
	b.acceptPlayers()
}

// Close stops both accept loops.
func (b *Broker) Close() {
	b.gameServerListener.Close()
	b.playerListener.Close()
}

func (b *Broker) acceptGameServers() {
	for {
		conn, err := b.gameServerListener.Accept()
		if err != nil {
			b.logger.Info("game-server listener stopped", zap.Error(err))
			return
		}
		go b.handshakeGameServer(conn)
	}
}

func (b *Broker) handshakeGameServer(conn *transport.Transport) {
	f, err := conn.Receive()
	if err != nil || f.Type() != proto.TypeHandshake {
		b.logger.Warn("game-server failed to handshake", zap.Error(err))
		conn.Close()
		return
	}

	var hs proto.Handshake
	if err := proto.Decode(f, &hs); err != nil {
		b.logger.Warn("malformed handshake", zap.Error(err))
		conn.Close()
		return
	}

	addr := fmt.Sprintf("%s:%d", hs.Host, hs.Port)
	room := chatroom.New(addr)
	b.logger.Info("game-server registered", zap.String("room_id", room.RoomID), zap.String("addr", addr))

	handler := NewGameServerHandler(conn, room, b.Repo, b.logger)
	go handler.Run()
}

func (b *Broker) acceptPlayers() {
	for {
		conn, err := b.playerListener.Accept()
		if err != nil {
			b.logger.Info("player listener stopped", zap.Error(err))
			return
		}
		handler := NewClientHandler(conn, b.Repo, b.ConnectedPlayers, b.logger)
		go handler.Run()
	}
}
