package broker

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tkahng/tactoe/chatroom"
	"github.com/tkahng/tactoe/proto"
	"github.com/tkahng/tactoe/transport"
)

func TestGameServerHandler_AppliesPoolTransitions(t *testing.T) {
	a, b := net.Pipe()
	gsConn := transport.New(a)
	peer := transport.New(b)
	defer peer.Close()

	repo := chatroom.NewRepository()
	room := chatroom.New("127.0.0.1:9100")
	handler := NewGameServerHandler(gsConn, room, repo, zap.NewNop())
	assert.Equal(t, 1, repo.Stats().FreeAny)

	go handler.Run()

	f, err := proto.ToFrame(proto.PutToMultiFree{Type: proto.TypePutToMultiFree})
	require.NoError(t, err)
	require.NoError(t, peer.Send(f))

	require.Eventually(t, func() bool {
		return repo.Stats().FreeMulti == 1 && repo.Stats().FreeAny == 0
	}, 2*time.Second, 10*time.Millisecond)

	f, err = proto.ToFrame(proto.PutToWaiting{Type: proto.TypePutToWaiting, Username: "alice"})
	require.NoError(t, err)
	require.NoError(t, peer.Send(f))

	require.Eventually(t, func() bool {
		return repo.Stats().WaitingByUsername == 1 && repo.Stats().FreeMulti == 0
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, peer.Close())

	require.Eventually(t, func() bool {
		return repo.Stats().All == 0
	}, 2*time.Second, 10*time.Millisecond)
}
