package playerclient

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tkahng/tactoe/proto"
)

func TestController_ServerAssignedMultiWaitsForSecondUser(t *testing.T) {
	c := NewController()
	c.BeginWait()
	f, _ := proto.ToFrame(proto.ServerAssigned{Type: proto.TypeServerAssigned, GameType: proto.GameTypeMulti})
	c.HandleFrame(f)
	assert.Equal(t, StateWaitingForSecondUser, c.State())
}

func TestController_ServerAssignedSingleGoesToPlaying(t *testing.T) {
	c := NewController()
	c.BeginWait()
	f, _ := proto.ToFrame(proto.ServerAssigned{Type: proto.TypeServerAssigned, GameType: proto.GameTypeSingle})
	c.HandleFrame(f)
	assert.Equal(t, StatePlaying, c.State())
}

func TestController_FinishedStatusReturnsToIdle(t *testing.T) {
	c := NewController()
	winner := 1
	f, _ := proto.ToFrame(proto.ShowGameStatus{
		Type:       proto.TypeShowGameStatus,
		GameStatus: proto.GameStatusFinished,
		YourMark:   1,
		Winner:     &winner,
	})
	c.HandleFrame(f)
	assert.Equal(t, StateIdle, c.State())
}

func TestController_OpponentEscapedReturnsToIdle(t *testing.T) {
	c := NewController()
	c.setState(StatePlaying)
	f, _ := proto.ToFrame(proto.OpponentEscaped{Type: proto.TypeOpponentEscaped, GameStatus: proto.GameStatusFinished})
	c.HandleFrame(f)
	assert.Equal(t, StateIdle, c.State())
}

func TestHandleCommand_ParsesPlaceMark(t *testing.T) {
	a, b := pipeStub(t)
	defer a.Close()
	defer b.Close()

	// Send over a net.Pipe blocks until the peer reads, so the command runs
	// in its own goroutine while b receives.
	errCh := make(chan error, 1)
	go func() { errCh <- HandleCommand("1 2", a) }()

	assert := assert.New(t)
	f, err := b.conn.Receive()
	assert.NoError(err)
	assert.Equal(proto.TypePlaceMark, f.Type())
	assert.NoError(<-errCh)
}

func TestHandleCommand_Exit(t *testing.T) {
	a, _ := pipeStub(t)
	defer a.Close()
	err := HandleCommand("/exit", a)
	assert.ErrorIs(t, err, ErrExit)
}
