package playerclient

import (
	"fmt"
	"sync"

	"github.com/tkahng/tactoe/proto"
	"github.com/tkahng/tactoe/transport"
)

// State is the controller's local view of where the player currently
// stands, driven entirely by frames received from the server.
type State int

const (
	StateIdle State = iota
	StateWaitingForServer
	StateWaitingForSecondUser
	StatePlaying
)

func (s State) String() string {
	switch s {
	case StateWaitingForServer:
		return "waiting_for_server"
	case StateWaitingForSecondUser:
		return "waiting_for_second_user"
	case StatePlaying:
		return "playing"
	default:
		return "idle"
	}
}

// Controller applies incoming server frames to a local state machine and
// prints a terminal-friendly rendering of each update. It holds no
// transport of its own; HandleFrame is driven by whatever reads frames off
// the wire (typically a loop around Stub.Receive).
type Controller struct {
	mu    sync.Mutex
	state State
}

// NewController starts in StateIdle.
func NewController() *Controller {
	return &Controller{state: StateIdle}
}

// State returns the controller's current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// BeginWait marks the start of a matchmaking request, before any server
// frame has arrived.
func (c *Controller) BeginWait() {
	c.setState(StateWaitingForServer)
}

// HandleFrame updates state and renders f per spec §6.3.
func (c *Controller) HandleFrame(f transport.Frame) {
	switch f.Type() {
	case proto.TypeServerAssigned:
		var msg proto.ServerAssigned
		_ = proto.Decode(f, &msg)
		if msg.GameType == proto.GameTypeMulti {
			fmt.Println("A free server has been found. Waiting for second player...")
			c.setState(StateWaitingForSecondUser)
		} else {
			c.setState(StatePlaying)
		}

	case proto.TypeShowGameStatus:
		var msg proto.ShowGameStatus
		_ = proto.Decode(f, &msg)
		c.setState(StatePlaying)
		renderBoard(msg)
		if msg.GameStatus == proto.GameStatusFinished {
			announceOutcome(msg)
			c.setState(StateIdle)
		} else {
			fmt.Println("your turn:", msg.CurrentUser == msg.YourMark)
		}

	case proto.TypeServerCrashed:
		fmt.Println("Server crashed. Returning to main menu.")
		c.setState(StateIdle)

	case proto.TypeOpponentEscaped:
		fmt.Println("Opponent disconnected and did not return. Returning to main menu.")
		c.setState(StateIdle)

	case proto.TypeGameChanged:
		fmt.Println("Left the matchmaking queue.")
		c.setState(StateIdle)

	case proto.TypeChat:
		var msg proto.Chat
		_ = proto.Decode(f, &msg)
		fmt.Printf("[chat] %s: %s\n", msg.Username, msg.TextMessage)
	}
}

func renderBoard(msg proto.ShowGameStatus) {
	fmt.Println("game status:", msg.GameStatus)
	for _, row := range msg.GameBoard {
		fmt.Println(row)
	}
	fmt.Println("your mark:", msg.YourMark, "opponent mark:", msg.OpponentMark)
}

func announceOutcome(msg proto.ShowGameStatus) {
	if msg.Winner == nil {
		return
	}
	switch {
	case *msg.Winner == 0:
		fmt.Println("WITHDRAW")
	case *msg.Winner == msg.YourMark:
		fmt.Println("YOU WIN")
	default:
		fmt.Println("YOU LOSE")
	}
}
