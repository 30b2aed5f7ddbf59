package gameserver

import (
	"github.com/tkahng/tactoe/board"
	"github.com/tkahng/tactoe/transport"
)

// multiPlayerSession waits for a second human player before a board.Board
// exists at all; started reports whether that has happened yet.
type multiPlayerSession struct {
	*session
}

func newMultiPlayerSession(user1 string) *multiPlayerSession {
	s := newSession()
	s.user1 = user1
	return &multiPlayerSession{session: s}
}

// started reports whether a second player has joined and the board exists.
func (s *multiPlayerSession) started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board != nil
}

// initialize creates the board once the second player is known.
func (s *multiPlayerSession) initialize(user2 string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user2 = user2
	s.board = board.New(s.user1, user2)
	s.hasNewChange = true
	s.abortGame = false
}

// run registers client, then alternates status broadcasts and client
// message handling until the board is finished or the client disconnects.
func (s *multiPlayerSession) run(client *transport.Transport, username string) error {
	s.registerClient(username, client)

	for {
		s.sendStatus()
		if s.finished() {
			return nil
		}

		f, err := client.Receive()
		if err != nil {
			return err
		}
		s.handleMessage(f, username)
	}
}
