package gameserver

import (
	"github.com/tkahng/tactoe/board"
	"github.com/tkahng/tactoe/transport"
)

// singlePlayerSession pits username against a built-in opponent that always
// plays the first empty cell in row-major order on its turn.
type singlePlayerSession struct {
	*session
}

func newSinglePlayerSession(username string) *singlePlayerSession {
	s := newSession()
	s.user1 = username
	s.user2 = computerUsername
	s.board = board.New(username, computerUsername)
	return &singlePlayerSession{session: s}
}

// run registers client, then alternates status broadcasts, computer moves,
// and client message handling until the board is finished or the client
// disconnects. The caller is responsible for reacting to a non-nil error
// (almost always the client transport closing).
func (s *singlePlayerSession) run(client *transport.Transport, username string) error {
	s.registerClient(username, client)

	for {
		s.sendStatus()
		if s.finished() {
			return nil
		}
		if s.tryPlaceComputerMark() {
			continue
		}

		f, err := client.Receive()
		if err != nil {
			return err
		}
		s.handleMessage(f, username)
	}
}

// tryPlaceComputerMark plays the computer's turn if it is currently to
// move, returning true if it moved.
func (s *singlePlayerSession) tryPlaceComputerMark() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.board.MarkOf(computerUsername) != s.board.CurrentMark() {
		return false
	}
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			if s.board.Cells()[row][col] == board.Empty {
				if err := s.board.Place(computerUsername, row, col); err == nil {
					s.hasNewChange = true
					return true
				}
			}
		}
	}
	return false
}
