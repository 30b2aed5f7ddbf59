// Package gameserver implements the per-connection session orchestrator
// that runs on a game-server process: single- and multi-player sessions,
// the reconnect window, and the control messages sent back to the broker
// (spec §4.8).
package gameserver

import (
	"sync"

	"github.com/tkahng/tactoe/board"
	"github.com/tkahng/tactoe/proto"
	"github.com/tkahng/tactoe/transport"
)

// computerUsername is the synthetic opponent in a single-player session.
const computerUsername = "computer"

// session holds the mutable state shared by single- and multi-player
// sessions: the board (nil until both players are known, for multiplayer),
// the transports of currently-connected clients keyed by username, and the
// change/abort flags the original implementation polls on every loop tick.
type session struct {
	mu sync.Mutex

	user1, user2 string
	board        *board.Board

	clients      map[string]*transport.Transport
	hasNewChange bool
	abortGame    bool
}

func newSession() *session {
	return &session{
		clients:      make(map[string]*transport.Transport),
		hasNewChange: true,
	}
}

// registerClient records username's transport and marks the session
// changed, so the next status broadcast reaches the fresh connection too.
func (s *session) registerClient(username string, t *transport.Transport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[username] = t
	s.hasNewChange = true
}

// unregisterClient drops username's transport, e.g. ahead of a reconnect
// wait, without touching board state.
func (s *session) unregisterClient(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, username)
}

// hasClient reports whether username currently has a live transport
// registered.
func (s *session) hasClient(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.clients[username]
	return ok
}

// finished reports whether the board exists and has concluded.
func (s *session) finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board != nil && s.board.Finished()
}

// aborted reports whether a player asked to cancel this game outright.
func (s *session) aborted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.abortGame
}

// handleMessage applies a decoded client frame to session state: a move, a
// cancellation, a reconnect ping (which just forces a refreshed broadcast),
// or a chat line forwarded verbatim to every other connected client.
func (s *session) handleMessage(f transport.Frame, username string) {
	switch f.Type() {
	case proto.TypePlaceMark:
		var msg proto.PlaceMark
		if err := proto.Decode(f, &msg); err != nil {
			return
		}
		s.mu.Lock()
		if s.board != nil {
			if err := s.board.Place(msg.Username, msg.Row, msg.Col); err == nil {
				s.hasNewChange = true
			}
		}
		s.mu.Unlock()

	case proto.TypeCancelGame:
		s.mu.Lock()
		s.abortGame = true
		s.mu.Unlock()

	case proto.TypeReconnect:
		s.mu.Lock()
		s.hasNewChange = true
		s.mu.Unlock()

	case proto.TypeChat:
		var msg proto.Chat
		if err := proto.Decode(f, &msg); err != nil {
			return
		}
		echo, err := proto.ToFrame(msg)
		if err != nil {
			return
		}
		s.mu.Lock()
		for peer, t := range s.clients {
			if peer == username {
				continue
			}
			_ = t.Send(echo)
		}
		s.mu.Unlock()
	}
}

// sendStatus broadcasts the current board to every connected client,
// skipping the broadcast for clients with nothing new to see (unless the
// game just finished, which is always (re-)announced).
func (s *session) sendStatus() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.board == nil {
		return
	}

	finished := s.board.Finished()
	hadChange := s.hasNewChange
	s.hasNewChange = false
	if !finished && !hadChange {
		return
	}

	for username, t := range s.clients {
		status := proto.ShowGameStatus{
			Type:         proto.TypeShowGameStatus,
			GameBoard:    cellsToInts(s.board.Cells()),
			YourMark:     int(s.board.MarkOf(username)),
			OpponentMark: int(s.board.OpponentMarkOf(username)),
			CurrentUser:  int(s.board.CurrentMark()),
		}
		if finished {
			status.GameStatus = proto.GameStatusFinished
			status.Winner = proto.IntPtr(int(s.board.Winner()))
		} else {
			status.GameStatus = proto.GameStatusRunning
		}

		f, err := proto.ToFrame(status)
		if err != nil {
			continue
		}
		_ = t.Send(f)
	}
}

// broadcast sends f to every currently-connected client, ignoring send
// errors (a dead peer will surface its own disconnect independently).
func (s *session) broadcast(f transport.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.clients {
		_ = t.Send(f)
	}
}

func cellsToInts(cells [3][3]board.Mark) [3][3]int {
	var out [3][3]int
	for i := range cells {
		for j := range cells[i] {
			out[i][j] = int(cells[i][j])
		}
	}
	return out
}
