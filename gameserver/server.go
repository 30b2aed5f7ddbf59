package gameserver

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tkahng/tactoe/internal/raceutil"
	"github.com/tkahng/tactoe/proto"
	"github.com/tkahng/tactoe/transport"
)

// reconnectWindow is how long a disconnected player's session is held open
// awaiting a reconnect before the opponent is told they escaped.
const reconnectWindow = 10 * time.Second

// pollStartedInterval is how often the multiplayer wait checks whether a
// second player has joined.
const pollStartedInterval = 1 * time.Second

// errChangeGameRequested signals the waiting player asked to leave the
// multiplayer queue before a second player arrived.
var errChangeGameRequested = errors.New("gameserver: change_game requested")

// sessionRunner is satisfied by both singlePlayerSession and
// multiPlayerSession via their embedded *session.
type sessionRunner interface {
	run(client *transport.Transport, username string) error
	finished() bool
	aborted() bool
	registerClient(username string, t *transport.Transport)
	unregisterClient(username string)
	hasClient(username string) bool
	broadcast(f transport.Frame)
}

// Server is one game-server process's orchestrator: it accepts player
// connections on a dynamic listening port and reports pool transitions
// back to the broker over a persistent control connection.
type Server struct {
	listener *transport.Listener
	control  *transport.Transport
	logger   *zap.Logger

	mu              sync.Mutex
	single          *singlePlayerSession
	multi           *multiPlayerSession
	reconnectCancel map[string]context.CancelFunc
}

// NewServer builds a Server that accepts players on listener and reports
// pool transitions on control (already handshaked with the broker).
func NewServer(listener *transport.Listener, control *transport.Transport, logger *zap.Logger) *Server {
	return &Server{
		listener:        listener,
		control:         control,
		logger:          logger,
		reconnectCancel: make(map[string]context.CancelFunc),
	}
}

// Run accepts player connections until the listener closes.
func (s *Server) Run() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.logger.Info("player listener stopped", zap.Error(err))
			return
		}
		go s.handleClient(conn)
	}
}

func (s *Server) handleClient(conn *transport.Transport) {
	defer conn.Close()

	f, err := conn.Receive()
	if err != nil {
		return
	}
	if f.Type() != proto.TypeStartGame {
		s.logger.Debug("unexpected first frame from player", zap.String("type", f.Type()))
		return
	}
	var start proto.StartGame
	if err := proto.Decode(f, &start); err != nil {
		s.logger.Warn("malformed start_game", zap.Error(err))
		return
	}

	s.cancelReconnect(start.Username)

	sess, err := s.acquireGame(conn, start.Username, start.GameType)
	if err != nil {
		s.logger.Debug("player left before a session was available", zap.String("username", start.Username), zap.Error(err))
		return
	}
	if sess == nil {
		// multiplayer wait was aborted by the player; already handled.
		return
	}

	runErr := sess.run(conn, start.Username)
	if runErr != nil && !sess.finished() && !sess.aborted() {
		if s.waitForReconnect(sess, start.Username) {
			return
		}
		sess.broadcast(mustFrame(proto.OpponentEscaped{
			Type:       proto.TypeOpponentEscaped,
			GameStatus: proto.GameStatusFinished,
		}))
	}

	s.teardown(sess)
	s.sendControl(proto.PutToFree{Type: proto.TypePutToFree})
}

// acquireGame implements spec §4.8 step 3: single-player sessions are
// created (or resumed) unconditionally; multiplayer sessions are created on
// first arrival and raced against the player abandoning the queue.
func (s *Server) acquireGame(conn *transport.Transport, username, gameType string) (sessionRunner, error) {
	if gameType == proto.GameTypeSingle {
		return s.acquireSingle(username), nil
	}
	return s.acquireMulti(conn, username)
}

func (s *Server) acquireSingle(username string) sessionRunner {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.single == nil {
		s.single = newSinglePlayerSession(username)
	}
	return s.single
}

func (s *Server) acquireMulti(conn *transport.Transport, username string) (sessionRunner, error) {
	s.mu.Lock()
	if s.multi != nil {
		m := s.multi
		s.mu.Unlock()
		if !m.started() {
			m.initialize(username)
		}
		return m, nil
	}
	m := newMultiPlayerSession(username)
	s.multi = m
	s.mu.Unlock()

	s.sendControl(proto.PutToMultiFree{Type: proto.TypePutToMultiFree})
	if err := conn.Send(mustFrame(proto.ServerAssigned{Type: proto.TypeServerAssigned, GameType: proto.GameTypeMulti})); err != nil {
		return nil, err
	}

	remain, err := s.waitForSecondPlayer(conn, m)
	if err != nil {
		return nil, err
	}
	if remain {
		return m, nil
	}

	_ = conn.Send(mustFrame(proto.GameChanged{Type: proto.TypeGameChanged, GameStatus: proto.GameStatusFinished}))
	s.mu.Lock()
	if s.multi == m {
		s.multi = nil
	}
	s.mu.Unlock()
	s.sendControl(proto.PutToFree{Type: proto.TypePutToFree})
	return nil, nil
}

// waitForSecondPlayer races a ticker poll for m.started() against the
// player's transport for a change_game frame.
func (s *Server) waitForSecondPlayer(conn *transport.Transport, m *multiPlayerSession) (bool, error) {
	ctx, cancel := context.WithCancel(context.Background())

	remain, err := raceutil.Race(
		func() {
			cancel()
			_ = conn.SetReadDeadline(time.Now())
		},
		func() (bool, error) { return pollUntilStarted(ctx, m), nil },
		func() (bool, error) {
			err := waitForChangeGame(conn)
			if errors.Is(err, errChangeGameRequested) {
				return false, nil
			}
			return false, err
		},
	)
	_ = conn.SetReadDeadline(time.Time{})
	return remain, err
}

func pollUntilStarted(ctx context.Context, m *multiPlayerSession) bool {
	ticker := time.NewTicker(pollStartedInterval)
	defer ticker.Stop()
	for {
		if m.started() {
			return true
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return false
		}
	}
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

// waitForReconnect releases username's transport slot and waits up to
// reconnectWindow for a fresh connection to cancel the wait. Returns true
// if the player reconnected in time.
func (s *Server) waitForReconnect(sess sessionRunner, username string) bool {
	sess.unregisterClient(username)

	ctx, cancel := context.WithTimeout(context.Background(), reconnectWindow)
	s.mu.Lock()
	s.reconnectCancel[username] = cancel
	s.mu.Unlock()

	s.sendControl(proto.PutToWaiting{Type: proto.TypePutToWaiting, Username: username})

	<-ctx.Done()
	reconnected := errors.Is(ctx.Err(), context.Canceled)

	s.mu.Lock()
	delete(s.reconnectCancel, username)
	s.mu.Unlock()
	cancel()

	return reconnected
}

// cancelReconnect cancels any pending reconnect wait for username, signaling
// the waiting goroutine that the player came back.
func (s *Server) cancelReconnect(username string) {
	s.mu.Lock()
	cancel, ok := s.reconnectCancel[username]
	if ok {
		delete(s.reconnectCancel, username)
	}
	s.mu.Unlock()
	if ok {
		cancel()
	}
}

// teardown clears whichever slot sess occupies, freeing it for the next
// player.
func (s *Server) teardown(sess sessionRunner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if single, ok := sess.(*singlePlayerSession); ok && s.single == single {
		s.single = nil
	}
	if multi, ok := sess.(*multiPlayerSession); ok && s.multi == multi {
		s.multi = nil
	}
}

func (s *Server) sendControl(v any) {
	f, err := proto.ToFrame(v)
	if err != nil {
		s.logger.Error("encoding control message", zap.Error(err))
		return
	}
	if err := s.control.Send(f); err != nil {
		s.logger.Warn("control channel send failed", zap.Error(err))
	}
}

func mustFrame(v any) transport.Frame {
	f, err := proto.ToFrame(v)
	if err != nil {
		panic(err)
	}
	return f
}
