package adminfeed

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// pushInterval is how often /api/stats/stream pushes a fresh snapshot.
const pushInterval = 2 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (s *Server) routesWithStream() {
	s.routes()
	s.mux.HandleFunc("/api/stats/stream", s.handleStatsStream)
}

// handleStatsStream upgrades to a websocket and pushes a stats snapshot
// every pushInterval until the client disconnects.
func (s *Server) handleStatsStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(pushInterval)
	defer ticker.Stop()

	for range ticker.C {
		stats := s.repo.Stats()
		resp := statsResponse{
			ConnectedPlayers:  atomic.LoadInt64(s.connectedPlayers),
			FreeAny:           stats.FreeAny,
			FreeMulti:         stats.FreeMulti,
			WaitingByUsername: stats.WaitingByUsername,
			AllChatrooms:      stats.All,
			GeneratedAt:       time.Now().UTC().Format(time.RFC3339),
		}
		payload, err := json.Marshal(resp)
		if err != nil {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
