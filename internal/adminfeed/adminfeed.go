// Package adminfeed is a small HTTP surface exposing pool occupancy and
// live connection counts for operators, peripheral to match routing itself.
package adminfeed

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tkahng/tactoe/chatroom"
)

// Cors applies a permissive CORS policy (any origin, GET and OPTIONS) to the
// admin endpoints.
func Cors(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type")
		h.ServeHTTP(w, r)
	})
}

// Server exposes /api/health and /api/stats over plain HTTP, backed by a
// live chatroom.Repository snapshot and a counter of connected players.
type Server struct {
	repo             *chatroom.Repository
	connectedPlayers *int64
	mux              *http.ServeMux
}

// New builds a Server reading pool sizes from repo. connectedPlayers is a
// shared counter the caller increments/decrements as players connect and
// disconnect.
func New(repo *chatroom.Repository, connectedPlayers *int64) *Server {
	s := &Server{repo: repo, connectedPlayers: connectedPlayers, mux: http.NewServeMux()}
	s.routesWithStream()
	return s
}

// Handler returns the wrapped, CORS-enabled HTTP handler.
func (s *Server) Handler() http.Handler {
	return Cors(s.mux)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/stats", s.handleStats)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// statsResponse is the JSON shape returned by /api/stats.
type statsResponse struct {
	ConnectedPlayers  int64  `json:"connected_players"`
	FreeAny           int    `json:"free_any"`
	FreeMulti         int    `json:"free_multi"`
	WaitingByUsername int    `json:"waiting_by_username"`
	AllChatrooms      int    `json:"all_chatrooms"`
	GeneratedAt       string `json:"generated_at"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.repo.Stats()
	resp := statsResponse{
		ConnectedPlayers:  atomic.LoadInt64(s.connectedPlayers),
		FreeAny:           stats.FreeAny,
		FreeMulti:         stats.FreeMulti,
		WaitingByUsername: stats.WaitingByUsername,
		AllChatrooms:      stats.All,
		GeneratedAt:       time.Now().UTC().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
