package battlesnake

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/brensch/snekpilot/game"
	"github.com/brensch/snekpilot/logging"
	"github.com/brensch/snekpilot/policy"
)

// Server answers Battlesnake API calls with the decision policy.
type Server struct {
	policy *policy.Policy
	info   InfoResponse
	log    *slog.Logger
}

func NewServer(p *policy.Policy, info InfoResponse, logger *slog.Logger) *Server {
	if p == nil {
		p = policy.New(policy.DefaultConfig())
	}
	if logger == nil {
		logger = logging.Discard()
	}
	if info.APIVersion == "" {
		info.APIVersion = "1"
	}
	return &Server{policy: p, info: info, log: logger}
}

// DefaultInfo is the snake's appearance when none is configured.
func DefaultInfo() InfoResponse {
	return InfoResponse{
		APIVersion: "1",
		Author:     "snekpilot",
		Color:      "#00cc66",
		Head:       "default",
		Tail:       "default",
		Version:    "1.0.0",
	}
}

// Handler routes the four API endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/start", s.handleStart)
	mux.HandleFunc("/move", s.handleMove)
	mux.HandleFunc("/end", s.handleEnd)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, s.info)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(w, r)
	if !ok {
		return
	}
	s.log.Info("game started", "game", req.Game.ID, "turn", req.Turn, "you", req.You.Name,
		"width", req.Board.Width, "height", req.Board.Height)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, ok := decode(w, r)
	if !ok {
		return
	}

	resp, d := s.Move(req)
	s.log.Debug("move",
		"game", req.Game.ID,
		"turn", req.Turn,
		"move", resp.Move,
		"reason", d.Reason,
		"ok", d.OK,
		"path", len(d.Path),
		"elapsed", time.Since(start),
	)
	writeJSON(w, resp)
}

// Move decides the response for one /move request.
func (s *Server) Move(req GameRequest) (MoveResponse, policy.Decision) {
	in := ToInput(req.Board, req.You)
	d := s.policy.Decide(in)
	dir := d.Direction
	if !d.OK {
		dir = Fallback(in)
		s.log.Info("no decision", "game", req.Game.ID, "turn", req.Turn, "reason", d.Reason, "fallback", dir)
	}
	return MoveResponse{Move: moveName(dir), Shout: d.Reason}, d
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(w, r)
	if !ok {
		return
	}

	youAlive := false
	for _, snake := range req.Board.Snakes {
		if snake.ID == req.You.ID {
			youAlive = true
			break
		}
	}
	result := "lost"
	if youAlive {
		result = "won"
	} else if len(req.Board.Snakes) == 0 {
		result = "draw"
	}

	s.log.Info("game ended", "game", req.Game.ID, "turn", req.Turn, "result", result)
	w.WriteHeader(http.StatusOK)
}

func moveName(d game.Direction) string {
	if !d.Valid() {
		return "up"
	}
	return d.String()
}

func decode(w http.ResponseWriter, r *http.Request) (GameRequest, bool) {
	var req GameRequest
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return req, false
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
