package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tablero/internal/dashboard"
	"tablero/internal/domain"
	"tablero/internal/live"
)

// History reads journaled snapshots. It is satisfied by the journal.
type History interface {
	Load(ctx context.Context, stream string, limit int) ([]domain.Snapshot, error)
}

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 5000
)

// BoardServer serves the board HTTP API.
type BoardServer struct {
	board   *live.Board
	ws      *live.Server
	history History
	log     *slog.Logger
	started time.Time
}

// NewBoardServer creates a new board HTTP server. history may be nil when
// the journal is disabled.
func NewBoardServer(board *live.Board, history History, log *slog.Logger) *BoardServer {
	if log == nil {
		log = slog.Default()
	}
	return &BoardServer{
		board:   board,
		ws:      live.NewServer(board, log),
		history: history,
		log:     log,
		started: time.Now(),
	}
}

// RegisterRoutes registers all API routes on the given router.
func (s *BoardServer) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/streams", s.handleStreams)
		r.Get("/streams/{name}", s.handleStream)
		r.Get("/streams/{name}/history", s.handleHistory)
		r.Get("/ws", s.ws.ServeHTTP)
	})
}

// Handler returns an http.Handler with CORS middleware.
func (s *BoardServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)
	s.RegisterRoutes(r)
	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *BoardServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := HealthResponse{
		Status:      "ok",
		Uptime:      humanize.RelTime(s.started, time.Now(), "", ""),
		Subscribers: s.board.Subscribers(),
		Streams:     make(map[string]dashboard.State),
	}
	for _, v := range s.board.Views() {
		resp.Streams[v.Name] = v.State
		switch v.State {
		case dashboard.StateLoaded:
			resp.Loaded++
		case dashboard.StateFailed:
			resp.Failed++
		}
	}
	writeJSON(w, resp)
}

func (s *BoardServer) handleStreams(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, StreamsResponse{Streams: s.board.Views()})
}

func (s *BoardServer) handleStream(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	v, ok := s.board.View(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown stream: "+name)
		return
	}
	writeJSON(w, v)
}

func (s *BoardServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, ok := s.board.View(name); !ok {
		writeError(w, http.StatusNotFound, "unknown stream: "+name)
		return
	}
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "journal disabled")
		return
	}

	limit := defaultHistoryLimit
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit: "+q)
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	polls, err := s.history.Load(r.Context(), name, limit)
	if err != nil {
		s.log.Error("loading history", "stream", name, "error", err)
		writeError(w, http.StatusInternalServerError, "loading history failed")
		return
	}
	writeJSON(w, HistoryResponse{Stream: name, Count: len(polls), Polls: polls})
}
