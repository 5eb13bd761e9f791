package watch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tilefall/internal/games/tilefall/core"
	"github.com/vovakirdan/tilefall/internal/multiplayer"
)

// Coordinator is the part of multiplayer.Coordinator the watch server uses.
type Coordinator interface {
	Send(msg multiplayer.CoordinatorMessage)
	Table(code string) (multiplayer.TableInfo, bool)
	Tables() []multiplayer.TableInfo
}

// TableSummary is the JSON view of an open table.
type TableSummary struct {
	Code      string         `json:"code"`
	Players   []string       `json:"players"`
	Watchers  int            `json:"watchers"`
	Moves     int            `json:"moves"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Remaining int            `json:"remaining"`
	CreatedAt time.Time      `json:"created_at"`
	Board     *core.Snapshot `json:"board,omitempty"`
	Rows      []string       `json:"rows,omitempty"`
}

func summarize(info multiplayer.TableInfo, withBoard bool) TableSummary {
	s := TableSummary{
		Code:      info.Code,
		Players:   names(info.Players),
		Watchers:  info.Watchers,
		Moves:     info.Moves,
		Width:     info.Board.Width,
		Height:    info.Board.Height,
		Remaining: info.Board.Remaining(),
		CreatedAt: info.CreatedAt,
	}
	if withBoard {
		board := info.Board
		s.Board = &board
		s.Rows = strings.Split(core.RenderASCII(board), "\n")
	}
	return s
}

// Server serves the table list and websocket watch streams.
type Server struct {
	coord    Coordinator
	sessions *multiplayer.SessionRegistry
	logger   *log.Logger
	router   *mux.Router
	upgrader websocket.Upgrader
	seq      atomic.Uint64
}

// NewServer creates a watch server. Watchers are registered in sessions so
// the coordinator can reach them like any other session.
func NewServer(coord Coordinator, sessions *multiplayer.SessionRegistry, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		coord:    coord,
		sessions: sessions,
		logger:   logger,
		router:   mux.NewRouter(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Watch streams are read-only, so any origin may subscribe.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/tables", s.handleListTables).Methods("GET")
	api.HandleFunc("/tables/{code}", s.handleGetTable).Methods("GET")

	s.router.HandleFunc("/ws/{code}", s.handleWatch).Methods("GET")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("starting watch server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err, ok := <-errc:
		if ok {
			return fmt.Errorf("watch server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down watch server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // Client may have gone away
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func tableCode(r *http.Request) string {
	return strings.ToUpper(strings.TrimSpace(mux.Vars(r)["code"]))
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	infos := s.coord.Tables()
	out := make([]TableSummary, 0, len(infos))
	for _, info := range infos {
		out = append(out, summarize(info, false))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	code := tableCode(r)
	info, ok := s.coord.Table(code)
	if code == "" || !ok {
		respondError(w, http.StatusNotFound, "table not found")
		return
	}
	respondJSON(w, http.StatusOK, summarize(info, true))
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	code := tableCode(r)
	if _, ok := s.coord.Table(code); code == "" || !ok {
		respondError(w, http.StatusNotFound, "table not found")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written an HTTP error.
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	id := multiplayer.SessionID(fmt.Sprintf("watch-%d", s.seq.Add(1)))
	client := newClient(id, conn, s.logger)
	if !s.sessions.Register(client) {
		conn.Close()
		return
	}
	s.logger.Info("watcher connected", "session", id, "table", code, "remote", r.RemoteAddr)

	s.coord.Send(multiplayer.WatchTableMsg{SessionID: id, Code: code})

	go client.writePump()
	go func() {
		client.readPump()
		client.finish()
		s.coord.Send(multiplayer.SessionDisconnectedMsg{SessionID: id})
		s.sessions.Unregister(id)
		client.closeSend()
		s.logger.Info("watcher disconnected", "session", id, "table", code, "dropped", client.Dropped())
	}()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"tables":   len(s.coord.Tables()),
		"sessions": s.sessions.Count(),
	})
}
