// Package server exposes a table over HTTP and websockets.
//
// Reads are answered from a replica kept current by the Hub; writes are
// forwarded to the authority and answered with the view that resulted.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/lox/holdemroom/internal/game"
)

// Commander is the write side of a table.
type Commander interface {
	Join(ctx context.Context, seat int, ownerID string, bankroll int) error
	Leave(ctx context.Context, seat int) error
	StartGame(ctx context.Context, seat int) error
	Act(ctx context.Context, seat int, action game.Action) error
	Reset(ctx context.Context) error
}

// Server represents the HTTP and WebSocket server
type Server struct {
	config   *Config
	commands Commander
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *log.Logger
}

// NewServer creates a server that writes through commands and reads from hub.
func NewServer(config *Config, commands Commander, hub *Hub, logger *log.Logger) *Server {
	return &Server{
		config:   config,
		commands: commands,
		hub:      hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// observers are read-only; any origin may watch
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.WithPrefix("server"),
	}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/ws", s.handleWebSocket)

	r.Route("/table", func(r chi.Router) {
		r.Get("/", s.handleTable)
		r.Post("/start", s.handleStart)
		r.Post("/reset", s.handleReset)

		r.Get("/pots", s.handlePots)
		r.Get("/pots/{index}", s.handlePot)

		r.Route("/seats/{seat}", func(r chi.Router) {
			r.Get("/hand", s.handleHand)
			r.Post("/join", s.handleJoin)
			r.Post("/leave", s.handleLeave)
			r.Post("/action", s.handleAction)
		})
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", srv.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("Shutting down server")
	return srv.Shutdown(shutdownCtx)
}

// handleWebSocket upgrades an observer. ?holder=true makes it a token holder.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	holder := r.URL.Query().Get("holder") == "true" || r.URL.Query().Get("holder") == "1"

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s.hub, holder, s.logger)
	s.hub.Add(client)
	client.Start()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}
