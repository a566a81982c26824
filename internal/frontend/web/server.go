// Package web serves the browser client and its WebSocket game endpoint.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cory-johannsen/wsmud/internal/config"
	"github.com/cory-johannsen/wsmud/internal/game/session"
	"github.com/cory-johannsen/wsmud/internal/observability"
)

const shutdownTimeout = 5 * time.Second

// Game is the engine surface a WebSocket session drives.
type Game interface {
	Connect(ctx context.Context, h session.Handle) (string, error)
	Input(ctx context.Context, connID, line string) error
	Disconnect(ctx context.Context, connID string) error
}

// Server is the HTTP listener for static assets and game sessions.
type Server struct {
	cfg     config.WebConfig
	game    Game
	logger  *zap.Logger
	metrics *observability.Metrics

	upgrader websocket.Upgrader
	httpSrv  *http.Server

	ctx    context.Context
	cancel context.CancelFunc

	listener net.Listener
	sessions sync.WaitGroup
	mu       sync.Mutex
	running  bool
	stopping bool
}

// NewServer creates a Server. The game endpoint is mounted at cfg.Path and,
// when cfg.StaticDir is set, the directory is served at "/".
//
// Precondition: game and logger must be non-nil. metrics may be nil.
func NewServer(cfg config.WebConfig, game Game, logger *zap.Logger, metrics *observability.Metrics) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:     cfg,
		game:    game,
		logger:  logger,
		metrics: metrics,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		ctx:    ctx,
		cancel: cancel,
	}
	s.httpSrv = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+s.cfg.Path, s.handleGame)
	if s.cfg.StaticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(s.cfg.StaticDir)))
	}
	return mux
}

// ListenAndServe serves HTTP until Stop is called.
//
// Postcondition: Returns nil after Stop, or the listen error.
func (s *Server) ListenAndServe() error {
	listener, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr(), err)
	}

	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		listener.Close()
		return nil
	}
	s.listener = listener
	s.running = true
	s.mu.Unlock()

	s.logger.Info("web server listening",
		zap.String("addr", listener.Addr().String()),
		zap.String("game_path", s.cfg.Path),
		zap.String("static_dir", s.cfg.StaticDir),
	)

	if err := s.httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving http: %w", err)
	}
	return nil
}

// Stop shuts down the listener, ends every game session, and waits for
// them to finish. Safe to call more than once.
func (s *Server) Stop() {
	s.mu.Lock()
	wasRunning := s.running
	s.running = false
	s.stopping = true
	s.mu.Unlock()

	s.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		s.logger.Warn("http shutdown", zap.Error(err))
	}
	s.sessions.Wait()

	if wasRunning {
		s.logger.Info("web server stopped")
	}
}

// Addr returns the listening address, or "" if not yet listening.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// IsRunning reports whether the server is accepting connections.
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	// Sessions are only added under mu before Stop flags stopping, so Stop's
	// Wait never races an Add.
	s.mu.Lock()
	if s.stopping {
		s.mu.Unlock()
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}
	s.sessions.Add(1)
	s.mu.Unlock()
	defer s.sessions.Done()

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}
	newConn(ws, s.cfg, s.game, s.logger, s.metrics).serve(s.ctx, r.RemoteAddr)
}
