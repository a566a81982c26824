package telnet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/wsmud/internal/config"
	"github.com/cory-johannsen/wsmud/internal/game/session"
	"github.com/cory-johannsen/wsmud/internal/observability"
)

const (
	transport         = "telnet"
	disconnectTimeout = 5 * time.Second
	defaultKeepalive  = 30 * time.Second
)

// Game is the engine surface a Telnet session drives.
type Game interface {
	Connect(ctx context.Context, h session.Handle) (string, error)
	Input(ctx context.Context, connID, line string) error
	Disconnect(ctx context.Context, connID string) error
}

// GameHandler is a SessionHandler that joins each Telnet client to the game.
type GameHandler struct {
	game    Game
	cfg     config.TelnetConfig
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewGameHandler creates a GameHandler.
//
// Precondition: game and logger must be non-nil. metrics may be nil.
func NewGameHandler(game Game, cfg config.TelnetConfig, logger *zap.Logger, metrics *observability.Metrics) *GameHandler {
	if cfg.KeepaliveInterval <= 0 {
		cfg.KeepaliveInterval = defaultKeepalive
	}
	return &GameHandler{
		game:    game,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
	}
}

// HandleSession joins the client, forwards each input line to the game, and
// writes game output until either side closes.
//
// Postcondition: The player has been disconnected from the game and conn is closed.
func (h *GameHandler) HandleSession(ctx context.Context, conn *Conn) error {
	id := uuid.NewString()
	box := session.NewMailbox(id, h.cfg.SendBuffer)
	defer box.Close()

	h.metrics.ConnectionOpened(transport)
	defer h.metrics.ConnectionClosed(transport)

	name, err := h.game.Connect(ctx, box)
	defer h.disconnect(id)
	if err != nil {
		return fmt.Errorf("joining game: %w", err)
	}
	h.logger.Info("telnet player joined",
		zap.String("player", name),
		zap.String("conn_id", id),
		zap.String("remote_addr", conn.RemoteAddr().String()),
	)

	sessCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(2)
	defer func() {
		cancel()
		wg.Wait()
	}()
	go func() {
		defer wg.Done()
		h.writePump(sessCtx, cancel, conn, box)
	}()
	go func() {
		defer wg.Done()
		<-sessCtx.Done()
		_ = conn.Close()
	}()

	for {
		line, err := conn.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || sessCtx.Err() != nil {
				return nil
			}
			return fmt.Errorf("reading from %s: %w", id, err)
		}
		if err := h.game.Input(sessCtx, id, line); err != nil {
			return fmt.Errorf("forwarding input from %s: %w", id, err)
		}
	}
}

// writePump drains the mailbox to the client and sends keepalives. A write
// failure ends the session.
func (h *GameHandler) writePump(ctx context.Context, cancel context.CancelFunc, conn *Conn, box *session.Mailbox) {
	ticker := time.NewTicker(h.cfg.KeepaliveInterval)
	defer ticker.Stop()

	for {
		var err error
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-box.Messages():
			if !ok {
				return
			}
			err = conn.WriteLine(RenderHTML(msg))
		case <-ticker.C:
			err = conn.WriteNOP()
		}
		if err != nil {
			h.logger.Debug("telnet write failed", zap.String("conn_id", box.ID()), zap.Error(err))
			cancel()
			return
		}
	}
}

func (h *GameHandler) disconnect(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	if err := h.game.Disconnect(ctx, id); err != nil {
		h.logger.Debug("disconnect not delivered", zap.String("conn_id", id), zap.Error(err))
	}
}
