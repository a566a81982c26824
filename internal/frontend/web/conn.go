package web

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cory-johannsen/wsmud/internal/config"
	"github.com/cory-johannsen/wsmud/internal/game/session"
	"github.com/cory-johannsen/wsmud/internal/observability"
	"github.com/cory-johannsen/wsmud/internal/protocol"
)

const (
	transport           = "websocket"
	disconnectTimeout   = 5 * time.Second
	defaultPingInterval = 5 * time.Second
	defaultWriteTimeout = 10 * time.Second
)

// conn is one browser game session. The read loop runs on the HTTP handler
// goroutine; all writes happen on the write pump.
type conn struct {
	ws      *websocket.Conn
	id      string
	box     *session.Mailbox
	cfg     config.WebConfig
	game    Game
	logger  *zap.Logger
	metrics *observability.Metrics
}

func newConn(ws *websocket.Conn, cfg config.WebConfig, game Game, logger *zap.Logger, metrics *observability.Metrics) *conn {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaultPingInterval
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	id := uuid.NewString()
	return &conn{
		ws:      ws,
		id:      id,
		box:     session.NewMailbox(id, cfg.SendBuffer),
		cfg:     cfg,
		game:    game,
		logger:  logger.With(zap.String("conn_id", id)),
		metrics: metrics,
	}
}

// serve joins the game and runs the session until the client goes away, a
// write fails, or ctx is cancelled.
//
// Postcondition: The player has been disconnected from the game and the socket is closed.
func (c *conn) serve(ctx context.Context, remoteAddr string) {
	start := time.Now()
	defer c.ws.Close()
	defer c.box.Close()

	c.metrics.ConnectionOpened(transport)
	defer c.metrics.ConnectionClosed(transport)

	name, err := c.game.Connect(ctx, c.box)
	defer c.disconnect()
	if err != nil {
		c.logger.Warn("joining game failed", zap.Error(err))
		return
	}
	c.logger.Info("websocket player joined",
		zap.String("player", name),
		zap.String("remote_addr", remoteAddr),
	)

	sessCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(2)
	defer func() {
		cancel()
		wg.Wait()
		c.logger.Info("websocket session ended", zap.Duration("duration", time.Since(start)))
	}()
	go func() {
		defer wg.Done()
		c.writePump(sessCtx, cancel)
	}()
	go func() {
		defer wg.Done()
		<-sessCtx.Done()
		_ = c.ws.Close()
	}()

	c.readLoop(sessCtx)
}

// readLoop forwards each well-formed message frame to the game. Frames that
// are not JSON message envelopes are ignored.
func (c *conn) readLoop(ctx context.Context) {
	if c.cfg.ReadLimit > 0 {
		c.ws.SetReadLimit(c.cfg.ReadLimit)
	}
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read failed", zap.Error(err))
			}
			return
		}
		line, ok := protocol.DecodeCommand(data)
		if !ok {
			continue
		}
		if err := c.game.Input(ctx, c.id, line); err != nil {
			c.logger.Debug("forwarding input failed", zap.Error(err))
			return
		}
	}
}

// writePump delivers queued messages and periodic pings. The ticker is
// stopped exactly once, when the pump exits.
func (c *conn) writePump(ctx context.Context, cancel context.CancelFunc) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		var frame []byte
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.box.Messages():
			if !ok {
				return
			}
			frame = protocol.EncodeMessage(msg)
		case <-ticker.C:
			frame = protocol.EncodePing()
		}

		_ = c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
		if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
			c.logger.Debug("websocket write failed", zap.Error(err))
			cancel()
			return
		}
	}
}

func (c *conn) disconnect() {
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	if err := c.game.Disconnect(ctx, c.id); err != nil {
		c.logger.Debug("disconnect not delivered", zap.Error(err))
	}
}
