// Package broadcast delivers rendered messages to one player or to everyone
// standing in a room.
package broadcast

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/wsmud/internal/game/session"
	"github.com/cory-johannsen/wsmud/internal/game/world"
	"github.com/cory-johannsen/wsmud/internal/observability"
)

// Router fans messages out to connections. Delivery is fire-and-forget: a
// message that cannot be enqueued is logged and dropped, never retried.
//
// Router reads the world and registry without locking and must only be used
// from the goroutine that owns them.
type Router struct {
	world    *world.Manager
	sessions *session.Registry
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// NewRouter creates a Router.
//
// Precondition: w, sessions, and logger must be non-nil. metrics may be nil.
func NewRouter(w *world.Manager, sessions *session.Registry, logger *zap.Logger, metrics *observability.Metrics) *Router {
	return &Router{
		world:    w,
		sessions: sessions,
		logger:   logger,
		metrics:  metrics,
	}
}

// BroadcastToRoom sends message to every connected player resident in room
// except exclude. Pass "" for exclude to address everyone. A room of ""
// addresses nobody.
//
// Postcondition: Returns the number of connections the message was enqueued to.
func (r *Router) BroadcastToRoom(room, exclude, message string) int {
	if room == "" {
		return 0
	}
	sent := 0
	for _, name := range r.world.PlayersIn(room, exclude) {
		if r.deliver(name, message, observability.ScopeRoom) {
			sent++
		}
	}
	return sent
}

// SendDirect sends message to a single player.
//
// Postcondition: Returns true if the message was enqueued.
func (r *Router) SendDirect(player, message string) bool {
	return r.deliver(player, message, observability.ScopeDirect)
}

func (r *Router) deliver(player, message, scope string) bool {
	h, ok := r.sessions.HandleFor(player)
	if !ok {
		r.logger.Debug("dropping message for unknown player",
			zap.String("player", player),
			zap.String("scope", scope),
		)
		r.metrics.MessageDropped()
		return false
	}
	if err := h.Send(message); err != nil {
		r.logger.Debug("dropping message",
			zap.String("player", player),
			zap.String("conn_id", h.ID()),
			zap.String("scope", scope),
			zap.Error(err),
		)
		r.metrics.MessageDropped()
		return false
	}
	r.metrics.MessageSent(scope)
	return true
}
