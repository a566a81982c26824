package gameserver

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/cory-johannsen/wsmud/internal/game/session"
	"github.com/cory-johannsen/wsmud/internal/observability"
)

// ErrEngineStopped is returned when an event is submitted after Run returned.
var ErrEngineStopped = errors.New("game engine stopped")

// DefaultQueueSize is the event queue capacity used when none is given.
const DefaultQueueSize = 256

// Engine is the single writer for the world and session registry. Every
// join, line of input, and disconnect becomes an event on one queue, and Run
// processes each to completion before starting the next.
type Engine struct {
	actions *Actions
	logger  *zap.Logger
	metrics *observability.Metrics

	events chan func()
	done   chan struct{}
}

// NewEngine creates an Engine that drives actions.
//
// Precondition: actions and logger must be non-nil. metrics may be nil.
// Postcondition: queueSize <= 0 uses DefaultQueueSize.
func NewEngine(actions *Actions, logger *zap.Logger, metrics *observability.Metrics, queueSize int) *Engine {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Engine{
		actions: actions,
		logger:  logger,
		metrics: metrics,
		events:  make(chan func(), queueSize),
		done:    make(chan struct{}),
	}
}

// Run processes events until ctx is cancelled. It must be called once.
//
// Postcondition: Returns nil after ctx is cancelled; later submissions fail with ErrEngineStopped.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.done)
	e.logger.Info("game engine started", zap.Int("queue_size", cap(e.events)))

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("game engine stopped", zap.Int("pending_events", len(e.events)))
			return nil
		case fn := <-e.events:
			e.process(fn)
			e.metrics.SetQueueDepth(len(e.events))
			e.metrics.SetPlayersOnline(e.actions.PlayerCount())
		}
	}
}

// process runs one event, keeping the loop alive if it panics.
func (e *Engine) process(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("game event panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()
	fn()
}

// submit enqueues fn, blocking only while the queue is full.
func (e *Engine) submit(ctx context.Context, fn func()) error {
	select {
	case <-e.done:
		return ErrEngineStopped
	default:
	}
	select {
	case e.events <- fn:
		e.metrics.SetQueueDepth(len(e.events))
		return nil
	case <-e.done:
		return ErrEngineStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// call enqueues fn and waits for the loop to run it.
func (e *Engine) call(ctx context.Context, fn func()) error {
	const (
		pending int32 = iota
		running
		abandoned
	)
	var state atomic.Int32
	finished := make(chan struct{})
	if err := e.submit(ctx, func() {
		defer close(finished)
		if state.CompareAndSwap(pending, running) {
			fn()
		}
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-e.done:
		select {
		case <-finished:
			return nil
		default:
			return ErrEngineStopped
		}
	case <-ctx.Done():
		if state.CompareAndSwap(pending, abandoned) {
			return ctx.Err()
		}
		// fn already started on the loop; its effects stand.
		<-finished
		return nil
	}
}

// Connect joins h to the world and returns the player name it was given.
// Messages for the join are already enqueued on h when Connect returns.
// If ctx ends before the join reaches the front of the queue, Connect
// returns ctx's error and the join is skipped, so h never enters the world.
func (e *Engine) Connect(ctx context.Context, h session.Handle) (string, error) {
	var (
		name    string
		joinErr error
	)
	if err := e.call(ctx, func() {
		name, joinErr = e.actions.Join(h)
	}); err != nil {
		return "", fmt.Errorf("connecting %s: %w", h.ID(), err)
	}
	if joinErr != nil {
		return "", joinErr
	}
	return name, nil
}

// Input queues one line of player input from connID.
func (e *Engine) Input(ctx context.Context, connID, line string) error {
	return e.submit(ctx, func() {
		action := e.actions.Handle(connID, line)
		e.metrics.CommandHandled(action.Kind())
	})
}

// Disconnect queues the departure of connID. Disconnecting a connection
// that already left is a no-op.
func (e *Engine) Disconnect(ctx context.Context, connID string) error {
	return e.submit(ctx, func() {
		e.actions.Leave(connID)
	})
}

// Do runs fn on the engine loop with exclusive access to the Actions and
// waits for it to finish. fn is skipped if ctx ends before it starts.
func (e *Engine) Do(ctx context.Context, fn func(*Actions)) error {
	return e.call(ctx, func() { fn(e.actions) })
}
