// Package gameserver runs the world: it applies player actions to the world
// and session registry and serializes every mutation through one loop.
package gameserver

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/cory-johannsen/wsmud/internal/game/broadcast"
	"github.com/cory-johannsen/wsmud/internal/game/command"
	"github.com/cory-johannsen/wsmud/internal/game/session"
	"github.com/cory-johannsen/wsmud/internal/game/world"
)

// DefaultGuestPrefix is prepended to the counter in generated player names.
const DefaultGuestPrefix = "Guest"

// Option configures Actions.
type Option func(*Actions)

// WithGuestPrefix overrides DefaultGuestPrefix.
func WithGuestPrefix(prefix string) Option {
	return func(a *Actions) {
		if prefix != "" {
			a.guestPrefix = prefix
		}
	}
}

// Actions applies joins, leaves, and parsed commands to the world and the
// session registry, emitting messages through the router.
//
// Actions is not safe for concurrent use. The Engine owns it and calls it
// from a single goroutine.
type Actions struct {
	world    *world.Manager
	sessions *session.Registry
	router   *broadcast.Router
	parser   *command.Parser
	logger   *zap.Logger

	help        string
	guestPrefix string
	guestSeq    int
}

// NewActions creates Actions over the given world and registry.
//
// Precondition: all arguments must be non-nil.
func NewActions(
	w *world.Manager,
	sessions *session.Registry,
	router *broadcast.Router,
	parser *command.Parser,
	logger *zap.Logger,
	opts ...Option,
) *Actions {
	a := &Actions{
		world:       w,
		sessions:    sessions,
		router:      router,
		parser:      parser,
		logger:      logger,
		help:        RenderHelp(parser.Registry()),
		guestPrefix: DefaultGuestPrefix,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Join gives the connection a fresh guest name and walks it into the start
// room as if arriving from nowhere.
//
// Postcondition: Returns the assigned name, or an error with no state changed.
func (a *Actions) Join(h session.Handle) (string, error) {
	name := a.nextGuestName()
	if err := a.sessions.Register(name, h); err != nil {
		return "", fmt.Errorf("registering %s: %w", name, err)
	}
	if err := a.world.AddPlayer(name); err != nil {
		a.sessions.Unregister(name)
		return "", fmt.Errorf("adding %s to world: %w", name, err)
	}

	a.logger.Info("player joined",
		zap.String("player", name),
		zap.String("conn_id", h.ID()),
	)
	a.enter(name, a.world.StartRoom())
	return name, nil
}

// nextGuestName advances the counter past any value whose name is held by a
// player who renamed to it.
func (a *Actions) nextGuestName() string {
	for {
		a.guestSeq++
		name := a.guestPrefix + strconv.Itoa(a.guestSeq)
		if _, taken := a.sessions.HandleFor(name); taken {
			continue
		}
		if _, taken := a.world.Location(name); taken {
			continue
		}
		return name
	}
}

// Leave removes the player bound to connID and tells their last room.
//
// Postcondition: Returns false if the connection was already gone.
func (a *Actions) Leave(connID string) bool {
	name, ok := a.sessions.NameFor(connID)
	if !ok {
		return false
	}
	room, _ := a.world.RemovePlayer(name)
	a.sessions.Unregister(name)

	a.logger.Info("player left",
		zap.String("player", name),
		zap.String("conn_id", connID),
		zap.String("room", room),
	)
	a.router.BroadcastToRoom(room, name, renderLeft(name))
	return true
}

// Handle interprets one line from connID and executes it under the
// connection's current name.
//
// Postcondition: Returns the parsed action; None if the connection is unknown.
func (a *Actions) Handle(connID, line string) command.Action {
	name, ok := a.sessions.NameFor(connID)
	if !ok {
		a.logger.Debug("input from unknown connection", zap.String("conn_id", connID))
		return command.None{}
	}
	action := a.parser.Parse(line)
	a.Execute(name, action)
	return action
}

// Execute performs action on behalf of name.
func (a *Actions) Execute(name string, action command.Action) {
	switch act := action.(type) {
	case command.Speak:
		a.Speak(name, act.Text)
	case command.Rename:
		a.Rename(name, act.NewName)
	case command.Move:
		a.Move(name, act.Direction)
	case command.Help:
		a.Help(name)
	case command.None:
	default:
		a.logger.Warn("unhandled action",
			zap.String("player", name),
			zap.String("kind", action.Kind()),
		)
	}
}

// Speak says text to everyone in the speaker's room, speaker included.
func (a *Actions) Speak(name, text string) {
	room, _ := a.world.Location(name)
	a.router.BroadcastToRoom(room, "", renderSay(name, text))
}

// Rename rekeys the player in the registry and the world together.
//
// Postcondition: Returns true if the player now answers to newName.
func (a *Actions) Rename(name, newName string) bool {
	switch result := a.sessions.Rename(name, newName); result {
	case session.RenameOK:
	case session.RenameSameName:
		a.router.SendDirect(name, msgSameName)
		return false
	case session.RenameTaken:
		a.router.SendDirect(name, msgNameTaken)
		return false
	default:
		a.logger.Warn("rename rejected",
			zap.String("player", name),
			zap.String("new_name", newName),
			zap.Stringer("result", result),
		)
		return false
	}

	if err := a.world.RenamePlayer(name, newName); err != nil {
		a.sessions.Rename(newName, name)
		a.logger.Error("world rename failed; registry restored",
			zap.String("player", name),
			zap.String("new_name", newName),
			zap.Error(err),
		)
		a.router.SendDirect(name, msgNameTaken)
		return false
	}

	a.logger.Info("player renamed",
		zap.String("old_name", name),
		zap.String("new_name", newName),
	)
	room, _ := a.world.Location(newName)
	a.router.BroadcastToRoom(room, "", renderRenamed(name, newName))
	return true
}

// Move walks the player through the exit in dir, or tells them which exits
// exist.
func (a *Actions) Move(name string, dir world.Direction) {
	from, ok := a.world.Location(name)
	if !ok {
		return
	}
	target, ok := a.world.ExitTarget(from, dir)
	if !ok {
		var exits []string
		if room, ok := a.world.GetRoom(from); ok {
			exits = room.ExitNames()
		}
		a.router.SendDirect(name, renderNoExit(dir, exits))
		return
	}

	if _, err := a.world.ClearPlayer(name); err != nil {
		a.logger.Error("clearing player for move", zap.String("player", name), zap.Error(err))
		return
	}
	a.router.BroadcastToRoom(from, name, renderLeaves(name, dir))
	a.logger.Debug("player moving",
		zap.String("player", name),
		zap.String("from", from),
		zap.String("to", target),
	)
	a.enter(name, target)
}

// enter announces name to room, makes them resident, and shows them around.
// The player must be in transit.
func (a *Actions) enter(name, room string) {
	a.router.BroadcastToRoom(room, name, renderEnters(name))
	if err := a.world.PlacePlayer(name, room); err != nil {
		a.logger.Error("placing player", zap.String("player", name), zap.String("room", room), zap.Error(err))
		return
	}
	a.router.SendDirect(name, renderEntered(room))
	a.Look(name)
}

// Look describes the player's room and who else is in it.
func (a *Actions) Look(name string) {
	location, _ := a.world.Location(name)
	room, ok := a.world.GetRoom(location)
	if !ok {
		return
	}
	a.router.SendDirect(name, renderRoom(room))
	if others := a.world.PlayersIn(location, name); len(others) > 0 {
		a.router.SendDirect(name, renderOccupants(others))
	}
}

// Help sends the command summary.
func (a *Actions) Help(name string) {
	a.router.SendDirect(name, a.help)
}

// PlayerCount returns the number of connected players.
func (a *Actions) PlayerCount() int {
	return a.sessions.Count()
}
