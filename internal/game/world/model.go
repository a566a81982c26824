// Package world provides the world model: rooms, exits, directions, and the
// placement of connected players within rooms.
package world

import (
	"fmt"
	"strings"
)

// Direction is a canonical movement token or a named exit.
type Direction string

// Canonical directions. Each is also reachable through its first letter.
const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
	Up    Direction = "up"
	Down  Direction = "down"
	In    Direction = "in"
	Out   Direction = "out"
)

// StandardDirections contains every canonical direction.
var StandardDirections = []Direction{
	North, South, East, West,
	Up, Down, In, Out,
}

// IsStandard reports whether d is one of the eight canonical directions.
func (d Direction) IsStandard() bool {
	for _, sd := range StandardDirections {
		if d == sd {
			return true
		}
	}
	return false
}

// Opposite returns the reverse of a canonical direction.
// For named exits, it returns an empty string.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	case Up:
		return Down
	case Down:
		return Up
	case In:
		return Out
	case Out:
		return In
	default:
		return ""
	}
}

// Exit is a directed edge from one room to another.
type Exit struct {
	// Direction is the token a player uses to take this exit.
	Direction Direction
	// Target is the name of the destination room.
	Target string
}

// Room is a named node in the world graph. Rooms are immutable once the
// Manager has been built.
type Room struct {
	// Name uniquely identifies the room and doubles as its display title.
	Name string
	// Description is shown to players who look around.
	Description string
	// Exits are kept in world-file order.
	Exits []Exit
}

// ExitForDirection returns the exit in the given direction, if one exists.
//
// Postcondition: Returns (exit, true) if found, or (Exit{}, false) otherwise.
func (r *Room) ExitForDirection(dir Direction) (Exit, bool) {
	for _, e := range r.Exits {
		if e.Direction == dir {
			return e, true
		}
	}
	return Exit{}, false
}

// ExitNames returns the direction tokens of every exit in table order.
func (r *Room) ExitNames() []string {
	names := make([]string, 0, len(r.Exits))
	for _, e := range r.Exits {
		names = append(names, string(e.Direction))
	}
	return names
}

// Definition is the construction input for a world: every room plus the
// room new players start in.
type Definition struct {
	StartRoom string
	Rooms     []*Room
}

// Validate checks the construction preconditions of a world.
//
// Postcondition: Returns nil if valid, or an error describing every violation.
func (d *Definition) Validate() error {
	if len(d.Rooms) == 0 {
		return fmt.Errorf("world must contain at least one room")
	}

	var errs []string
	names := make(map[string]bool, len(d.Rooms))
	for i, room := range d.Rooms {
		if room == nil {
			errs = append(errs, fmt.Sprintf("room #%d is nil", i))
			continue
		}
		if room.Name == "" {
			errs = append(errs, fmt.Sprintf("room #%d: name must not be empty", i))
			continue
		}
		if names[room.Name] {
			errs = append(errs, fmt.Sprintf("duplicate room name %q", room.Name))
		}
		names[room.Name] = true
		if room.Description == "" {
			errs = append(errs, fmt.Sprintf("room %q: description must not be empty", room.Name))
		}
	}

	if d.StartRoom == "" {
		errs = append(errs, "start_room must not be empty")
	} else if !names[d.StartRoom] {
		errs = append(errs, fmt.Sprintf("start_room %q not found in rooms", d.StartRoom))
	}

	for _, room := range d.Rooms {
		if room == nil || room.Name == "" {
			continue
		}
		seen := make(map[Direction]bool, len(room.Exits))
		for _, exit := range room.Exits {
			switch {
			case exit.Direction == "":
				errs = append(errs, fmt.Sprintf("room %q: exit direction must not be empty", room.Name))
			case seen[exit.Direction]:
				errs = append(errs, fmt.Sprintf("room %q: duplicate exit %q", room.Name, exit.Direction))
			}
			seen[exit.Direction] = true

			if exit.Target == "" {
				errs = append(errs, fmt.Sprintf("room %q: exit %q has empty target", room.Name, exit.Direction))
			} else if !names[exit.Target] {
				errs = append(errs, fmt.Sprintf("room %q: exit %q targets unknown room %q", room.Name, exit.Direction, exit.Target))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid world: %s", strings.Join(errs, "; "))
	}
	return nil
}
