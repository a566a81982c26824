package world

import (
	"fmt"
)

// Manager owns the static room graph and the dynamic placement of players.
//
// Room lookups are safe from any goroutine because rooms never change after
// construction. Placement methods mutate shared state and must only be
// called from the single goroutine that owns the world (the game engine
// loop).
type Manager struct {
	rooms     map[string]*Room
	order     []*Room
	startRoom string

	// placement maps a player name to its room; "" means in transit.
	placement map[string]string
	// arrival preserves the order players entered the world.
	arrival []string
}

// NewManager validates def and indexes its rooms by name.
//
// Precondition: def must be non-nil.
// Postcondition: Returns a Manager with no players, or an error if def is invalid.
func NewManager(def *Definition) (*Manager, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	m := &Manager{
		rooms:     make(map[string]*Room, len(def.Rooms)),
		order:     make([]*Room, 0, len(def.Rooms)),
		startRoom: def.StartRoom,
		placement: make(map[string]string),
	}
	for _, room := range def.Rooms {
		m.rooms[room.Name] = room
		m.order = append(m.order, room)
	}
	return m, nil
}

// GetRoom returns the room with the given name.
//
// Postcondition: Returns (room, true) if found, or (nil, false) otherwise.
func (m *Manager) GetRoom(name string) (*Room, bool) {
	r, ok := m.rooms[name]
	return r, ok
}

// ExitTarget resolves the destination of leaving room through dir.
//
// Postcondition: Returns (target, true) if room exists and has that exit, or ("", false).
func (m *Manager) ExitTarget(room string, dir Direction) (string, bool) {
	r, ok := m.rooms[room]
	if !ok {
		return "", false
	}
	exit, ok := r.ExitForDirection(dir)
	if !ok {
		return "", false
	}
	return exit.Target, true
}

// StartRoom returns the name of the room new players enter.
func (m *Manager) StartRoom() string {
	return m.startRoom
}

// RoomCount returns the number of rooms in the world.
func (m *Manager) RoomCount() int {
	return len(m.rooms)
}

// Rooms returns every room in definition order.
func (m *Manager) Rooms() []*Room {
	out := make([]*Room, len(m.order))
	copy(out, m.order)
	return out
}

// AddPlayer adds a player to the world without placing them in a room.
//
// Postcondition: The player is in transit, or an error is returned if the name is taken.
func (m *Manager) AddPlayer(name string) error {
	if name == "" {
		return fmt.Errorf("player name must not be empty")
	}
	if _, exists := m.placement[name]; exists {
		return fmt.Errorf("player %q already in world", name)
	}
	m.placement[name] = ""
	m.arrival = append(m.arrival, name)
	return nil
}

// PlacePlayer makes the player resident in room.
//
// Precondition: name must have been added with AddPlayer.
// Postcondition: Location(name) reports room, or an error is returned and nothing changes.
func (m *Manager) PlacePlayer(name, room string) error {
	if _, exists := m.placement[name]; !exists {
		return fmt.Errorf("player %q not in world", name)
	}
	if _, ok := m.rooms[room]; !ok {
		return fmt.Errorf("room %q not found", room)
	}
	m.placement[name] = room
	return nil
}

// ClearPlayer puts the player in transit and returns the room they left.
func (m *Manager) ClearPlayer(name string) (string, error) {
	room, exists := m.placement[name]
	if !exists {
		return "", fmt.Errorf("player %q not in world", name)
	}
	m.placement[name] = ""
	return room, nil
}

// RemovePlayer deletes the player and returns their last known room.
//
// Postcondition: Returns (room, true) if the player was present, or ("", false).
func (m *Manager) RemovePlayer(name string) (string, bool) {
	room, exists := m.placement[name]
	if !exists {
		return "", false
	}
	delete(m.placement, name)
	for i, n := range m.arrival {
		if n == name {
			m.arrival = append(m.arrival[:i], m.arrival[i+1:]...)
			break
		}
	}
	return room, true
}

// RenamePlayer moves a player's placement from oldName to newName. The
// player keeps their position in arrival order.
//
// Postcondition: On success oldName is absent and newName holds the same room.
func (m *Manager) RenamePlayer(oldName, newName string) error {
	room, exists := m.placement[oldName]
	if !exists {
		return fmt.Errorf("player %q not in world", oldName)
	}
	if oldName == newName {
		return fmt.Errorf("player %q already has that name", oldName)
	}
	if _, taken := m.placement[newName]; taken {
		return fmt.Errorf("player %q already in world", newName)
	}
	delete(m.placement, oldName)
	m.placement[newName] = room
	for i, n := range m.arrival {
		if n == oldName {
			m.arrival[i] = newName
			break
		}
	}
	return nil
}

// Location returns the player's current room. An empty room with ok set
// means the player is in transit.
func (m *Manager) Location(name string) (room string, ok bool) {
	room, ok = m.placement[name]
	return room, ok
}

// PlayersIn returns the names of players resident in room, in arrival
// order, never including exclude. Players in transit are never listed.
//
// Postcondition: Returns a non-nil slice; may be empty.
func (m *Manager) PlayersIn(room, exclude string) []string {
	names := make([]string, 0)
	if room == "" {
		return names
	}
	for _, name := range m.arrival {
		if name == exclude {
			continue
		}
		if m.placement[name] == room {
			names = append(names, name)
		}
	}
	return names
}

// PlayerCount returns the number of players in the world, including those
// in transit.
func (m *Manager) PlayerCount() int {
	return len(m.placement)
}
