package session

import (
	"fmt"
	"sort"
)

// RenameResult is the outcome of Registry.Rename.
type RenameResult int

const (
	// RenameOK means the player now answers to the new name.
	RenameOK RenameResult = iota
	// RenameTaken means another connected player already has the new name.
	RenameTaken
	// RenameSameName means the new name equals the current one.
	RenameSameName
	// RenameUnknown means the old name is not connected.
	RenameUnknown
)

// String returns a short label for logs.
func (r RenameResult) String() string {
	switch r {
	case RenameOK:
		return "ok"
	case RenameTaken:
		return "already-taken"
	case RenameSameName:
		return "same-name"
	case RenameUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("RenameResult(%d)", int(r))
	}
}

// Registry is the authoritative map from player name to live connection.
// It keeps a reverse index from connection ID to name so a connection can
// find its current identity after renames.
//
// Registry is not safe for concurrent use; it is owned by the game engine
// loop alongside the world Manager.
type Registry struct {
	handles map[string]Handle // name → handle
	names   map[string]string // conn ID → name
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		handles: make(map[string]Handle),
		names:   make(map[string]string),
	}
}

// Register binds name to h.
//
// Precondition: name must be non-empty; h must be non-nil.
// Postcondition: Returns an error and changes nothing if the name or connection is already registered.
func (r *Registry) Register(name string, h Handle) error {
	if name == "" {
		return fmt.Errorf("player name must not be empty")
	}
	if h == nil {
		return fmt.Errorf("player %q: nil connection", name)
	}
	if _, exists := r.handles[name]; exists {
		return fmt.Errorf("player %q already connected", name)
	}
	if existing, exists := r.names[h.ID()]; exists {
		return fmt.Errorf("connection %s already registered as %q", h.ID(), existing)
	}
	r.handles[name] = h
	r.names[h.ID()] = name
	return nil
}

// Unregister removes name and returns the handle it was bound to.
//
// Postcondition: Returns (handle, true) if name was registered, or (nil, false).
func (r *Registry) Unregister(name string) (Handle, bool) {
	h, exists := r.handles[name]
	if !exists {
		return nil, false
	}
	delete(r.handles, name)
	delete(r.names, h.ID())
	return h, true
}

// Rename moves the connection bound to oldName under newName. Both indexes
// change together; on any result other than RenameOK nothing changes.
func (r *Registry) Rename(oldName, newName string) RenameResult {
	if oldName == newName {
		return RenameSameName
	}
	h, exists := r.handles[oldName]
	if !exists {
		return RenameUnknown
	}
	if _, taken := r.handles[newName]; taken {
		return RenameTaken
	}
	delete(r.handles, oldName)
	r.handles[newName] = h
	r.names[h.ID()] = newName
	return RenameOK
}

// HandleFor returns the connection of a connected player.
func (r *Registry) HandleFor(name string) (Handle, bool) {
	h, ok := r.handles[name]
	return h, ok
}

// NameFor returns the current player name of a connection.
func (r *Registry) NameFor(connID string) (string, bool) {
	name, ok := r.names[connID]
	return name, ok
}

// Names returns every connected player name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handles))
	for name := range r.handles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of connected players.
func (r *Registry) Count() int {
	return len(r.handles)
}
