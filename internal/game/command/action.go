package command

import "github.com/cory-johannsen/wsmud/internal/game/world"

// Action is the closed set of things a line of input can ask for. Every
// component past the parser works on an Action, never on raw text.
type Action interface {
	// Kind returns a short label for logs and metrics.
	Kind() string
	isAction()
}

// Speak says Text to everyone in the speaker's room.
type Speak struct {
	Text string
}

// Rename changes the speaker's name to NewName.
type Rename struct {
	NewName string
}

// Help shows the command summary. Topic is accepted but unused.
type Help struct {
	Topic string
}

// Move leaves the current room through Direction, which may be a canonical
// direction or a raw exit name.
type Move struct {
	Direction world.Direction
}

// None is the result of input that asks for nothing.
type None struct{}

func (Speak) Kind() string  { return "speak" }
func (Rename) Kind() string { return "rename" }
func (Help) Kind() string   { return "help" }
func (Move) Kind() string   { return "move" }
func (None) Kind() string   { return "none" }

func (Speak) isAction()  {}
func (Rename) isAction() {}
func (Help) isAction()   {}
func (Move) isAction()   {}
func (None) isAction()   {}
