// Package command turns a line of player input into a structured Action.
package command

import "github.com/cory-johannsen/wsmud/internal/game/world"

// Categories for organizing commands in help output.
const (
	CategoryMovement      = "movement"
	CategoryCommunication = "communication"
	CategorySystem        = "system"
)

// Handler identifiers mapping commands to the Action they produce.
const (
	HandlerMove   = "move"
	HandlerGo     = "go"
	HandlerSay    = "say"
	HandlerRename = "name"
	HandlerHelp   = "help"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the command's argument shape in help output.
	Usage string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command (movement, communication, system).
	Category string
	// Handler selects the Action the command produces.
	Handler string
}

// BuiltinCommands returns every command the interpreter understands.
// Movement commands come first, one per canonical direction, each aliased
// by its first letter.
func BuiltinCommands() []Command {
	cmds := make([]Command, 0, len(world.StandardDirections)+4)
	for _, d := range world.StandardDirections {
		name := string(d)
		cmds = append(cmds, Command{
			Name:     name,
			Aliases:  []string{name[:1]},
			Usage:    name,
			Help:     "Move " + name,
			Category: CategoryMovement,
			Handler:  HandlerMove,
		})
	}
	return append(cmds,
		Command{Name: "go", Usage: "go [exit]", Help: "Moves through the named exit, even one that is not a compass direction.", Category: CategoryMovement, Handler: HandlerGo},
		Command{Name: "say", Usage: "say [text]", Help: `Says the given text in the room you are in. You can also just write "text`, Category: CategoryCommunication, Handler: HandlerSay},
		Command{Name: "name", Usage: "name [new name]", Help: "Changes your name.", Category: CategorySystem, Handler: HandlerRename},
		Command{Name: "help", Usage: "help", Help: "Shows this text.", Category: CategorySystem, Handler: HandlerHelp},
	)
}
