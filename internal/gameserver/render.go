package gameserver

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/wsmud/internal/game/command"
	"github.com/cory-johannsen/wsmud/internal/game/world"
)

// EnglishList joins items the way a sentence lists them: "a", "a and b",
// "a, b and c". An empty list yields "".
func EnglishList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

func renderSay(name, text string) string {
	return fmt.Sprintf("<p>%s says %s</p>", name, text)
}

func renderRenamed(oldName, newName string) string {
	return fmt.Sprintf("<p>%s changed their name to %s</p>", oldName, newName)
}

const (
	msgSameName  = "<p>That's already your name.</p>"
	msgNameTaken = "<p>There's already a player with that name.</p>"
)

func renderNoExit(dir world.Direction, exits []string) string {
	return fmt.Sprintf("<p>Unable to go %s. Valid exits are %s.</p>", dir, strings.Join(exits, ", "))
}

func renderLeaves(name string, dir world.Direction) string {
	return fmt.Sprintf("<p>%s leaves to the %s.</p>", name, dir)
}

func renderEnters(name string) string {
	return fmt.Sprintf("<p>%s enters the room.</p>", name)
}

func renderEntered(room string) string {
	return fmt.Sprintf("<p>You have entered the %s</p>", room)
}

func renderLeft(name string) string {
	return fmt.Sprintf("<p>%s left the room.</p>", name)
}

func renderRoom(room *world.Room) string {
	return fmt.Sprintf("<h3>%s</h3>\n<p>%s</p>", room.Name, room.Description)
}

func renderOccupants(names []string) string {
	return fmt.Sprintf("<p>You see %s.</p>", EnglishList(names))
}

// RenderHelp builds the help text from the commands in r. Movement commands
// collapse into a single "[direction]" entry.
func RenderHelp(r *command.Registry) string {
	var b strings.Builder
	b.WriteString("<h3>Help</h3>\n<p>These are the basic commands:</p>")

	movement := false
	for _, cmd := range r.Commands() {
		if cmd.Handler == command.HandlerMove {
			if !movement {
				movement = true
				fmt.Fprintf(&b, "\n<p>[direction] Moves in that direction. Look at the room description for valid exits.</p>")
			}
			continue
		}
		fmt.Fprintf(&b, "\n<p>%s %s</p>", cmd.Usage, cmd.Help)
	}
	return b.String()
}
