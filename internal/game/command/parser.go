package command

import (
	"strings"

	"github.com/cory-johannsen/wsmud/internal/game/world"
)

// quote starts a line of speech without the say keyword.
const quote = '"'

// SplitWords splits text into at most n fields at single space characters.
// Each of the first n-1 fields is the text before the next space; the last
// field is the entire remainder, spaces included. Consecutive spaces yield
// empty fields.
//
// Postcondition: Returns between 1 and max(n, 1) fields whose joined form (with " ") equals text.
func SplitWords(text string, n int) []string {
	if n <= 1 {
		return []string{text}
	}
	fields := make([]string, 0, n)
	for len(fields) < n-1 {
		idx := strings.IndexByte(text, ' ')
		if idx < 0 {
			break
		}
		fields = append(fields, text[:idx])
		text = text[idx+1:]
	}
	return append(fields, text)
}

// Parser interprets lines of input against the command registry. It holds
// no per-call state and is safe for concurrent use.
type Parser struct {
	registry *Registry
}

// NewParser creates a Parser backed by r.
//
// Precondition: r must be non-nil.
func NewParser(r *Registry) *Parser {
	return &Parser{registry: r}
}

// Registry returns the command table the parser resolves against.
func (p *Parser) Registry() *Registry {
	return p.registry
}

// Parse turns one line into an Action. Rules, first match wins:
//
//  1. a line starting with '"' speaks the rest verbatim; "say <text>" speaks text
//  2. "name <new>" renames to the next whitespace-delimited word
//  3. "help [topic]" shows help
//  4. a line that is exactly a movement name or alias moves that way
//  5. "go <exit>" moves through exit, resolving aliases first
//  6. anything else is None
//
// Postcondition: Never returns nil.
func (p *Parser) Parse(line string) Action {
	if line == "" {
		return None{}
	}
	if line[0] == quote {
		return speak(line[1:])
	}

	fields := SplitWords(line, 2)
	rest := ""
	if len(fields) == 2 {
		rest = fields[1]
	}

	cmd, ok := p.registry.Resolve(fields[0])
	if !ok {
		return None{}
	}

	switch cmd.Handler {
	case HandlerSay:
		return speak(rest)
	case HandlerRename:
		words := strings.Fields(rest)
		if len(words) == 0 {
			return None{}
		}
		return Rename{NewName: words[0]}
	case HandlerHelp:
		return Help{Topic: strings.TrimSpace(rest)}
	case HandlerMove:
		if fields[0] != line {
			return None{}
		}
		return Move{Direction: world.Direction(cmd.Name)}
	case HandlerGo:
		if rest == "" {
			return None{}
		}
		if dir, ok := p.registry.Direction(rest); ok {
			return Move{Direction: dir}
		}
		return Move{Direction: world.Direction(rest)}
	default:
		return None{}
	}
}

func speak(text string) Action {
	if text == "" {
		return None{}
	}
	return Speak{Text: text}
}
