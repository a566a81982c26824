package command

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/wsmud/internal/game/world"
)

func TestSplitWords(t *testing.T) {
	tests := map[string]struct {
		text string
		n    int
		exp  []string
	}{
		"go living room":     {text: "go living room", n: 2, exp: []string{"go", "living room"}},
		"single word":        {text: "north", n: 2, exp: []string{"north"}},
		"three fields":       {text: "name Bob Smith", n: 3, exp: []string{"name", "Bob", "Smith"}},
		"remainder kept":     {text: "a b c d", n: 3, exp: []string{"a", "b", "c d"}},
		"double space":       {text: "say  hi", n: 2, exp: []string{"say", " hi"}},
		"trailing space":     {text: "say ", n: 2, exp: []string{"say", ""}},
		"n of one":           {text: "a b", n: 1, exp: []string{"a b"}},
		"n of zero":          {text: "a b", n: 0, exp: []string{"a b"}},
		"empty":              {text: "", n: 2, exp: []string{""}},
		"tab is not a space": {text: "say\thi", n: 2, exp: []string{"say\thi"}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.exp, SplitWords(tt.text, tt.n))
		})
	}
}

func TestPropertySplitWordsPreservesText(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringMatching(`[a-z ]{0,40}`).Draw(t, "text")
		n := rapid.IntRange(1, 6).Draw(t, "n")

		fields := SplitWords(text, n)
		if len(fields) < 1 || len(fields) > n {
			t.Fatalf("SplitWords(%q, %d) returned %d fields", text, n, len(fields))
		}
		if joined := strings.Join(fields, " "); joined != text {
			t.Fatalf("SplitWords(%q, %d) joined back to %q", text, n, joined)
		}
		for _, f := range fields[:len(fields)-1] {
			if strings.Contains(f, " ") {
				t.Fatalf("non-final field %q contains a space", f)
			}
		}
	})
}

func TestParse(t *testing.T) {
	p := NewParser(DefaultRegistry())

	tests := map[string]struct {
		line string
		exp  Action
	}{
		"say":                    {line: "say hello there", exp: Speak{Text: "hello there"}},
		"say keeps spacing":      {line: "say  two  spaces ", exp: Speak{Text: " two  spaces "}},
		"quote":                  {line: `"hello there`, exp: Speak{Text: "hello there"}},
		"quote wins over name":   {line: `"name Bob`, exp: Speak{Text: "name Bob"}},
		"say without text":       {line: "say", exp: None{}},
		"bare quote":             {line: `"`, exp: None{}},
		"name":                   {line: "name Alice", exp: Rename{NewName: "Alice"}},
		"name takes one word":    {line: "name Alice Smith", exp: Rename{NewName: "Alice"}},
		"name extra whitespace":  {line: "name   Alice", exp: Rename{NewName: "Alice"}},
		"name without argument":  {line: "name", exp: None{}},
		"help":                   {line: "help", exp: Help{}},
		"help topic":             {line: "help movement", exp: Help{Topic: "movement"}},
		"full direction":         {line: "south", exp: Move{Direction: world.South}},
		"short direction":        {line: "n", exp: Move{Direction: world.North}},
		"in alias":               {line: "i", exp: Move{Direction: world.In}},
		"out alias":              {line: "o", exp: Move{Direction: world.Out}},
		"direction with args":    {line: "north now", exp: None{}},
		"go alias":               {line: "go u", exp: Move{Direction: world.Up}},
		"go canonical":           {line: "go west", exp: Move{Direction: world.West}},
		"go raw exit":            {line: "go living room", exp: Move{Direction: "living room"}},
		"go without exit":        {line: "go", exp: None{}},
		"case sensitive":         {line: "NORTH", exp: None{}},
		"unknown":                {line: "dance wildly", exp: None{}},
		"empty":                  {line: "", exp: None{}},
		"leading space":          {line: " north", exp: None{}},
		"say is not a direction": {line: "s hello", exp: None{}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.exp, p.Parse(tt.line))
		})
	}
}

func TestParse_EveryDirectionAndAlias(t *testing.T) {
	p := NewParser(DefaultRegistry())
	for _, d := range world.StandardDirections {
		name := string(d)
		assert.Equal(t, Move{Direction: d}, p.Parse(name))
		assert.Equal(t, Move{Direction: d}, p.Parse(name[:1]))
		assert.Equal(t, Move{Direction: d}, p.Parse("go "+name[:1]))
	}
}

func TestActionKinds(t *testing.T) {
	assert.Equal(t, "speak", Speak{}.Kind())
	assert.Equal(t, "rename", Rename{}.Kind())
	assert.Equal(t, "help", Help{}.Kind())
	assert.Equal(t, "move", Move{}.Kind())
	assert.Equal(t, "none", None{}.Kind())
}

func TestPropertyParseNeverPanicsAndNeverNil(t *testing.T) {
	p := NewParser(DefaultRegistry())
	rapid.Check(t, func(t *rapid.T) {
		line := rapid.String().Draw(t, "line")
		if p.Parse(line) == nil {
			t.Fatalf("Parse(%q) returned nil", line)
		}
	})
}

func TestPropertySayPreservesMessage(t *testing.T) {
	p := NewParser(DefaultRegistry())
	rapid.Check(t, func(t *rapid.T) {
		msg := rapid.StringMatching(`[a-zA-Z][a-zA-Z ,.!?]{0,40}`).Draw(t, "msg")
		assert.Equal(t, Speak{Text: msg}, p.Parse("say "+msg))
		assert.Equal(t, Speak{Text: msg}, p.Parse(`"`+msg))
	})
}
