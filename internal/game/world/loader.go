package world

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_world.yaml
var defaultWorldYAML []byte

// yamlWorldFile is the top-level YAML structure for world files.
type yamlWorldFile struct {
	World yamlWorld `yaml:"world"`
}

// yamlWorld is the YAML representation of a world.
type yamlWorld struct {
	StartRoom string     `yaml:"start_room"`
	Rooms     []yamlRoom `yaml:"rooms"`
}

// yamlRoom is the YAML representation of a room.
type yamlRoom struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Exits       []yamlExit `yaml:"exits"`
}

// yamlExit is the YAML representation of an exit.
type yamlExit struct {
	Direction string `yaml:"direction"`
	Target    string `yaml:"target"`
}

// LoadFromFile reads and validates a world YAML file.
//
// Precondition: path must point to a YAML world file.
// Postcondition: Returns a validated Definition or a non-nil error.
func LoadFromFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading world file %s: %w", path, err)
	}
	def, err := LoadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("loading world file %s: %w", path, err)
	}
	return def, nil
}

// LoadFromBytes parses and validates a world from YAML bytes.
//
// Postcondition: Returns a validated Definition or a non-nil error.
func LoadFromBytes(data []byte) (*Definition, error) {
	var file yamlWorldFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing world YAML: %w", err)
	}

	def := convertYAMLWorld(file.World)
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("validating world: %w", err)
	}
	return def, nil
}

// Default returns the built-in two-room world: an entryway to the north of
// a living room.
func Default() *Definition {
	def, err := LoadFromBytes(defaultWorldYAML)
	if err != nil {
		panic(fmt.Sprintf("loading default world: %v", err))
	}
	return def
}

// convertYAMLWorld converts the parsed YAML structures into domain types.
func convertYAMLWorld(yw yamlWorld) *Definition {
	def := &Definition{
		StartRoom: yw.StartRoom,
		Rooms:     make([]*Room, 0, len(yw.Rooms)),
	}
	for _, yr := range yw.Rooms {
		room := &Room{
			Name:        yr.Name,
			Description: strings.TrimSpace(yr.Description),
		}
		for _, ye := range yr.Exits {
			room.Exits = append(room.Exits, Exit{
				Direction: Direction(ye.Direction),
				Target:    ye.Target,
			})
		}
		def.Rooms = append(def.Rooms, room)
	}
	return def
}
