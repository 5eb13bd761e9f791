// Package formats provides pluggable layout file format parsers.
package formats

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tilefall/internal/games/tilefall/core"
)

// YAMLLayout represents the YAML structure for a layout file.
type YAMLLayout struct {
	ID       string            `yaml:"id"`
	Name     string            `yaml:"name"`
	Rows     []string          `yaml:"rows"` // Top row first, one colour letter per cell
	Metadata map[string]string `yaml:"metadata,omitempty"`
}

// Layout is a parsed layout ready for use.
type Layout struct {
	ID       string
	Name     string
	Board    core.Snapshot
	Metadata map[string]string
}

// ParseYAML parses a YAML layout file.
func ParseYAML(data []byte) (Layout, error) {
	var yl YAMLLayout
	if err := yaml.Unmarshal(data, &yl); err != nil {
		return Layout{}, fmt.Errorf("yaml unmarshal: %w", err)
	}

	if yl.ID == "" {
		return Layout{}, errors.New("layout has no id")
	}
	if len(yl.Rows) == 0 {
		return Layout{}, fmt.Errorf("layout %s: no rows", yl.ID)
	}

	board, err := core.ParseASCII(yl.Rows...)
	if err != nil {
		return Layout{}, fmt.Errorf("layout %s: %w", yl.ID, err)
	}

	name := yl.Name
	if name == "" {
		name = yl.ID
	}

	return Layout{
		ID:       yl.ID,
		Name:     name,
		Board:    board,
		Metadata: yl.Metadata,
	}, nil
}

// FormatExtensions returns supported file extensions.
func FormatExtensions() []string {
	return []string{".yaml", ".yml"}
}
