// Package config provides YAML-based game configuration loading and
// difficulty presets for tilefall.
package config

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/tilefall/internal/games/tilefall/core"
)

// TilefallConfig contains all configuration for a tilefall board.
type TilefallConfig struct {
	Board    BoardConfig   `yaml:"board"`
	Colours  int           `yaml:"colours"` // How many palette entries a random board uses
	Palette  []string      `yaml:"palette"` // Colour names, in order of use
	Display  DisplayConfig `yaml:"display"`
	TickRate int           `yaml:"tick_rate"` // Frames per second for the TUI
}

// BoardConfig defines the grid dimensions.
type BoardConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// DisplayConfig defines how the board is drawn.
type DisplayConfig struct {
	CellWidth    int  `yaml:"cell_width"` // Terminal columns per tile
	HoverPreview bool `yaml:"hover_preview"`
}

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// PaletteColours resolves Palette names into colours.
// An empty palette means the full built-in palette.
func (c TilefallConfig) PaletteColours() ([]core.Colour, error) {
	if len(c.Palette) == 0 {
		return core.Palette(core.MaxColours), nil
	}
	out := make([]core.Colour, 0, len(c.Palette))
	seen := make(map[core.Colour]bool, len(c.Palette))
	for _, name := range c.Palette {
		col, ok := core.ParseColour(name)
		if !ok || col.IsEmpty() {
			return nil, fmt.Errorf("%w: unknown palette colour %q", ErrInvalidConfig, name)
		}
		if seen[col] {
			return nil, fmt.Errorf("%w: duplicate palette colour %q", ErrInvalidConfig, name)
		}
		seen[col] = true
		out = append(out, col)
	}
	return out, nil
}

// ActivePalette returns the first Colours entries of the palette.
func (c TilefallConfig) ActivePalette() ([]core.Colour, error) {
	palette, err := c.PaletteColours()
	if err != nil {
		return nil, err
	}
	if c.Colours < len(palette) {
		palette = palette[:c.Colours]
	}
	return palette, nil
}

// Validate checks the config for values the game cannot run with.
func (c TilefallConfig) Validate() error {
	if c.Board.Width <= 0 || c.Board.Height <= 0 {
		return fmt.Errorf("%w: board %dx%d must be positive", ErrInvalidConfig, c.Board.Width, c.Board.Height)
	}
	palette, err := c.PaletteColours()
	if err != nil {
		return err
	}
	if c.Colours < 1 || c.Colours > len(palette) {
		return fmt.Errorf("%w: colours %d outside [1, %d]", ErrInvalidConfig, c.Colours, len(palette))
	}
	if c.Display.CellWidth < 0 {
		return fmt.Errorf("%w: cell_width %d is negative", ErrInvalidConfig, c.Display.CellWidth)
	}
	if c.TickRate < 0 {
		return fmt.Errorf("%w: tick_rate %d is negative", ErrInvalidConfig, c.TickRate)
	}
	return nil
}
