package config

import (
	_ "embed"

	"github.com/vovakirdan/tilefall/internal/games/tilefall/core"
)

//go:embed defaults/tilefall.yaml
var defaultTilefallYAML []byte

// DefaultTilefallConfig returns the default tilefall configuration.
func DefaultTilefallConfig() TilefallConfig {
	return TilefallConfig{
		Board: BoardConfig{
			Width:  core.DefaultWidth,
			Height: core.DefaultHeight,
		},
		Colours: 4,
		Palette: []string{"red", "green", "blue", "yellow", "purple", "cyan"},
		Display: DisplayConfig{
			CellWidth:    2,
			HoverPreview: true,
		},
		TickRate: 30,
	}
}
