package config

import "fmt"

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// Presets lists every preset in menu order.
func Presets() []DifficultyPreset {
	return []DifficultyPreset{DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed}
}

// ParsePreset validates a preset name. The empty string means normal.
func ParsePreset(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(s); p {
	case "":
		return DifficultyNormal, nil
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q (want easy, normal, hard or fixed)", s)
	}
}

// ColoursForPreset returns the colour count for a difficulty preset.
// Fixed returns 0, meaning the configured count is kept.
func ColoursForPreset(preset DifficultyPreset) int {
	switch preset {
	case DifficultyEasy:
		return 3
	case DifficultyNormal:
		return 4
	case DifficultyHard:
		return 5
	default:
		return 0
	}
}

// IsFixedPreset returns true if the preset leaves the config untouched.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}

// ApplyTilefallPreset modifies the config based on a difficulty preset.
// The colour count is clamped to the palette size.
func ApplyTilefallPreset(cfg *TilefallConfig, preset DifficultyPreset) {
	n := ColoursForPreset(preset)
	if n == 0 {
		return
	}
	if palette, err := cfg.PaletteColours(); err == nil && n > len(palette) {
		n = len(palette)
	}
	cfg.Colours = n
}
