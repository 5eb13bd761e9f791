package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/tilefall/internal/games/tilefall/core"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultTilefallConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Board.Width != 10 || cfg.Board.Height != 10 {
		t.Errorf("expected 10x10 default board, got %dx%d", cfg.Board.Width, cfg.Board.Height)
	}
}

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	cfg, err := LoadTilefall("")
	if err != nil {
		t.Fatalf("LoadTilefall failed: %v", err)
	}
	def := DefaultTilefallConfig()
	if cfg.Board != def.Board || cfg.Colours != def.Colours || cfg.TickRate != def.TickRate {
		t.Errorf("embedded defaults %+v differ from hardcoded %+v", cfg, def)
	}
}

func TestLoadCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tilefall.yaml")
	data := []byte("board:\n  width: 6\n  height: 4\ncolours: 2\npalette: [blue, red]\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadTilefall(path)
	if err != nil {
		t.Fatalf("LoadTilefall failed: %v", err)
	}
	if cfg.Board.Width != 6 || cfg.Board.Height != 4 {
		t.Errorf("expected 6x4, got %dx%d", cfg.Board.Width, cfg.Board.Height)
	}
	// Unset fields keep their defaults.
	if cfg.TickRate != 30 {
		t.Errorf("expected default tick rate 30, got %d", cfg.TickRate)
	}
	palette, err := cfg.ActivePalette()
	if err != nil {
		t.Fatalf("ActivePalette failed: %v", err)
	}
	if len(palette) != 2 || palette[0] != core.Blue || palette[1] != core.Red {
		t.Errorf("unexpected palette %v", palette)
	}
}

func TestLoadCustomPathErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadTilefall(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("board:\n  width: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadTilefall(bad)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*TilefallConfig)
		valid  bool
	}{
		{"default", func(*TilefallConfig) {}, true},
		{"zero width", func(c *TilefallConfig) { c.Board.Width = 0 }, false},
		{"negative height", func(c *TilefallConfig) { c.Board.Height = -1 }, false},
		{"no colours", func(c *TilefallConfig) { c.Colours = 0 }, false},
		{"too many colours", func(c *TilefallConfig) { c.Colours = 7 }, false},
		{"unknown palette colour", func(c *TilefallConfig) { c.Palette = []string{"red", "mauve"} }, false},
		{"duplicate palette colour", func(c *TilefallConfig) { c.Palette = []string{"red", "r"} }, false},
		{"empty in palette", func(c *TilefallConfig) { c.Palette = []string{"red", "empty"} }, false},
		{"short palette", func(c *TilefallConfig) { c.Palette = []string{"red", "green"}; c.Colours = 2 }, true},
		{"empty palette uses all", func(c *TilefallConfig) { c.Palette = nil; c.Colours = 6 }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultTilefallConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tc.valid && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestApplyTilefallPreset(t *testing.T) {
	tests := []struct {
		preset   DifficultyPreset
		expected int
	}{
		{DifficultyEasy, 3},
		{DifficultyNormal, 4},
		{DifficultyHard, 5},
		{DifficultyFixed, 6},
	}
	for _, tc := range tests {
		cfg := DefaultTilefallConfig()
		cfg.Colours = 6
		ApplyTilefallPreset(&cfg, tc.preset)
		if cfg.Colours != tc.expected {
			t.Errorf("preset %s: expected %d colours, got %d", tc.preset, tc.expected, cfg.Colours)
		}
	}

	// Clamped to a short palette.
	cfg := DefaultTilefallConfig()
	cfg.Palette = []string{"red", "blue"}
	cfg.Colours = 2
	ApplyTilefallPreset(&cfg, DifficultyHard)
	if cfg.Colours != 2 {
		t.Errorf("expected hard preset clamped to 2 colours, got %d", cfg.Colours)
	}
}

func TestParsePreset(t *testing.T) {
	if p, err := ParsePreset(""); err != nil || p != DifficultyNormal {
		t.Errorf("expected empty to parse as normal, got %q, %v", p, err)
	}
	for _, p := range Presets() {
		if got, err := ParsePreset(string(p)); err != nil || got != p {
			t.Errorf("ParsePreset(%q) = %q, %v", p, got, err)
		}
	}
	if _, err := ParsePreset("nightmare"); err == nil {
		t.Error("expected error for unknown preset")
	}
}
