package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadTilefall loads tilefall configuration.
// Search order: customPath -> ~/.tilefall/configs/tilefall.yaml -> ./configs/tilefall.yaml -> embedded default
func LoadTilefall(customPath string) (TilefallConfig, error) {
	// Start from defaults so partial files keep sane values.
	cfg := DefaultTilefallConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		if err := cfg.Validate(); err != nil {
			return cfg, fmt.Errorf("config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("tilefall.yaml"); userCfgPath != "" {
		if c, ok := tryLoad(userCfgPath); ok {
			return c, nil
		}
	}

	// Try local configs directory
	if c, ok := tryLoad(filepath.Join("configs", "tilefall.yaml")); ok {
		return c, nil
	}

	// Use embedded default YAML
	cfg = DefaultTilefallConfig()
	if err := yaml.Unmarshal(defaultTilefallYAML, &cfg); err != nil || cfg.Validate() != nil {
		return DefaultTilefallConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// tryLoad reads an optional config file. Unreadable or invalid files are skipped.
func tryLoad(path string) (TilefallConfig, bool) {
	cfg := DefaultTilefallConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, false
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, false
	}
	if err := cfg.Validate(); err != nil {
		return cfg, false
	}
	return cfg, true
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".tilefall", "configs", filename)
}
