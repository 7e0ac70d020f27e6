package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

const fileName = "config.yaml"

// Load builds the showcase config. Defaults are overlaid by the config file,
// then by command-line flags, and the result is validated.
func Load() (*Config, error) {
	cfg := Default()

	path := ConfigPath()
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing config.yaml, checking the
// working directory before the user config directory.
func findConfigFile() string {
	for _, path := range []string{
		filepath.Join(".", fileName),
		filepath.Join(ConfigDir(), fileName),
	} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir is where --save-config writes and where Load looks after the
// working directory.
func ConfigDir() string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "MidgardShowcase")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "MidgardShowcase")
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "midgard-showcase")
	}
	return filepath.Join(home, ".config", "midgard-showcase")
}

// loadFromFile overlays the YAML at path onto cfg. Keys missing from the
// file keep their current values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
