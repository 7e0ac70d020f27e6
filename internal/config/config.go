// Package config handles showcase configuration loading and management.
package config

import (
	"fmt"
	"time"

	"github.com/Faultbox/midgard-showcase/internal/assets"
)

// Config holds all showcase settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Camera   CameraConfig   `yaml:"camera"`
	Lighting LightingConfig `yaml:"lighting"`
	Models   ModelsConfig   `yaml:"models"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// CameraConfig holds the initial view.
type CameraConfig struct {
	Eye    [3]float32 `yaml:"eye"`
	Target [3]float32 `yaml:"target"`
	FOV    float32    `yaml:"fov"` // vertical, degrees
	Near   float32    `yaml:"near"`
	Far    float32    `yaml:"far"`
	// FitOnLoad reframes the camera on the laid-out models once they load.
	FitOnLoad bool `yaml:"fit_on_load"`
}

// LightingConfig holds the scene lights.
type LightingConfig struct {
	AmbientIntensity     float32    `yaml:"ambient_intensity"`
	DirectionalPosition  [3]float32 `yaml:"directional_position"`
	DirectionalIntensity float32    `yaml:"directional_intensity"`
}

// ModelsConfig holds asset loading and layout settings.
type ModelsConfig struct {
	Dir    string   `yaml:"dir"`
	Format string   `yaml:"format"` // gltf or fbx
	Paths  []string `yaml:"paths"`  // explicit list; empty means list Dir
	Limit  int      `yaml:"limit"`  // 0 means all
	Gap    float32  `yaml:"gap"`

	// FailFast drops the whole batch when any model fails to load.
	// When false, the models that did load are shown.
	FailFast    bool          `yaml:"fail_fast"`
	LoadTimeout time.Duration `yaml:"load_timeout"` // 0 means none

	// Seed makes clip selection reproducible. 0 picks a random seed.
	Seed uint64 `yaml:"seed"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Camera: CameraConfig{
			Eye:       [3]float32{100, 500, 1500},
			Target:    [3]float32{0, 0, 0},
			FOV:       75,
			Near:      0.1,
			Far:       10000,
			FitOnLoad: false,
		},
		Lighting: LightingConfig{
			AmbientIntensity:     0.5,
			DirectionalPosition:  [3]float32{10, 20, 15},
			DirectionalIntensity: 1,
		},
		Models: ModelsConfig{
			Dir:      "models",
			Format:   string(assets.FormatGLTF),
			Limit:    5,
			Gap:      10,
			FailFast: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks that the settings can be used.
func (c *Config) Validate() error {
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Graphics.Width, c.Graphics.Height)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("invalid camera clip range %v..%v", c.Camera.Near, c.Camera.Far)
	}
	if c.Models.Limit < 0 {
		return fmt.Errorf("models.limit must not be negative, got %d", c.Models.Limit)
	}
	if c.Models.Gap < 0 {
		return fmt.Errorf("models.gap must not be negative, got %v", c.Models.Gap)
	}
	if c.Models.LoadTimeout < 0 {
		return fmt.Errorf("models.load_timeout must not be negative, got %v", c.Models.LoadTimeout)
	}
	if _, err := assets.ParseFormat(c.Models.Format); err != nil {
		return fmt.Errorf("models.format: %w", err)
	}
	return nil
}
