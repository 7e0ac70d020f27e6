package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagModels     = flag.String("models", "", "Directory containing model files")
	flagFormat     = flag.String("format", "", "Model format: gltf or fbx")
	flagLimit      = flag.Int("limit", -1, "Maximum number of models to load (0 = all)")
	flagGap        = flag.Float64("gap", -1, "Spacing between models along x")
	flagPartial    = flag.Bool("partial", false, "Show the models that loaded even if others failed")
	flagSeed       = flag.Uint64("seed", 0, "Seed for clip selection (0 = random)")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagSaveConfig = flag.Bool("save-config", false, "Write the effective config to the user config directory")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// SaveRequested reports whether --save-config was given.
func SaveRequested() bool {
	return *flagSaveConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagModels != "" {
		cfg.Models.Dir = *flagModels
		cfg.Models.Paths = nil
	}
	if *flagFormat != "" {
		cfg.Models.Format = *flagFormat
	}
	if *flagLimit >= 0 {
		cfg.Models.Limit = *flagLimit
	}
	if *flagGap >= 0 {
		cfg.Models.Gap = float32(*flagGap)
	}
	if *flagPartial {
		cfg.Models.FailFast = false
	}
	if *flagSeed != 0 {
		cfg.Models.Seed = *flagSeed
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
}
