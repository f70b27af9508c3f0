package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagWidth   = flag.Int("width", 0, "Headless output width")
	flagHeight  = flag.Int("height", 0, "Headless output height")
	flagShading = flag.String("shading", "", "Shading mode: flat or smooth")
	flagLight   = flag.String("light", "", "Light type: point, directional, spot or none")
	flagWatch   = flag.Bool("watch", false, "Reload the model when the file changes")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWidth > 0 {
		cfg.Render.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Render.Height = *flagHeight
	}
	if *flagShading != "" {
		cfg.Render.Shading = *flagShading
	}
	if *flagLight != "" {
		cfg.Light.Type = *flagLight
	}
	if *flagWatch {
		cfg.Viewer.Watch = true
	}
}
