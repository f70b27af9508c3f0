// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all viewer settings.
type Config struct {
	Render   RenderConfig   `yaml:"render"`
	Camera   CameraConfig   `yaml:"camera"`
	Light    LightConfig    `yaml:"light"`
	Material MaterialConfig `yaml:"material"`
	Viewer   ViewerConfig   `yaml:"viewer"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// RenderConfig holds framebuffer and render state settings.
type RenderConfig struct {
	Width        int      `yaml:"width"`   // headless output width
	Height       int      `yaml:"height"`  // headless output height
	Shading      string   `yaml:"shading"` // "flat" or "smooth"
	Lighting     bool     `yaml:"lighting"`
	Blending     bool     `yaml:"blending"`
	RandomColors bool     `yaml:"random_colors"`
	Background   [3]uint8 `yaml:"background"`
}

// CameraConfig places the camera and sets its perspective projection.
type CameraConfig struct {
	Eye  [3]float64 `yaml:"eye"`
	At   [3]float64 `yaml:"at"`
	Up   [3]float64 `yaml:"up"`
	FOVY float64    `yaml:"fovy"` // degrees
	Near float64    `yaml:"near"`
	Far  float64    `yaml:"far"`
}

// LightConfig holds the single scene light.
type LightConfig struct {
	Type        string     `yaml:"type"` // "point", "directional", "spot" or "none"
	Position    [3]float64 `yaml:"position"`
	Direction   [3]float64 `yaml:"direction"`
	Attenuation [3]float64 `yaml:"attenuation"` // constant, linear, quadratic
}

// MaterialConfig holds the surface material.
type MaterialConfig struct {
	Specular  [4]float64 `yaml:"specular"`
	Emission  [3]float64 `yaml:"emission"`
	Shininess float64    `yaml:"shininess"`
}

// ViewerConfig holds interactive viewer settings.
type ViewerConfig struct {
	FPS      int           `yaml:"fps"`
	Watch    bool          `yaml:"watch"`    // reload the model when it changes
	Debounce time.Duration `yaml:"debounce"` // delay before reloading
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the original demo scene: a gray background,
// a 30 degree field of view and a point light above the camera.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Width:      640,
			Height:     480,
			Shading:    "flat",
			Lighting:   true,
			Background: [3]uint8{200, 200, 200},
		},
		Camera: CameraConfig{
			Eye:  [3]float64{3, 4, 5},
			At:   [3]float64{0, 0, 0},
			Up:   [3]float64{0, 1, 0},
			FOVY: 30,
			Near: 1,
			Far:  100,
		},
		Light: LightConfig{
			Type:        "point",
			Position:    [3]float64{2, 3, 4},
			Direction:   [3]float64{0, 0, -1},
			Attenuation: [3]float64{1, 0, 0},
		},
		Material: MaterialConfig{
			Specular:  [4]float64{0.5, 0.5, 0.5, 1},
			Shininess: 32,
		},
		Viewer: ViewerConfig{
			FPS:      30,
			Debounce: 100 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings the renderer cannot use.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Render.Width > 0 && c.Render.Height > 0,
		"render size %dx%d must be positive", c.Render.Width, c.Render.Height)
	check(c.Render.Shading == "flat" || c.Render.Shading == "smooth",
		"render.shading %q must be flat or smooth", c.Render.Shading)
	check(c.Camera.FOVY > 0 && c.Camera.FOVY < 180,
		"camera.fovy %g must be in (0, 180)", c.Camera.FOVY)
	check(c.Camera.Near > 0 && c.Camera.Near < c.Camera.Far,
		"camera near %g and far %g must satisfy 0 < near < far", c.Camera.Near, c.Camera.Far)
	_, err := parseLightType(c.Light.Type)
	check(err == nil, "light.type %q must be point, directional, spot or none", c.Light.Type)
	check(c.Viewer.FPS > 0, "viewer.fps %d must be positive", c.Viewer.FPS)
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		check(false, "logging.level %q must be debug, info, warn or error", c.Logging.Level)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
