// Package config handles viewer and renderer configuration.
package config

import (
	"errors"
	"fmt"
)

// Interpolation modes for the camera controller.
const (
	InterpolationOff     = "off"
	InterpolationLinear  = "linear"
	InterpolationDamped  = "damped"
	InterpolationSigmoid = "sigmoid"
)

// Config holds all settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Camera   CameraConfig   `yaml:"camera"`
	World    WorldConfig    `yaml:"world"`
	Debug    DebugConfig    `yaml:"debug"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// CameraConfig holds camera rig settings.
type CameraConfig struct {
	Interpolation string  `yaml:"interpolation"` // off, linear, damped, sigmoid
	Smoothing     float32 `yaml:"smoothing"`     // 0..1, 1 = instant follow
	Zoom          float32 `yaml:"zoom"`
	MinZoom       float32 `yaml:"min_zoom"`
	MaxZoom       float32 `yaml:"max_zoom"`
	RoundToPixel  bool    `yaml:"round_to_pixel"`
	TileMapZoom   float32 `yaml:"tilemap_zoom"`
	Elevation     float32 `yaml:"elevation"` // perspective camera height above the placement plane origin
	FarPlane      float32 `yaml:"far_plane"` // distance from the perspective camera to the placement plane
}

// WorldConfig holds unit scales.
type WorldConfig struct {
	PixelsPerMeter    float32 `yaml:"pixels_per_meter"`
	ModelUnitsPerTile float32 `yaml:"model_units_per_tile"`
	TileSizePx        float32 `yaml:"tile_size_px"`
}

// DebugConfig holds debug toggles.
type DebugConfig struct {
	FrustumCulling      bool `yaml:"frustum_culling"`
	RenderBoundingBoxes bool `yaml:"render_bounding_boxes"`
	RenderTileGrid      bool `yaml:"render_tile_grid"`
	Headlights          bool `yaml:"headlights"`
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
			Interpolation: InterpolationLinear,
			Smoothing:     0.25,
			Zoom:          1.0,
			MinZoom:       0.1,
			MaxZoom:       4.0,
			RoundToPixel:  true,
			TileMapZoom:   1.0,
			Elevation:     100,
			FarPlane:      240,
		},
		World: WorldConfig{
			PixelsPerMeter:    18,
			ModelUnitsPerTile: 14.2,
			TileSizePx:        256,
		},
		Debug: DebugConfig{
			FrustumCulling:      true,
			RenderBoundingBoxes: false,
			RenderTileGrid:      false,
			Headlights:          true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports every invalid value in the config.
func (c *Config) Validate() error {
	var errs []error
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		errs = append(errs, fmt.Errorf("graphics: invalid size %dx%d", c.Graphics.Width, c.Graphics.Height))
	}
	switch c.Camera.Interpolation {
	case InterpolationOff, InterpolationLinear, InterpolationDamped, InterpolationSigmoid:
	default:
		errs = append(errs, fmt.Errorf("camera: unknown interpolation %q", c.Camera.Interpolation))
	}
	if c.Camera.Smoothing <= 0 || c.Camera.Smoothing > 1 {
		errs = append(errs, fmt.Errorf("camera: smoothing %v out of (0, 1]", c.Camera.Smoothing))
	}
	if c.Camera.MinZoom <= 0 || c.Camera.MaxZoom < c.Camera.MinZoom {
		errs = append(errs, fmt.Errorf("camera: invalid zoom range [%v, %v]", c.Camera.MinZoom, c.Camera.MaxZoom))
	}
	if c.Camera.TileMapZoom <= 0 {
		errs = append(errs, fmt.Errorf("camera: tilemap_zoom must be positive, got %v", c.Camera.TileMapZoom))
	}
	if c.Camera.FarPlane <= 1 {
		errs = append(errs, fmt.Errorf("camera: far_plane must be greater than 1, got %v", c.Camera.FarPlane))
	}
	if c.World.PixelsPerMeter <= 0 {
		errs = append(errs, fmt.Errorf("world: pixels_per_meter must be positive, got %v", c.World.PixelsPerMeter))
	}
	if c.World.ModelUnitsPerTile <= 0 || c.World.TileSizePx <= 0 {
		errs = append(errs, fmt.Errorf("world: invalid tile scale %v units / %v px", c.World.ModelUnitsPerTile, c.World.TileSizePx))
	}
	return errors.Join(errs...)
}
