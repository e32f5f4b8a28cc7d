package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 || cfg.Graphics.Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if cfg.Camera.Interpolation != InterpolationLinear {
		t.Errorf("expected linear interpolation, got %s", cfg.Camera.Interpolation)
	}
	if cfg.Camera.Zoom != 1 {
		t.Errorf("expected zoom 1, got %v", cfg.Camera.Zoom)
	}
	if !cfg.Camera.RoundToPixel {
		t.Error("expected round_to_pixel to be true by default")
	}
	if cfg.Camera.Elevation != 100 || cfg.Camera.FarPlane != 240 {
		t.Errorf("expected elevation 100 / far 240, got %v / %v", cfg.Camera.Elevation, cfg.Camera.FarPlane)
	}
	if cfg.World.PixelsPerMeter != 18 {
		t.Errorf("expected 18 pixels per meter, got %v", cfg.World.PixelsPerMeter)
	}
	if !cfg.Debug.FrustumCulling {
		t.Error("expected frustum culling on by default")
	}
	if cfg.Debug.RenderBoundingBoxes {
		t.Error("expected bounding boxes off by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  vsync: false

camera:
  interpolation: damped
  smoothing: 0.5
  zoom: 1.5
  round_to_pixel: false
  tilemap_zoom: 0.75

world:
  pixels_per_meter: 32

debug:
  frustum_culling: false
  render_bounding_boxes: true

logging:
  level: "debug"
  log_file: "trackview.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 || cfg.Graphics.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if cfg.Graphics.VSync {
		t.Error("expected vsync to be false")
	}
	if cfg.Camera.Interpolation != InterpolationDamped {
		t.Errorf("expected damped interpolation, got %s", cfg.Camera.Interpolation)
	}
	if cfg.Camera.Zoom != 1.5 {
		t.Errorf("expected zoom 1.5, got %v", cfg.Camera.Zoom)
	}
	if cfg.Camera.RoundToPixel {
		t.Error("expected round_to_pixel to be false")
	}
	if cfg.Camera.TileMapZoom != 0.75 {
		t.Errorf("expected tilemap zoom 0.75, got %v", cfg.Camera.TileMapZoom)
	}
	// Untouched keys keep their defaults.
	if cfg.Camera.FarPlane != 240 {
		t.Errorf("expected default far plane 240, got %v", cfg.Camera.FarPlane)
	}
	if cfg.World.PixelsPerMeter != 32 {
		t.Errorf("expected 32 pixels per meter, got %v", cfg.World.PixelsPerMeter)
	}
	if cfg.Debug.FrustumCulling {
		t.Error("expected frustum culling disabled")
	}
	if !cfg.Debug.RenderBoundingBoxes {
		t.Error("expected bounding boxes enabled")
	}
	if cfg.Logging.LogFile != "trackview.log" {
		t.Errorf("expected log file 'trackview.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")
	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if err := loadFromFile(Default(), "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero width", func(c *Config) { c.Graphics.Width = 0 }, "graphics"},
		{"unknown interpolation", func(c *Config) { c.Camera.Interpolation = "cubic" }, "interpolation"},
		{"zero smoothing", func(c *Config) { c.Camera.Smoothing = 0 }, "smoothing"},
		{"zero min zoom", func(c *Config) { c.Camera.MinZoom = 0 }, "zoom range"},
		{"inverted zoom range", func(c *Config) { c.Camera.MaxZoom = 0.05 }, "zoom range"},
		{"zero tilemap zoom", func(c *Config) { c.Camera.TileMapZoom = 0 }, "tilemap_zoom"},
		{"near far plane", func(c *Config) { c.Camera.FarPlane = 1 }, "far_plane"},
		{"zero ppm", func(c *Config) { c.World.PixelsPerMeter = 0 }, "pixels_per_meter"},
		{"zero tile size", func(c *Config) { c.World.TileSizePx = 0 }, "tile scale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "trackview.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find trackview.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
				if !cfg.Debug.RenderBoundingBoxes {
					t.Error("expected bounding boxes enabled with debug flag")
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "no-culling flag",
			setup: func() { *flagNoCulling = true },
			verify: func(cfg *Config) {
				if cfg.Debug.FrustumCulling {
					t.Error("expected frustum culling disabled")
				}
			},
			teardown: func() { *flagNoCulling = false },
		},
		{
			name:  "zoom flag",
			setup: func() { *flagZoom = 2.5 },
			verify: func(cfg *Config) {
				if cfg.Camera.Zoom != 2.5 {
					t.Errorf("expected zoom 2.5, got %v", cfg.Camera.Zoom)
				}
			},
			teardown: func() { *flagZoom = 0 },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(cfg *Config) {
				if cfg.Graphics.Width != 2560 || cfg.Graphics.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	yamlContent := `
graphics:
  width: 1600
  height: 900
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("world:\n  pixels_per_meter: -1\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected invalid config error, got nil")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Camera.Interpolation = InterpolationSigmoid
	cfg.Debug.RenderBoundingBoxes = true
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if loaded.Camera.Interpolation != InterpolationSigmoid {
		t.Errorf("expected sigmoid interpolation, got %s", loaded.Camera.Interpolation)
	}
	if !loaded.Debug.RenderBoundingBoxes {
		t.Error("expected bounding boxes enabled after reload")
	}
}
