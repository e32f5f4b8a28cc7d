package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging and bounding boxes")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagNoCulling  = flag.Bool("no-culling", false, "Disable frustum culling")
	flagZoom       = flag.Float64("zoom", 0, "Initial camera zoom")
	flagGrid       = flag.Bool("grid", false, "Draw the tile grid")
	flagCapture    = flag.String("capture", "", "Directory to save the last rendered frame into")
	flagFrames     = flag.Uint64("frames", 0, "Exit after this many frames (0 runs until closed)")
	flagWrite      = flag.String("write-config", "", "Write the effective config to this path and exit")
	flagTileset    = flag.String("tileset", "", "Tileset image (png, bmp or tga) replacing the generated one")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// CaptureDir returns the frame capture directory, empty when disabled.
func CaptureDir() string {
	return *flagCapture
}

// FrameLimit returns the number of frames to render before exiting.
func FrameLimit() uint64 {
	return *flagFrames
}

// WriteConfigPath returns where to dump the effective config, empty when unset.
func WriteConfigPath() string {
	return *flagWrite
}

// TilesetPath returns the tileset override, empty for the generated atlas.
func TilesetPath() string {
	return *flagTileset
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Debug.RenderBoundingBoxes = true
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
	if *flagNoCulling {
		cfg.Debug.FrustumCulling = false
	}
	if *flagGrid {
		cfg.Debug.RenderTileGrid = true
	}
	if *flagZoom > 0 {
		cfg.Camera.Zoom = float32(*flagZoom)
	}
}
