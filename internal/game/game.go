// Package game runs the track viewer: it drives a car around the demo track
// and renders the world through the scene renderer every frame.
package game

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/trackview/internal/config"
	"github.com/Faultbox/trackview/internal/engine/camera"
	"github.com/Faultbox/trackview/internal/engine/debug"
	"github.com/Faultbox/trackview/internal/engine/framebuffer"
	"github.com/Faultbox/trackview/internal/engine/input"
	"github.com/Faultbox/trackview/internal/engine/lighting"
	"github.com/Faultbox/trackview/internal/engine/renderer"
	"github.com/Faultbox/trackview/internal/engine/scene"
	"github.com/Faultbox/trackview/internal/engine/shader"
	"github.com/Faultbox/trackview/internal/engine/window"
	"github.com/Faultbox/trackview/internal/game/world"
	"github.com/Faultbox/trackview/internal/logger"
)

// Options are run settings that do not belong in the config file.
type Options struct {
	CaptureDir string // save the last frame here; empty disables capture
	FrameLimit uint64 // stop after this many frames; 0 runs until closed
	Tileset    string // optional tileset image
}

const (
	carSpeedPx  = 420 // pixels per second
	carLengthMt = 4.5
	zoomStep    = 1.1
)

// Game is the viewer instance.
type Game struct {
	cfg  *config.Config
	opts Options
	log  *zap.Logger

	window   *window.Window
	renderer *renderer.Renderer
	compiler *shader.Compiler
	input    *input.Input

	world     *scene.WorldRenderer
	lightMap  *lighting.LightMap
	lightFB   *framebuffer.Framebuffer
	headlight *lighting.ConeLight
	driver    *world.Driver
	capture   *debug.FrameCapture

	frame   uint64
	running bool
}

// New opens the window, builds the track and the world renderer.
func New(cfg *config.Config, opts Options) (*Game, error) {
	g := &Game{cfg: cfg, opts: opts, log: logger.Named("game")}
	g.log.Info("initializing viewer",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
	)

	var err error
	g.window, err = window.New(window.Config{
		Title:      "TrackView",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderer AFTER window, since the OpenGL context must exist.
	g.renderer, err = renderer.New(renderer.Config{
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		ClearColor: mgl32.Vec4{0, 0, 0, 1},
	})
	if err != nil {
		g.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	// Fullscreen windows take the display size.
	if w, h := g.window.GetSize(); w != cfg.Graphics.Width || h != cfg.Graphics.Height {
		cfg.Graphics.Width, cfg.Graphics.Height = w, h
		g.renderer.Resize(w, h)
	}
	g.compiler = shader.NewCompiler()
	g.input = input.New()

	if err := g.loadWorld(); err != nil {
		g.Close()
		return nil, err
	}
	if opts.CaptureDir != "" {
		g.capture = debug.NewFrameCapture(opts.CaptureDir, "trackview")
	}

	g.log.Info("viewer initialized")
	return g, nil
}

func (g *Game) loadWorld() error {
	trackCfg := world.DefaultTrackConfig()
	trackCfg.TileSizePx = g.cfg.World.TileSizePx
	trackCfg.TilesetPath = g.opts.Tileset
	track, err := world.BuildTrack(g.renderer, trackCfg)
	if err != nil {
		return fmt.Errorf("building track: %w", err)
	}

	g.lightFB, err = framebuffer.New(int32(g.cfg.Graphics.Width), int32(g.cfg.Graphics.Height), false)
	if err != nil {
		return fmt.Errorf("creating light map target: %w", err)
	}
	g.lightMap = lighting.NewLightMap(g.renderer, g.compiler)
	g.addTrackLights(track)

	sceneCfg, err := sceneConfig(g.cfg)
	if err != nil {
		return err
	}
	g.world, err = scene.New(g.renderer, g.compiler, track.Level, g.lightMap, sceneCfg)
	if err != nil {
		return fmt.Errorf("creating world renderer: %w", err)
	}

	g.headlight = lighting.NewConeLight(mgl32.Vec4{1, 0.95, 0.8, 0.9}, 18, 40)
	g.lightMap.AddConeLight(g.headlight)
	g.world.SetHeadlight(g.headlight)
	g.world.SetHeadlightsEnabled(g.cfg.Debug.Headlights)

	g.driver = world.NewDriver(track.Path, carSpeedPx, carLengthMt)
	return nil
}

// addTrackLights puts a floodlight at every loop corner.
func (g *Game) addTrackLights(track *world.Track) {
	ppm := g.cfg.World.PixelsPerMeter
	for _, p := range track.Path {
		g.lightMap.AddPointLight(lighting.PointLight{
			Position: p.Mul(1 / ppm),
			Color:    mgl32.Vec4{1, 0.85, 0.6, 0.8},
			Distance: 14,
			Active:   true,
		})
	}
}

// sceneConfig maps the file config onto the world renderer.
func sceneConfig(cfg *config.Config) (scene.Config, error) {
	mode, err := camera.ParseMode(cfg.Camera.Interpolation)
	if err != nil {
		return scene.Config{}, err
	}
	return scene.Config{
		Camera: camera.Config{
			ViewportWidth:     float32(cfg.Graphics.Width),
			ViewportHeight:    float32(cfg.Graphics.Height),
			Zoom:              cfg.Camera.Zoom,
			MinZoom:           cfg.Camera.MinZoom,
			MaxZoom:           cfg.Camera.MaxZoom,
			TileMapZoom:       cfg.Camera.TileMapZoom,
			Elevation:         cfg.Camera.Elevation,
			FarPlane:          cfg.Camera.FarPlane,
			ModelUnitsPerTile: cfg.World.ModelUnitsPerTile,
			TileSizePx:        cfg.World.TileSizePx,
		},
		Interpolation:       mode,
		Smoothing:           cfg.Camera.Smoothing,
		PixelsPerMeter:      cfg.World.PixelsPerMeter,
		FrustumCulling:      cfg.Debug.FrustumCulling,
		RenderBoundingBoxes: cfg.Debug.RenderBoundingBoxes,
		RenderTileGrid:      cfg.Debug.RenderTileGrid,
	}, nil
}

// Run is the main loop. It returns when the window closes or the frame
// limit is reached.
func (g *Game) Run() error {
	g.running = true
	lastTime := time.Now()
	fpsTimer := lastTime
	fpsFrames := 0

	g.log.Info("starting viewer loop")
	for g.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		g.handle(g.input.Update())
		if !g.running {
			break
		}

		g.driver.Update(dt)
		stats, err := g.render()
		if err != nil {
			return fmt.Errorf("render error: %w", err)
		}

		g.frame++
		last := g.opts.FrameLimit > 0 && g.frame >= g.opts.FrameLimit
		if last && g.capture != nil {
			g.saveFrame()
		}
		g.window.SwapBuffers()

		fpsFrames++
		if time.Since(fpsTimer) >= time.Second {
			g.log.Debug("frame stats",
				zap.Int("fps", fpsFrames),
				zap.Int("walls", stats.RenderedWalls()),
				zap.Int("trees", stats.RenderedTrees()),
				zap.Int("statics", stats.RenderedStatics()),
				zap.Int("culled", stats.CulledMeshes()),
				zap.Int("binds", stats.MaterialBinds()),
				zap.Int("draw_calls", g.renderer.Stats().DrawCalls),
			)
			g.window.SetTitle(fmt.Sprintf("TrackView - %d FPS", fpsFrames))
			fpsFrames = 0
			fpsTimer = time.Now()
		}
		if last {
			g.running = false
		}
	}
	return nil
}

func (g *Game) handle(a input.Actions) {
	if a.Quit {
		g.running = false
		return
	}
	if a.Resize && a.Width > 0 && a.Height > 0 {
		g.renderer.Resize(a.Width, a.Height)
		g.world.Resize(a.Width, a.Height)
		g.lightFB.Resize(int32(a.Width), int32(a.Height))
		g.cfg.Graphics.Width, g.cfg.Graphics.Height = a.Width, a.Height
	}
	if a.ZoomSteps != 0 {
		z := g.world.CameraZoom()
		for range abs(a.ZoomSteps) {
			if a.ZoomSteps > 0 {
				z /= zoomStep
			} else {
				z *= zoomStep
			}
		}
		g.world.SetZoom(z)
	}
	if a.ToggleCulling {
		g.world.SetFrustumCulling(!g.world.FrustumCulling())
		g.log.Info("frustum culling", zap.Bool("enabled", g.world.FrustumCulling()))
	}
	if a.ToggleBoxes {
		g.cfg.Debug.RenderBoundingBoxes = !g.cfg.Debug.RenderBoundingBoxes
		g.world.SetRenderBoundingBoxes(g.cfg.Debug.RenderBoundingBoxes)
	}
	if a.ToggleGrid {
		g.cfg.Debug.RenderTileGrid = !g.cfg.Debug.RenderTileGrid
		g.world.SetRenderTileGrid(g.cfg.Debug.RenderTileGrid)
	}
	if a.ToggleHeadlight {
		g.cfg.Debug.Headlights = !g.cfg.Debug.Headlights
		g.world.SetHeadlightsEnabled(g.cfg.Debug.Headlights)
	}
	if a.Capture {
		if g.capture == nil {
			g.capture = debug.NewFrameCapture(".", "trackview")
		}
		g.saveFrame()
	}
}

func abs(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// render draws one frame in the order the world renderer requires.
func (g *Game) render() (scene.FrameStats, error) {
	g.renderer.Begin()

	g.world.UpdateHeadlights(g.driver.Actor())
	g.world.SetCameraPosition(g.driver.Position(), g.cfg.Camera.RoundToPixel)
	g.world.RenderTilemap()
	stats := g.world.RenderAllMeshes()

	if err := g.world.RenderLightMap(g.lightFB); err != nil {
		return stats, err
	}
	g.world.CompositeLightMap(g.lightFB)

	g.renderer.End()
	return stats, nil
}

func (g *Game) saveFrame() {
	pixels, w, h := g.renderer.ReadPixels()
	path, err := g.capture.Save(pixels, w, h, g.frame)
	if err != nil {
		g.log.Warn("frame capture failed", zap.Error(err))
		return
	}
	g.log.Info("frame saved", zap.String("path", path))
}

// Close releases GPU resources and the window.
func (g *Game) Close() {
	g.log.Info("closing viewer")
	if g.lightFB != nil {
		g.lightFB.Destroy()
	}
	if g.compiler != nil {
		g.compiler.Destroy()
	}
	if g.renderer != nil {
		g.renderer.Close()
	}
	if g.window != nil {
		g.window.Close()
	}
}
