// Package lighting connects the camera rig to a light-map system and keeps
// the player's headlights in front of the tracked actor.
package lighting

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/trackview/internal/engine/camera"
	"github.com/Faultbox/trackview/internal/engine/gfx"
	"github.com/Faultbox/trackview/internal/logger"
	"github.com/Faultbox/trackview/pkg/convert"
)

// ErrUnavailable is returned by a System that cannot serve this frame.
// The compositor skips the frame and tries again on the next one.
var ErrUnavailable = errors.New("lighting: system unavailable")

// System is a light simulation that renders into a light map.
// Coordinates passed to it are in world meters.
type System interface {
	Init() error
	SetCombinedMatrix(m mgl32.Mat4, x, y, viewportWidth, viewportHeight float32)
	Update() error
	UpdateLightMap() error
	RenderLightMap(target gfx.Target) error
}

// Sync is the transform last pushed to the system.
type Sync struct {
	MVP    mgl32.Mat4
	X, Y   float32 // camera centre, meters
	Width  float32 // visible area, meters
	Height float32
}

// Compositor feeds camera state to a System. A compositor without a system
// is valid and does nothing.
type Compositor struct {
	sys  System
	conv convert.Converter

	headlight    Headlight
	headlightsOn bool

	last    Sync
	synced  bool
	failing bool
	noted   bool

	log *zap.Logger
}

// NewCompositor initializes sys. An Init failure is returned as an error and
// must abort renderer setup. A nil sys yields a disabled compositor.
func NewCompositor(sys System, conv convert.Converter) (*Compositor, error) {
	c := &Compositor{
		sys:          sys,
		conv:         conv,
		headlightsOn: true,
		log:          logger.Named("lighting"),
	}
	if sys == nil {
		return c, nil
	}
	if err := sys.Init(); err != nil {
		return nil, fmt.Errorf("initializing light system: %w", err)
	}
	return c, nil
}

// Enabled reports whether a system is attached.
func (c *Compositor) Enabled() bool {
	return c.sys != nil
}

// SyncToCamera pushes the meter-based orthographic transform and view
// rectangle to the system and regenerates the light map. A failing system
// is logged and skipped; SyncToCamera reports whether the light map was
// updated.
func (c *Compositor) SyncToCamera(s camera.State) bool {
	if c.sys == nil {
		return false
	}

	c.last = Sync{
		MVP:    s.OrthoMVP,
		X:      c.conv.PixelsToMeters(s.Position[0]),
		Y:      c.conv.PixelsToMeters(s.Position[1]),
		Width:  c.conv.PixelsToMeters(s.WorldRect.W),
		Height: c.conv.PixelsToMeters(s.WorldRect.H),
	}
	c.synced = true
	c.sys.SetCombinedMatrix(c.last.MVP, c.last.X, c.last.Y, c.last.Width, c.last.Height)

	if err := c.sys.Update(); err != nil {
		c.skip("update", err)
		return false
	}
	if err := c.sys.UpdateLightMap(); err != nil {
		c.skip("update light map", err)
		return false
	}
	if c.failing {
		c.log.Info("light system recovered")
		c.failing = false
	}
	return true
}

// skip logs the first failure of a run at warn level and the rest at debug.
func (c *Compositor) skip(stage string, err error) {
	if c.failing {
		c.log.Debug("light sync skipped", zap.String("stage", stage), zap.Error(err))
		return
	}
	c.failing = true
	c.log.Warn("light sync skipped", zap.String("stage", stage), zap.Error(err))
}

// LastSync returns the last transform pushed to the system and whether any
// sync happened yet.
func (c *Compositor) LastSync() (Sync, bool) {
	return c.last, c.synced
}

// RenderLightMap renders the light map into target. It is a no-op without
// a system. ErrUnavailable is logged and swallowed; other errors are
// returned.
func (c *Compositor) RenderLightMap(target gfx.Target) error {
	if c.sys == nil {
		if !c.noted {
			c.log.Debug("no light system, light map pass skipped")
			c.noted = true
		}
		return nil
	}
	err := c.sys.RenderLightMap(target)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrUnavailable):
		c.log.Debug("light map render skipped", zap.Error(err))
		return nil
	default:
		return fmt.Errorf("rendering light map: %w", err)
	}
}

// SetHeadlight attaches the light that follows the tracked actor.
func (c *Compositor) SetHeadlight(h Headlight) {
	c.headlight = h
	if h != nil {
		h.SetActive(c.headlightsOn)
	}
}

// SetHeadlightsEnabled switches the headlight on or off.
func (c *Compositor) SetHeadlightsEnabled(on bool) {
	c.headlightsOn = on
	if c.headlight != nil {
		c.headlight.SetActive(on)
	}
}

// HeadlightsEnabled reports the headlight toggle.
func (c *Compositor) HeadlightsEnabled() bool {
	return c.headlightsOn
}

// UpdateHeadlights moves the headlight in front of a. It does nothing when
// headlights are off or none is attached.
func (c *Compositor) UpdateHeadlights(a Actor) {
	if !c.headlightsOn || c.headlight == nil {
		return
	}
	p := HeadlightPoseFor(a, c.conv)
	c.headlight.SetDirection(p.DirectionDeg)
	c.headlight.SetPosition(p.Position)
}
