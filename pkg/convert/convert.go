// Package convert maps between world meters, world pixels and screen pixels.
package convert

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidScale is returned when a converter is built with a non-positive scale.
var ErrInvalidScale = errors.New("convert: scale must be positive")

// Converter holds the two scales every conversion depends on.
// It is a plain value: all methods are pure.
type Converter struct {
	PixelsPerMeter float32 // world pixels per physics meter
	TileMapZoom    float32 // background zoom factor; scaled pixels = px / zoom
}

// New returns a converter, validating both scales.
func New(pixelsPerMeter, tileMapZoom float32) (Converter, error) {
	if pixelsPerMeter <= 0 {
		return Converter{}, fmt.Errorf("pixels per meter %v: %w", pixelsPerMeter, ErrInvalidScale)
	}
	if tileMapZoom <= 0 {
		return Converter{}, fmt.Errorf("tile map zoom %v: %w", tileMapZoom, ErrInvalidScale)
	}
	return Converter{PixelsPerMeter: pixelsPerMeter, TileMapZoom: tileMapZoom}, nil
}

// MetersToPixels converts a world distance in meters to world pixels.
func (c Converter) MetersToPixels(m float32) float32 {
	return m * c.PixelsPerMeter
}

// PixelsToMeters converts world pixels to meters.
func (c Converter) PixelsToMeters(px float32) float32 {
	return px / c.PixelsPerMeter
}

// MtToPx is MetersToPixels for both components of v.
func (c Converter) MtToPx(v mgl32.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{c.MetersToPixels(v[0]), c.MetersToPixels(v[1])}
}

// PxToMt is PixelsToMeters for both components of v.
func (c Converter) PxToMt(v mgl32.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{c.PixelsToMeters(v[0]), c.PixelsToMeters(v[1])}
}

// ScaledPixels converts unscaled pixels into the tile-map scaled pixel space.
func (c Converter) ScaledPixels(px float32) float32 {
	return px / c.TileMapZoom
}

// ScaledPixelsPerMeter is the pixels-per-meter ratio in scaled pixel space.
// The meter-based orthographic matrix multiplies its basis by this value.
func (c Converter) ScaledPixelsPerMeter() float32 {
	return c.ScaledPixels(c.PixelsPerMeter)
}

// WorldPixelsToScreen maps a world pixel position (y up) to screen pixels
// (origin top-left, y down) for a camera centred at camPos.
// Zoom > 1 shows more of the world.
func WorldPixelsToScreen(pos, camPos, halfViewport mgl32.Vec2, zoom float32) mgl32.Vec2 {
	return mgl32.Vec2{
		(pos[0]-camPos[0])/zoom + halfViewport[0],
		halfViewport[1] - (pos[1]-camPos[1])/zoom,
	}
}

// ScreenToWorldPixels is the inverse of WorldPixelsToScreen.
func ScreenToWorldPixels(screen, camPos, halfViewport mgl32.Vec2, zoom float32) mgl32.Vec2 {
	return mgl32.Vec2{
		(screen[0]-halfViewport[0])*zoom + camPos[0],
		(halfViewport[1]-screen[1])*zoom + camPos[1],
	}
}

// MapToWorld converts a tile-map position (origin top-left, y down) into
// world pixels (origin bottom-left, y up) for a world worldHeightPx tall.
func MapToWorld(pos mgl32.Vec2, worldHeightPx float32) mgl32.Vec2 {
	return mgl32.Vec2{pos[0], worldHeightPx - pos[1]}
}
