// Package texture loads and generates the RGBA images uploaded as level
// textures.
package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp" // BMP decoder registration
)

// Load reads a PNG, BMP or TGA file. With colorKey, pure magenta pixels become
// transparent.
func Load(path string, colorKey bool) (*image.RGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading texture: %w", err)
	}

	var img *image.RGBA
	if strings.EqualFold(filepath.Ext(path), ".tga") {
		img, err = DecodeTGA(data)
	} else {
		var decoded image.Image
		decoded, _, err = image.Decode(bytes.NewReader(data))
		if err == nil {
			img = ToRGBA(decoded)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	if colorKey {
		ApplyMagentaKey(img)
	}
	return img, nil
}

// IsMagentaKey reports whether an RGB color is the magenta transparency
// key. The tolerance absorbs lossy conversions.
func IsMagentaKey(r, g, b uint8) bool {
	return r >= 250 && g <= 10 && b >= 250
}

// ApplyMagentaKey makes magenta pixels transparent black in place, which
// keeps them from bleeding into neighbours under linear filtering.
func ApplyMagentaKey(img *image.RGBA) {
	for i := 0; i+3 < len(img.Pix); i += 4 {
		if IsMagentaKey(img.Pix[i], img.Pix[i+1], img.Pix[i+2]) {
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 0, 0, 0, 0
		}
	}
}

// ToRGBA converts img to *image.RGBA with origin (0, 0).
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Rect, img, b.Min, draw.Src)
	return rgba
}

// Solid returns a size x size image of one color.
func Solid(size int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Rect, image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// Checker returns a size x size checkerboard of cell-sized squares,
// starting with a in the top-left corner.
func Checker(size, cell int, a, b color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	cell = max(cell, 1)
	for y := range size {
		for x := range size {
			c := a
			if (x/cell+y/cell)%2 == 1 {
				c = b
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// Atlas packs tiles left to right, top to bottom into a cols x rows grid of
// tileSize cells. Missing tiles stay transparent.
func Atlas(tiles []*image.RGBA, tileSize, cols, rows int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, cols*tileSize, rows*tileSize))
	for i, t := range tiles {
		if i >= cols*rows {
			break
		}
		x, y := (i%cols)*tileSize, (i/cols)*tileSize
		draw.Draw(img, image.Rect(x, y, x+tileSize, y+tileSize), t, t.Rect.Min, draw.Src)
	}
	return img
}
