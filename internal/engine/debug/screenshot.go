package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// FrameCapture writes rendered frames to PNG files named by frame number.
type FrameCapture struct {
	outputDir string
	prefix    string
}

// NewFrameCapture returns a capture writing <prefix>_<frame>.png files into
// outputDir.
func NewFrameCapture(outputDir, prefix string) *FrameCapture {
	if prefix == "" {
		prefix = "frame"
	}
	return &FrameCapture{outputDir: outputDir, prefix: prefix}
}

// Filename returns the path a frame would be written to.
func (fc *FrameCapture) Filename(frame uint64) string {
	name := fmt.Sprintf("%s_%06d.png", fc.prefix, frame)
	if fc.outputDir != "" {
		name = filepath.Join(fc.outputDir, name)
	}
	return name
}

// Save writes RGBA pixels read back from GL (origin bottom-left) as a
// top-down PNG and returns its path.
func (fc *FrameCapture) Save(pixels []byte, width, height int, frame uint64) (string, error) {
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	if len(pixels) != width*height*4 {
		return "", fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}
	if fc.outputDir != "" {
		if err := os.MkdirAll(fc.outputDir, 0o755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		copy(img.Pix[y*img.Stride:y*img.Stride+rowSize], pixels[src:src+rowSize])
	}

	filename := fc.Filename(frame)
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return filename, nil
}
