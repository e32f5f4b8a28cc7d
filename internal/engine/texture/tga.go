package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image types.
const (
	TGATypeUncompressed = 2
	TGATypeRLE          = 10
)

const tgaHeaderSize = 18

var errTGATruncated = errors.New("TGA data truncated")

// DecodeTGA decodes an uncompressed or RLE true-color TGA image with 24 or
// 32 bits per pixel.
func DecodeTGA(data []byte) (*image.RGBA, error) {
	if len(data) < tgaHeaderSize {
		return nil, errTGATruncated
	}
	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	topToBottom := data[17]&0x20 != 0

	if colorMapType != 0 {
		return nil, errors.New("color-mapped TGA not supported")
	}
	if imageType != TGATypeUncompressed && imageType != TGATypeRLE {
		return nil, fmt.Errorf("unsupported TGA type %d", imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("unsupported TGA bit depth %d", bpp)
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("invalid TGA size %dx%d", width, height)
	}
	offset := tgaHeaderSize + idLength
	if offset > len(data) {
		return nil, errTGATruncated
	}

	d := tgaDecoder{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		src:         data[offset:],
		bpp:         bpp / 8,
		topToBottom: topToBottom,
	}
	if imageType == TGATypeUncompressed {
		err := d.raw()
		return d.img, err
	}
	return d.img, d.rle()
}

type tgaDecoder struct {
	img         *image.RGBA
	src         []byte
	pos         int
	bpp         int
	topToBottom bool
	pixel       int
}

func (d *tgaDecoder) read() (color.RGBA, bool) {
	if d.pos+d.bpp > len(d.src) {
		return color.RGBA{}, false
	}
	p := d.src[d.pos:]
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if d.bpp == 4 {
		c.A = p[3]
	}
	d.pos += d.bpp
	return c, true
}

// put writes the next pixel in file order. Rows are stored bottom-up unless
// the descriptor says otherwise.
func (d *tgaDecoder) put(c color.RGBA) {
	w, h := d.img.Rect.Dx(), d.img.Rect.Dy()
	x, y := d.pixel%w, d.pixel/w
	if !d.topToBottom {
		y = h - 1 - y
	}
	d.img.SetRGBA(x, y, c)
	d.pixel++
}

func (d *tgaDecoder) total() int {
	return d.img.Rect.Dx() * d.img.Rect.Dy()
}

func (d *tgaDecoder) raw() error {
	for d.pixel < d.total() {
		c, ok := d.read()
		if !ok {
			return errTGATruncated
		}
		d.put(c)
	}
	return nil
}

func (d *tgaDecoder) rle() error {
	for d.pixel < d.total() {
		if d.pos >= len(d.src) {
			return errTGATruncated
		}
		packet := d.src[d.pos]
		d.pos++
		count := min(int(packet&0x7f)+1, d.total()-d.pixel)

		if packet&0x80 != 0 {
			c, ok := d.read()
			if !ok {
				return errTGATruncated
			}
			for range count {
				d.put(c)
			}
			continue
		}
		for range count {
			c, ok := d.read()
			if !ok {
				return errTGATruncated
			}
			d.put(c)
		}
	}
	return nil
}
