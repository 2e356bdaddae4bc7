// Package fbdev implements a display on top of the Linux framebuffer
// device.
package fbdev

import (
	"errors"
	"fmt"
	"image"

	"tictoctac.com/rgb16"
)

// DefaultDevice is the first framebuffer.
const DefaultDevice = "/dev/fb0"

// ErrUnsupported is returned by Open on platforms without framebuffer
// devices.
var ErrUnsupported = errors.New("fbdev: not supported on this platform")

// Bitfield locates a color channel in a pixel.
type Bitfield struct {
	Offset, Length uint32
}

// Format describes the pixel layout of a framebuffer.
type Format struct {
	BitsPerPixel     int
	Red, Green, Blue Bitfield
}

// RGB565 is the native format of rgb16 images.
var RGB565 = Format{
	BitsPerPixel: 16,
	Red:          Bitfield{Offset: 11, Length: 5},
	Green:        Bitfield{Offset: 5, Length: 6},
	Blue:         Bitfield{Offset: 0, Length: 5},
}

// XRGB8888 is the common 32-bit layout.
var XRGB8888 = Format{
	BitsPerPixel: 32,
	Red:          Bitfield{Offset: 16, Length: 8},
	Green:        Bitfield{Offset: 8, Length: 8},
	Blue:         Bitfield{Offset: 0, Length: 8},
}

func (f Format) check() error {
	switch f.BitsPerPixel {
	case 16, 24, 32:
	default:
		return fmt.Errorf("fbdev: unsupported depth %d", f.BitsPerPixel)
	}
	for _, c := range []Bitfield{f.Red, f.Green, f.Blue} {
		if c.Length == 0 || c.Length > 8 || c.Offset+c.Length > uint32(f.BitsPerPixel) {
			return fmt.Errorf("fbdev: unsupported pixel format %+v", f)
		}
	}
	return nil
}

func (f Format) pixel(px rgb16.RGB565) uint32 {
	r, g, b := px.RGB()
	return uint32(r)>>(8-f.Red.Length)<<f.Red.Offset |
		uint32(g)>>(8-f.Green.Length)<<f.Green.Offset |
		uint32(b)>>(8-f.Blue.Length)<<f.Blue.Offset
}

// Blit converts the pixels of fb in r to format f and stores them in
// mem, a framebuffer of the given stride in bytes.
func Blit(mem []byte, stride int, f Format, fb *rgb16.Image, r image.Rectangle) {
	r = r.Intersect(fb.Bounds())
	bpp := f.BitsPerPixel / 8
	native := f == RGB565
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := fb.Row(y, r.Min.X, r.Max.X)
		line := mem[y*stride+r.Min.X*bpp:]
		if native {
			for i, px := range row {
				line[i*2], line[i*2+1] = px[0], px[1]
			}
			continue
		}
		for i, px := range row {
			v := f.pixel(px)
			for j := range bpp {
				line[i*bpp+j] = byte(v >> (8 * j))
			}
		}
	}
}
