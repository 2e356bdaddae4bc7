// package rgb16 contains an image.Image implementation of a 16-bit
// RGB image, the native pixel format of small SPI panels and most
// framebuffer displays.
package rgb16

import (
	"image"
	"image/color"
	"image/draw"
)

type Image struct {
	Pix    []RGB565
	Stride int
	Rect   image.Rectangle
}

// RGB565 is a little endian 5-6-5 pixel.
type RGB565 [2]byte

func New(r image.Rectangle) *Image {
	return &Image{
		Pix:    make([]RGB565, r.Dx()*r.Dy()),
		Stride: r.Dx(),
		Rect:   r,
	}
}

func (p *Image) Bounds() image.Rectangle {
	return p.Rect
}

func (p *Image) ColorModel() color.Model {
	return color.RGBAModel
}

func (p *Image) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}).In(p.Rect) {
		return
	}
	p.Pix[p.PixOffset(x, y)] = FromColor(c)
}

func (p *Image) PixOffset(x, y int) int {
	off := image.Pt(x, y).Sub(p.Rect.Min)
	return off.Y*p.Stride + off.X
}

func (p *Image) At(x, y int) color.Color {
	return p.RGBAAt(x, y)
}

func (p *Image) RGBAAt(x, y int) color.RGBA {
	if !(image.Point{x, y}).In(p.Rect) {
		return color.RGBA{}
	}
	r, g, b := p.Pix[p.PixOffset(x, y)].RGB()
	return color.RGBA{A: 0xff, R: r, G: g, B: b}
}

func (p *Image) SetRGBA64(x, y int, c color.RGBA64) {
	if !(image.Point{x, y}).In(p.Rect) {
		return
	}
	p.Pix[p.PixOffset(x, y)] = FromRGB(uint8(c.R>>8), uint8(c.G>>8), uint8(c.B>>8))
}

func (p *Image) RGBA64At(x, y int) color.RGBA64 {
	c := p.RGBAAt(x, y)
	r16 := uint16(c.R)
	r16 |= r16 << 8
	g16 := uint16(c.G)
	g16 |= g16 << 8
	b16 := uint16(c.B)
	b16 |= b16 << 8
	return color.RGBA64{A: uint16(c.A) << 8, R: r16, G: g16, B: b16}
}

// Row returns the pixels of row y between x0 and x1.
func (p *Image) Row(y, x0, x1 int) []RGB565 {
	start := p.PixOffset(x0, y)
	return p.Pix[start : start+x1-x0]
}

// Fill sets every pixel in r to c.
func (p *Image) Fill(r image.Rectangle, c color.Color) {
	r = r.Intersect(p.Rect)
	rgb := FromColor(c)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := p.Row(y, r.Min.X, r.Max.X)
		for x := range row {
			row[x] = rgb
		}
	}
}

// DrawOver composites src over dr. Opaque uniform sources are filled
// directly.
func (p *Image) DrawOver(dr image.Rectangle, src image.Image, sp image.Point) {
	dr = dr.Intersect(p.Rect)
	if u, ok := src.(*image.Uniform); ok && u.Opaque() {
		p.Fill(dr, u.C)
		return
	}
	draw.Draw(p, dr, src, sp, draw.Over)
}

// AppendRGBA appends the pixels in r as 8-bit RGBA quadruplets, the
// layout expected by most GPU texture uploads.
func (p *Image) AppendRGBA(buf []byte, r image.Rectangle) []byte {
	r = r.Intersect(p.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for _, px := range p.Row(y, r.Min.X, r.Max.X) {
			cr, cg, cb := px.RGB()
			buf = append(buf, cr, cg, cb, 0xff)
		}
	}
	return buf
}

func FromColor(c color.Color) RGB565 {
	r, g, b, _ := c.RGBA()
	return FromRGB(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

func FromRGB(r, g, b uint8) RGB565 {
	u16 := uint16(b)>>3 | uint16(g&0xFC)<<3 | uint16(r&0xF8)<<8
	return RGB565{byte(u16), byte(u16 >> 8)}
}

// RGB expands the pixel to 8-bit channels, replicating the high bits
// into the low bits so that full intensity maps to 0xff.
func (c RGB565) RGB() (r, g, b uint8) {
	v := uint16(c[1])<<8 | uint16(c[0])
	r = uint8(v>>8) & 0xf8
	r |= r >> 5
	g = uint8(v>>3) & 0xfc
	g |= g >> 6
	b = uint8(v << 3)
	b |= b >> 5
	return
}
