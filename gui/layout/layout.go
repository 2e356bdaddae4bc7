// Package layout positions content inside display rectangles.
package layout

import (
	"image"

	"golang.org/x/image/math/f32"
)

type Rectangle image.Rectangle

// Center returns the position of content of size sz centered in r.
func (r Rectangle) Center(sz image.Point) image.Point {
	off := r.Size().Sub(sz).Div(2)
	return r.Min.Add(off)
}

// Centroid returns the integer center point of r, as a dial center.
func (r Rectangle) Centroid() f32.Vec2 {
	c := r.Center(image.Point{})
	return f32.Vec2{float32(c.X), float32(c.Y)}
}

// N returns the position of content of size sz centered horizontally
// along the top edge of r.
func (r Rectangle) N(sz image.Point) image.Point {
	return image.Point{
		X: (r.Max.X + r.Min.X - sz.X) / 2,
		Y: r.Min.Y,
	}
}

func (r Rectangle) Dx() int {
	return image.Rectangle(r).Dx()
}

func (r Rectangle) Dy() int {
	return image.Rectangle(r).Dy()
}

func (r Rectangle) Size() image.Point {
	return image.Rectangle(r).Size()
}

// CutBottom splits off a strip of the given height from the bottom of
// r. The strip is clamped to r.
func (r Rectangle) CutBottom(height int) (top Rectangle, bottom Rectangle) {
	cuty := max(r.Max.Y-height, r.Min.Y)
	top = Rectangle(image.Rect(r.Min.X, r.Min.Y, r.Max.X, cuty))
	bottom = Rectangle(image.Rect(r.Min.X, cuty, r.Max.X, r.Max.Y))
	return top, bottom
}
