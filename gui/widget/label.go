package widget

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"tictoctac.com/gui/layout"
	"tictoctac.com/gui/op"
)

// Measure returns the size of a single line of txt.
func Measure(face font.Face, txt string) image.Point {
	m := face.Metrics()
	return image.Point{
		X: font.MeasureString(face, txt).Ceil(),
		Y: (m.Ascent + m.Descent).Ceil(),
	}
}

// Label draws a single line of txt with its top left corner at the
// origin and returns its size.
func Label(ops op.Ctx, face font.Face, col color.NRGBA, txt string) image.Point {
	op.TextOp{
		Face:  face,
		Dot:   image.Pt(0, face.Metrics().Ascent.Ceil()),
		Txt:   txt,
		Color: col,
	}.Add(ops)
	return Measure(face, txt)
}

// CenteredLabel draws txt horizontally centered at the top of r, the
// way a text layer with centered alignment does.
func CenteredLabel(ops op.Ctx, r layout.Rectangle, face font.Face, col color.NRGBA, txt string) {
	sz := Measure(face, txt)
	pos := r.N(sz)
	Label(ops.Begin(), face, col, txt)
	op.Position(ops, ops.End(), pos)
}
