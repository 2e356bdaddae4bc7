package op

import (
	"image"
	"image/color"
	"math"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f32"
	"golang.org/x/image/math/fixed"
	"tictoctac.com/bresenham"
)

// clipView restricts an image to a rectangle. The rasterizer draws its
// mask over the whole destination bounds.
type clipView struct {
	draw.Image
	r image.Rectangle
}

func (c clipView) Bounds() image.Rectangle {
	return c.r
}

// strokeSmooth rasterizes an antialiased segment restricted to clip.
// The rasterizer covers only the clip rectangle, so the segment is
// translated into its coordinates.
func strokeSmooth(dst draw.Image, clip image.Rectangle, from, to f32.Vec2, width float32, col color.NRGBA) {
	clip = clip.Intersect(dst.Bounds())
	if clip.Empty() {
		return
	}
	w, h := clip.Dx(), clip.Dy()
	view := clipView{Image: dst, r: clip}
	scanner := rasterx.NewScannerGV(w, h, view, clip)
	ox, oy := float64(clip.Min.X), float64(clip.Min.Y)
	x0, y0 := float64(from[0])-ox, float64(from[1])-oy
	x1, y1 := float64(to[0])-ox, float64(to[1])-oy
	if from == to {
		f := rasterx.NewFiller(w, h, scanner)
		rasterx.AddCircle(x0, y0, float64(width)/2, f)
		f.SetColor(col)
		f.Draw()
		return
	}
	d := rasterx.NewDasher(w, h, scanner)
	d.SetStroke(fixed.Int26_6(width*64), 0, rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.ArcClip, nil, 0)
	d.SetColor(col)
	d.Start(rasterx.ToFixedP(x0, y0))
	d.Line(rasterx.ToFixedP(x1, y1))
	d.Stop(false)
	d.Draw()
}

// strokeStepped draws an aliased segment by stamping a square pen at
// every Bresenham step.
func strokeStepped(dst draw.Image, clip image.Rectangle, from, to f32.Vec2, width float32, col color.NRGBA) {
	src := image.NewUniform(col)
	pen := max(int(math.Round(float64(width))), 1)
	half := pen / 2
	p0 := image.Pt(round(from[0]), round(from[1]))
	p1 := image.Pt(round(to[0]), round(to[1]))
	for p := range bresenham.Walk(p0, p1) {
		tl := p.Sub(image.Pt(half, half))
		r := image.Rectangle{Min: tl, Max: tl.Add(image.Pt(pen, pen))}.Intersect(clip)
		if !r.Empty() {
			draw.Draw(dst, r, src, image.Point{}, draw.Src)
		}
	}
}

func round(v float32) int {
	return int(math.Round(float64(v)))
}
