// Package op records drawing operations for a frame and replays them
// onto a framebuffer, redrawing only the regions that changed since the
// previous frame.
package op

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f32"
	"golang.org/x/image/math/fixed"
	"tictoctac.com/rgb16"
)

type Ops struct {
	ops    []any
	colors map[color.NRGBA]*image.Uniform

	prevOps  map[frameOp]bool
	frameOps map[frameOp]bool
	frame    []frameOp
}

type Ctx struct {
	beginIdx int
	ops      *Ops
}

type frameOp struct {
	state drawState
	op    drawOp
}

func (o *Ctx) add(op any) {
	if o.ops == nil {
		return
	}
	o.ops.ops = append(o.ops.ops, op)
}

func (o *Ctx) Begin() Ctx {
	if o.ops == nil {
		return Ctx{}
	}
	o.add(beginOp{})
	o.beginIdx = len(o.ops.ops)
	return Ctx{ops: o.ops}
}

func (o *Ctx) End() CallOp {
	if o.ops == nil {
		return CallOp{}
	}
	if o.beginIdx == 0 {
		panic("End without a Begin")
	}
	o.add(endOp{})
	call := CallOp{startIdx: o.beginIdx}
	o.beginIdx = 0
	return call
}

// Reset clears the recorded operations and returns the root context
// for the next frame.
func (o *Ops) Reset() Ctx {
	o.ops = o.ops[:0]
	if o.colors == nil {
		o.colors = make(map[color.NRGBA]*image.Uniform)
	}
	if o.frameOps == nil {
		o.frameOps = make(map[frameOp]bool)
	}
	if o.prevOps == nil {
		o.prevOps = make(map[frameOp]bool)
	}
	return Ctx{ops: o}
}

// Invalidate forgets the previous frame, forcing the next Draw to
// repaint everything.
func (o *Ops) Invalidate() {
	if o.frameOps == nil {
		o.frameOps = make(map[frameOp]bool)
	}
	for op := range o.frameOps {
		delete(o.frameOps, op)
	}
	o.frameOps[frameOp{state: drawState{clip: image.Rect(-1e6, -1e6, 1e6, 1e6)}}] = true
}

func (o *Ops) nrgba(c color.NRGBA) *image.Uniform {
	if o == nil {
		return image.NewUniform(c)
	}
	if u, ok := o.colors[c]; ok {
		return u
	}
	u := image.NewUniform(c)
	o.colors[c] = u
	return u
}

type drawState struct {
	pos  image.Point
	clip image.Rectangle
}

// Draw replays the recorded operations onto dst and returns the
// region that differs from the previous frame. Only that region is
// repainted; dst must hold the previous frame.
func (o *Ops) Draw(dst draw.Image) image.Rectangle {
	o.frameOps, o.prevOps = o.prevOps, o.frameOps
	// Clear for GC.
	for i := range o.frameOps {
		delete(o.frameOps, i)
	}
	for i := range o.frame {
		o.frame[i] = frameOp{}
	}
	o.frame = o.frame[:0]
	o.serialize(drawState{clip: dst.Bounds()}, 0)
	var clip image.Rectangle
	for _, op := range o.frame {
		o.frameOps[op] = true
		if !o.prevOps[op] {
			clip = clip.Union(op.state.clip)
		} else {
			delete(o.prevOps, op)
		}
	}
	for op := range o.prevOps {
		clip = clip.Union(op.state.clip)
	}
	clip = clip.Intersect(dst.Bounds())
	for _, op := range o.frame {
		clip := clip.Intersect(op.state.clip)
		if clip.Empty() {
			continue
		}
		op.op.draw(dst, clip, op.state.pos)
	}
	return clip
}

func (o *Ops) serialize(state drawState, from int) {
	macros := 0
	origState := state
	for i := from; i < len(o.ops); i++ {
		op := o.ops[i]
		switch op.(type) {
		case beginOp:
			macros++
			continue
		case endOp:
			if macros == 0 {
				return
			}
			macros--
			continue
		}
		if macros > 0 {
			continue
		}
		switch op := op.(type) {
		case offsetOp:
			state.pos = state.pos.Add(image.Point(op))
			continue
		case ClipOp:
			r := image.Rectangle(op).Add(state.pos)
			state.clip = state.clip.Intersect(r)
			continue
		case CallOp:
			o.serialize(state, op.startIdx)
		case drawOp:
			r := op.bounds().Add(state.pos)
			state.clip = state.clip.Intersect(r)
			if !state.clip.Empty() {
				o.frame = append(o.frame, frameOp{state, op})
			}
		}
		state = origState
	}
}

type offsetOp image.Point

func (o offsetOp) Add(ops Ctx) {
	ops.add(o)
}

func Offset(ops Ctx, off image.Point) {
	offsetOp(off).Add(ops)
}

func Position(ops Ctx, c CallOp, off image.Point) {
	Offset(ops, off)
	c.Add(ops)
}

// ClipOp restricts the following operation to a rectangle.
type ClipOp image.Rectangle

func (c ClipOp) Add(ops Ctx) {
	ops.add(c)
}

// ColorOp fills the current clip with col.
func ColorOp(ops Ctx, col color.NRGBA) {
	ops.add(fillOp{ops.ops.nrgba(col)})
}

type fillOp struct {
	src *image.Uniform
}

func (f fillOp) bounds() image.Rectangle {
	return f.src.Bounds()
}

func (f fillOp) draw(dst draw.Image, dr image.Rectangle, pos image.Point) {
	if fb, ok := dst.(*rgb16.Image); ok {
		fb.DrawOver(dr, f.src, image.Point{})
		return
	}
	draw.Draw(dst, dr, f.src, image.Point{}, draw.Over)
}

type CallOp struct {
	startIdx int
}

func (c CallOp) Add(ops Ctx) {
	if c.startIdx > 0 {
		ops.add(c)
	}
}

type beginOp struct{}

type endOp struct{}

type drawOp interface {
	bounds() image.Rectangle
	draw(dst draw.Image, dr image.Rectangle, pos image.Point)
}

// LineOp strokes a straight segment with round caps. A segment with
// equal end points draws a dot of diameter Width.
type LineOp struct {
	From, To f32.Vec2
	Width    float32
	Color    color.NRGBA
	// Antialias selects the smooth rasterizer. Otherwise the segment
	// is stepped pixel by pixel.
	Antialias bool
}

func (l LineOp) Add(ops Ctx) {
	ops.add(l)
}

func (l LineOp) bounds() image.Rectangle {
	pad := l.Width/2 + 1
	minx, maxx := min(l.From[0], l.To[0])-pad, max(l.From[0], l.To[0])+pad
	miny, maxy := min(l.From[1], l.To[1])-pad, max(l.From[1], l.To[1])+pad
	return image.Rect(floor(minx), floor(miny), ceil(maxx), ceil(maxy))
}

func (l LineOp) draw(dst draw.Image, dr image.Rectangle, pos image.Point) {
	off := f32.Vec2{float32(pos.X), float32(pos.Y)}
	from := f32.Vec2{l.From[0] + off[0], l.From[1] + off[1]}
	to := f32.Vec2{l.To[0] + off[0], l.To[1] + off[1]}
	if l.Antialias {
		strokeSmooth(dst, dr, from, to, l.Width, l.Color)
	} else {
		strokeStepped(dst, dr, from, to, l.Width, l.Color)
	}
}

// TextOp draws a single line of text with its baseline origin at Dot.
type TextOp struct {
	Face  font.Face
	Dot   image.Point
	Txt   string
	Color color.NRGBA
}

func (t TextOp) Add(ops Ctx) {
	ops.add(t)
}

func (t TextOp) bounds() image.Rectangle {
	b, _ := font.BoundString(t.Face, t.Txt)
	dot := fixed.P(t.Dot.X, t.Dot.Y)
	return image.Rect(
		(b.Min.X + dot.X).Floor(), (b.Min.Y + dot.Y).Floor(),
		(b.Max.X + dot.X).Ceil(), (b.Max.Y + dot.Y).Ceil(),
	)
}

func (t TextOp) draw(dst draw.Image, dr image.Rectangle, pos image.Point) {
	src := image.NewUniform(t.Color)
	dot := fixed.P(t.Dot.X+pos.X, t.Dot.Y+pos.Y)
	prevC := rune(-1)
	for _, c := range t.Txt {
		if prevC >= 0 {
			dot.X += t.Face.Kern(prevC, c)
		}
		gdr, mask, maskp, advance, ok := t.Face.Glyph(dot, c)
		if !ok {
			continue
		}
		if r := gdr.Intersect(dr); !r.Empty() {
			draw.DrawMask(dst, r, src, image.Point{}, mask, maskp.Add(r.Min.Sub(gdr.Min)), draw.Over)
		}
		dot.X += advance
		prevC = c
	}
}

func floor(v float32) int {
	i := int(v)
	if float32(i) > v {
		i--
	}
	return i
}

func ceil(v float32) int {
	i := int(v)
	if float32(i) < v {
		i++
	}
	return i
}
