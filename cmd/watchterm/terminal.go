package main

import (
	"image"
	"image/color"

	"github.com/gdamore/tcell/v2"
	"tictoctac.com/rgb16"
)

const help = "m markers  +/- battery  r replay  q quit"

// terminal is a host.Display drawing half block characters.
type terminal struct {
	screen tcell.Screen
	size   image.Point
	fb     *rgb16.Image
}

func (t *terminal) Size() image.Point {
	return t.size
}

func (t *terminal) Flush(fb *rgb16.Image, dirty image.Rectangle) error {
	t.fb = fb
	t.redraw()
	return nil
}

func (t *terminal) Close() error {
	t.screen.Fini()
	return nil
}

func (t *terminal) redraw() {
	if t.fb == nil {
		return
	}
	cols, rows := t.screen.Size()
	// Leave the last row for the key help.
	rows--
	cells, w := halfBlocks(t.fb, cols, rows)
	t.screen.Clear()
	for i, c := range cells {
		st := tcell.StyleDefault.
			Foreground(tcell.FromImageColor(c.top)).
			Background(tcell.FromImageColor(c.bottom))
		t.screen.SetContent(i%w, i/w, '▀', nil, st)
	}
	for i, r := range []rune(help) {
		if i >= cols {
			break
		}
		t.screen.SetContent(i, rows, r, nil, tcell.StyleDefault.Dim(true))
	}
	t.screen.Show()
}

type cell struct {
	top, bottom color.RGBA
}

// halfBlocks downsamples img to fit cols×rows character cells of two
// square pixels each. It returns the cells in row order and the number
// of cells per row.
func halfBlocks(img *rgb16.Image, cols, rows int) ([]cell, int) {
	b := img.Bounds()
	if cols <= 0 || rows <= 0 || b.Empty() {
		return nil, 0
	}
	// Smallest integer block size that fits.
	scale := max((b.Dx()+cols-1)/cols, (b.Dy()+2*rows-1)/(2*rows), 1)
	w := b.Dx() / scale
	h := (b.Dy()/scale + 1) / 2
	cells := make([]cell, 0, w*h)
	for y := range h {
		for x := range w {
			top := image.Rect(x*scale, 2*y*scale, (x+1)*scale, (2*y+1)*scale)
			bottom := top.Add(image.Pt(0, scale))
			cells = append(cells, cell{
				top:    average(img, top.Add(b.Min)),
				bottom: average(img, bottom.Add(b.Min)),
			})
		}
	}
	return cells, w
}

func average(img *rgb16.Image, r image.Rectangle) color.RGBA {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return color.RGBA{A: 0xff}
	}
	var sr, sg, sb, n int
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for _, px := range img.Row(y, r.Min.X, r.Max.X) {
			cr, cg, cb := px.RGB()
			sr += int(cr)
			sg += int(cg)
			sb += int(cb)
			n++
		}
	}
	return color.RGBA{R: uint8(sr / n), G: uint8(sg / n), B: uint8(sb / n), A: 0xff}
}
