package watchface

import (
	"image"
	"image/color"

	"golang.org/x/image/math/f32"
	"tictoctac.com/clock"
	"tictoctac.com/gui/layout"
	"tictoctac.com/gui/op"
	"tictoctac.com/gui/widget"
)

// Layout records the frame for a display of size dims.
func (f *Face) Layout(ops op.Ctx, dims image.Point) {
	f.dirty = false
	screen := layout.Rectangle{Max: dims}
	op.ColorOp(ops, f.cfg.Colors.Background)

	center := screen.Centroid()
	t := f.Time()
	hands := clock.HandsAt(center, t, f.state.Radius, f.state.Animating)
	stroke := func(from, to f32.Vec2, width float32, col color.NRGBA) {
		op.LineOp{
			From:      from,
			To:        to,
			Width:     width,
			Color:     col,
			Antialias: f.cfg.Antialias,
		}.Add(ops)
	}
	if hands.ShowMinute {
		stroke(center, hands.Minute, f.cfg.StrokeWidth, f.cfg.Colors.Minute)
	}

	// 12 o'clock dot, just outside the final dial.
	top := f32.Vec2{center[0], center[1] - float32(f.cfg.FinalRadius+5)}
	stroke(top, top, f.cfg.StrokeWidth, f.cfg.Colors.Minute)

	if hands.ShowHour {
		stroke(center, hands.Hour, f.cfg.StrokeWidth, f.cfg.Colors.Hour)
	}

	if f.markers {
		span := f.cfg.MarkerSpan
		if span == 0 {
			span = dims.X
		}
		for _, h := range clock.Markers() {
			from, to := clock.MarkerSegment(center, h, f.state.Radius, span)
			stroke(from, to, f.cfg.SlimStrokeWidth, f.cfg.Colors.Marker)
		}
	}

	if f.label != nil && f.battery != "" {
		_, strip := screen.CutBottom(f.cfg.LabelHeight)
		widget.CenteredLabel(ops, strip, f.label, f.cfg.Colors.Text, f.battery)
	}
}
