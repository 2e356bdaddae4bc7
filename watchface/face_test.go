package watchface

import (
	"image"
	"image/color"
	"math/rand/v2"
	"testing"
	"time"

	"tictoctac.com/anim"
	"tictoctac.com/clock"
	"tictoctac.com/gui/op"
	"tictoctac.com/input"
	"tictoctac.com/rgb16"
)

var pebble = image.Pt(144, 168)

func newFace(t *testing.T, cfg Config) *Face {
	t.Helper()
	label, err := LabelFace()
	if err != nil {
		t.Fatal(err)
	}
	return New(cfg, label, rand.New(rand.NewPCG(1, 2)))
}

func at(hour, min int) time.Time {
	return time.Date(2024, 6, 1, hour, min, 0, 0, time.Local)
}

// settle runs the entrance to completion.
func settle(f *Face, now time.Time) {
	r := anim.NewRunner(now)
	f.Start(r)
	r.Step(now.Add(10 * time.Second))
}

func render(f *Face) *rgb16.Image {
	fb := rgb16.New(image.Rectangle{Max: pebble})
	var ops op.Ops
	f.Layout(ops.Reset(), pebble)
	ops.Draw(fb)
	return fb
}

func TestFormatBattery(t *testing.T) {
	tests := []struct {
		percent int
		want    string
	}{
		{0, "0%"},
		{100, "100%"},
		{57, "57%"},
	}
	for _, test := range tests {
		if got := FormatBattery(test.percent); got != test.want {
			t.Errorf("FormatBattery(%d) = %q, expected %q", test.percent, got, test.want)
		}
	}
}

func TestTick(t *testing.T) {
	f := newFace(t, DefaultConfig())
	f.Layout(op.Ctx{}, pebble)
	if f.Dirty() {
		t.Fatal("dirty after Layout")
	}
	f.OnTick(at(15, 45))
	if got, want := f.Time(), (clock.Time{Hours: 3, Minutes: 45}); got != want {
		t.Errorf("time %+v, expected %+v", got, want)
	}
	if !f.Dirty() {
		t.Error("tick did not request a redraw")
	}
	p1 := f.Palette()
	changed := false
	for i := range 5 {
		f.OnTick(at(15, 46+i))
		if f.Palette() != p1 {
			changed = true
		}
	}
	if !changed {
		t.Error("palette never changed across ticks")
	}
}

func TestBatteryLabel(t *testing.T) {
	f := newFace(t, DefaultConfig())
	f.OnBatteryChange(57)
	if got := f.BatteryLabel(); got != "57%" {
		t.Errorf("label %q, expected 57%%", got)
	}
	f.Layout(op.Ctx{}, pebble)
	f.OnBatteryChange(57)
	if f.Dirty() {
		t.Error("unchanged battery level requested a redraw")
	}
	f.OnBatteryChange(56)
	if !f.Dirty() {
		t.Error("battery change did not request a redraw")
	}
}

func TestSweepHalfway(t *testing.T) {
	f := newFace(t, DefaultConfig())
	f.OnTick(at(3, 45))
	f.state.Animating = true
	f.OnAnimationFrame(HandSweep, 0.5)
	if got, want := f.Time(), (clock.Time{Hours: 7, Minutes: 22}); got != want {
		t.Errorf("halfway sweep at %+v, expected %+v", got, want)
	}
	f.OnAnimationFrame(HandSweep, 1)
	if got, want := f.Time(), (clock.Time{Hours: 15, Minutes: 45}); got != want {
		t.Errorf("completed sweep at %+v, expected %+v", got, want)
	}
	f.OnAnimationFrame(RadiusGrow, 0.5)
	if r := f.State().Radius; r != 35 {
		t.Errorf("halfway radius %d, expected 35", r)
	}
}

func TestEntrance(t *testing.T) {
	cfg := DefaultConfig()
	f := newFace(t, cfg)
	start := at(9, 41)
	f.OnTick(start)
	r := anim.NewRunner(start)
	f.Start(r)

	r.Step(start.Add(cfg.Delay / 2))
	if s := f.State(); s.Animating || s.Radius != 0 {
		t.Fatalf("state %+v before the delay", s)
	}

	// Halfway through the radius animation, a quarter into the sweep.
	r.Step(start.Add(cfg.Delay + cfg.Duration/2))
	s := f.State()
	if !s.Animating {
		t.Fatal("not animating during the sweep")
	}
	if s.Radius <= 0 || s.Radius >= cfg.FinalRadius {
		t.Errorf("radius %d, expected strictly between 0 and %d", s.Radius, cfg.FinalRadius)
	}
	wall := clock.Time{Hours: 9, Minutes: 41}
	animated := f.Time()
	if animated.Hours > clock.HoursToMinutes(wall.Hours) || animated.Minutes > wall.Minutes {
		t.Errorf("animated time %+v overshoots %+v", animated, wall)
	}

	r.Step(start.Add(cfg.Delay + 2*cfg.Duration))
	if s := f.State(); s.Animating || s.Radius != cfg.FinalRadius {
		t.Errorf("state %+v after the entrance", s)
	}
	if got := f.Time(); got != wall {
		t.Errorf("time %+v after the entrance, expected %+v", got, wall)
	}
	if r.Active() {
		t.Error("animations still scheduled")
	}
}

func TestSweepMonotonic(t *testing.T) {
	cfg := DefaultConfig()
	f := newFace(t, cfg)
	start := at(11, 59)
	f.OnTick(start)
	r := anim.NewRunner(start)
	f.Start(r)
	var prev clock.Time
	for ms := 0; ms <= 2000; ms += 16 {
		r.Step(start.Add(time.Duration(ms) * time.Millisecond))
		if !f.State().Animating {
			continue
		}
		cur := f.Time()
		if cur.Hours < prev.Hours || cur.Minutes < prev.Minutes {
			t.Fatalf("%dms: sweep went back from %+v to %+v", ms, prev, cur)
		}
		prev = cur
	}
}

func TestButton(t *testing.T) {
	f := newFace(t, DefaultConfig())
	if f.HourMarkers() {
		t.Fatal("markers on by default")
	}
	f.OnButton(input.Event{Button: input.Up, Pressed: true})
	f.OnButton(input.Event{Button: input.Select, Pressed: false})
	if f.HourMarkers() {
		t.Error("markers toggled by the wrong event")
	}
	f.OnButton(input.Event{Button: input.Select, Pressed: true})
	if !f.HourMarkers() {
		t.Error("select did not toggle the markers")
	}
}

func isWhite(c color.RGBA) bool {
	return c.R > 0xf0 && c.G > 0xf0 && c.B > 0xf0
}

func isBlack(c color.RGBA) bool {
	return c.R == 0 && c.G == 0 && c.B == 0
}

func TestRenderThreeOClock(t *testing.T) {
	f := newFace(t, DefaultConfig())
	now := at(3, 0)
	f.OnTick(now)
	settle(f, now)
	fb := render(f)
	// Minute hand points north.
	if c := fb.RGBAAt(72, 50); !isWhite(c) {
		t.Errorf("minute hand pixel is %v", c)
	}
	// Hour hand points east.
	if c := fb.RGBAAt(100, 84); c.R > 0x10 || c.G < 0x90 {
		t.Errorf("hour hand pixel is %v", c)
	}
	// Nothing west or south.
	for _, p := range []image.Point{{40, 84}, {72, 120}} {
		if c := fb.RGBAAt(p.X, p.Y); !isBlack(c) {
			t.Errorf("pixel %v is %v, expected background", p, c)
		}
	}
	// 12 o'clock dot.
	if c := fb.RGBAAt(72, 9); !isWhite(c) {
		t.Errorf("top dot is %v", c)
	}
}

func TestRenderHiddenHands(t *testing.T) {
	f := newFace(t, DefaultConfig())
	now := at(6, 30)
	f.OnTick(now)
	r := anim.NewRunner(now)
	f.Start(r)
	fb := render(f)
	for y := 20; y < 140; y++ {
		for x := 20; x < 124; x++ {
			if c := fb.RGBAAt(x, y); !isBlack(c) {
				t.Fatalf("pixel (%d, %d) is %v before the entrance", x, y, c)
			}
		}
	}
}

func TestRenderMarkersAndLabel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HourMarkers = true
	f := newFace(t, cfg)
	now := at(10, 10)
	f.OnTick(now)
	f.OnBatteryChange(80)
	settle(f, now)
	fb := render(f)
	if c := fb.RGBAAt(3, 84); !isWhite(c) {
		t.Errorf("3 o'clock marker pixel is %v", c)
	}
	if c := fb.RGBAAt(141, 84); !isWhite(c) {
		t.Errorf("9 o'clock marker pixel is %v", c)
	}
	lit := 0
	for y := 148; y < 168; y++ {
		for x := range 144 {
			if !isBlack(fb.RGBAAt(x, y)) {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("battery label not drawn")
	}

	f.OnButton(input.Event{Button: input.Select, Pressed: true})
	fb = render(f)
	if c := fb.RGBAAt(3, 84); !isBlack(c) {
		t.Errorf("marker pixel is %v with markers off", c)
	}
}
