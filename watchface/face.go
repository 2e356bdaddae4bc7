// Package watchface implements the TicTocTac analog watchface: the
// clock state, the entrance animation and the frame layout. The
// watchface never blocks and owns no goroutines; a host drives it
// through the Clock methods and lays it out whenever Dirty reports a
// pending redraw.
package watchface

import (
	"math/rand/v2"
	"strconv"
	"time"

	"golang.org/x/image/font"
	"tictoctac.com/anim"
	"tictoctac.com/clock"
	"tictoctac.com/input"
)

// Clock is the set of events a host delivers to a watchface.
type Clock interface {
	// OnTick is called with the wall clock time once per minute.
	OnTick(now time.Time)
	// OnAnimationFrame is called with eased progress for every frame
	// of an entrance animation.
	OnAnimationFrame(e Entrance, progress float64)
	// OnBatteryChange is called with the charge percentage, 0-100.
	OnBatteryChange(percent int)
}

// Entrance identifies one of the two entrance animations.
type Entrance int

const (
	RadiusGrow Entrance = iota
	HandSweep
)

func (e Entrance) String() string {
	switch e {
	case RadiusGrow:
		return "radius"
	case HandSweep:
		return "hands"
	default:
		return "Entrance(" + strconv.Itoa(int(e)) + ")"
	}
}

// AnimationState gates the time source used for drawing.
type AnimationState struct {
	Animating bool
	Radius    int
}

// Palette is a random color, re-rolled every minute. The renderer does
// not use it: the colored background it was meant for is disabled.
type Palette [3]uint8

type Face struct {
	cfg   Config
	label font.Face
	rng   *rand.Rand

	wall     clock.Time
	animated clock.Time
	state    AnimationState
	palette  Palette
	markers  bool
	battery  string
	dirty    bool
}

var _ Clock = (*Face)(nil)

// New returns a watchface. The label face is used for the battery
// readout; rng re-rolls the palette and may be nil.
func New(cfg Config, label font.Face, rng *rand.Rand) *Face {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Face{
		cfg:     cfg,
		label:   label,
		rng:     rng,
		markers: cfg.HourMarkers,
		dirty:   true,
	}
}

// Start schedules the entrance animations. Calling Start again replays
// the entrance from an empty dial.
func (f *Face) Start(s anim.Scheduler) {
	f.state = AnimationState{}
	f.animated = clock.Time{}
	f.MarkDirty()
	s.Schedule(&anim.Animation{
		Duration: f.cfg.Duration,
		Delay:    f.cfg.Delay,
		Curve:    anim.EaseInOut,
		Update: func(p float64) {
			f.OnAnimationFrame(RadiusGrow, p)
		},
	})
	s.Schedule(&anim.Animation{
		Duration: 2 * f.cfg.Duration,
		Delay:    f.cfg.Delay,
		Curve:    anim.EaseInOut,
		Update: func(p float64) {
			f.OnAnimationFrame(HandSweep, p)
		},
		Started: func() {
			f.state.Animating = true
		},
		Stopped: func(bool) {
			f.state.Animating = false
			f.MarkDirty()
		},
	})
}

func (f *Face) OnTick(now time.Time) {
	f.wall = clock.FromWallClock(now)
	for i := range f.palette {
		f.palette[i] = uint8(f.rng.IntN(256))
	}
	f.MarkDirty()
}

func (f *Face) OnAnimationFrame(e Entrance, progress float64) {
	switch e {
	case RadiusGrow:
		f.state.Radius = anim.Percentage(progress, f.cfg.FinalRadius)
	case HandSweep:
		f.animated = clock.Time{
			Hours:   anim.Percentage(progress, clock.HoursToMinutes(f.wall.Hours)),
			Minutes: anim.Percentage(progress, f.wall.Minutes),
		}
	}
	f.MarkDirty()
}

func (f *Face) OnBatteryChange(percent int) {
	txt := FormatBattery(percent)
	if txt == f.battery {
		return
	}
	f.battery = txt
	f.MarkDirty()
}

// OnButton toggles the hour markers when select is pressed.
func (f *Face) OnButton(e input.Event) {
	if e.Button == input.Select && e.Pressed {
		f.markers = !f.markers
		f.MarkDirty()
	}
}

// FormatBattery formats a charge percentage for the battery label.
func FormatBattery(percent int) string {
	return strconv.Itoa(percent) + "%"
}

func (f *Face) MarkDirty() {
	f.dirty = true
}

// Dirty reports whether the face changed since the last Layout.
func (f *Face) Dirty() bool {
	return f.dirty
}

// Time returns the time the dial shows: the animated time during the
// entrance sweep, the wall clock time otherwise.
func (f *Face) Time() clock.Time {
	if f.state.Animating {
		return f.animated
	}
	return f.wall
}

func (f *Face) State() AnimationState {
	return f.state
}

func (f *Face) Palette() Palette {
	return f.palette
}

func (f *Face) HourMarkers() bool {
	return f.markers
}

func (f *Face) BatteryLabel() string {
	return f.battery
}
