// Package clock computes analog clock geometry: hand angles, hand
// lengths and dial coordinates. Angle 0 points at 12 o'clock and
// angles increase clockwise.
package clock

import (
	"math"
	"time"

	"golang.org/x/image/math/f32"
)

// HandMargin is the distance between the dial edge and the tip of the
// minute hand.
const HandMargin = 12

const fullCircle = 2 * math.Pi

// Time is a dial time. Hours are 0-12 on the wall clock, or pre-scaled
// to 0-60 while the entrance sweep is running.
type Time struct {
	Hours   int
	Minutes int
}

// FromWallClock converts a wall clock time to a dial time. Hours past
// noon are folded by 12; noon itself stays 12.
func FromWallClock(t time.Time) Time {
	h, m, _ := t.Clock()
	if h > 12 {
		h -= 12
	}
	return Time{Hours: h, Minutes: m}
}

// HoursToMinutes scales an hour out of 12 to the 60 unit range used
// while sweeping.
func HoursToMinutes(hours int) int {
	return hours * 60 / 12
}

func MinuteAngle(minutes int) float64 {
	return fullCircle * float64(minutes) / 60
}

// HourAngle returns the hour hand angle, including the creep towards
// the next hour as the minutes pass. While animating, t.Hours is out
// of 60.
func HourAngle(t Time, animating bool) float64 {
	var a float64
	if animating {
		a = fullCircle * float64(t.Hours) / 60
	} else {
		a = fullCircle * float64(t.Hours) / 12
	}
	return a + MinuteAngle(t.Minutes)/fullCircle*(fullCircle/12)
}

// Point returns the dial point at angle and distance length from
// center. Negative lengths project through the center.
func Point(center f32.Vec2, angle, length float64) f32.Vec2 {
	s, c := math.Sincos(angle)
	return f32.Vec2{
		center[0] + float32(length*s),
		center[1] - float32(length*c),
	}
}

func MinuteHandLength(radius int) int {
	return radius - HandMargin
}

func HourHandLength(radius int) int {
	return radius - (2*HandMargin + 6)
}

// Hands describes the two hand segments, both starting at Center.
type Hands struct {
	Center f32.Vec2
	Minute f32.Vec2
	Hour   f32.Vec2
	// ShowMinute and ShowHour are false while the radius is too small
	// for the hand to have a positive length.
	ShowMinute bool
	ShowHour   bool
}

func HandsAt(center f32.Vec2, t Time, radius int, animating bool) Hands {
	return Hands{
		Center:     center,
		Minute:     Point(center, MinuteAngle(t.Minutes), float64(MinuteHandLength(radius))),
		Hour:       Point(center, HourAngle(t, animating), float64(HourHandLength(radius))),
		ShowMinute: MinuteHandLength(radius) > 0,
		ShowHour:   HourHandLength(radius) > 0,
	}
}

// Markers lists the hours that carry a marker. 12 and 6 o'clock are
// left bare.
func Markers() []int {
	var hours []int
	for h := range 12 {
		if h != 0 && h != 6 {
			hours = append(hours, h)
		}
	}
	return hours
}

// MarkerSegment returns the short radial segment marking hour. The
// segment lengths are measured from the dial radius inwards from the
// display width, so the markers hug the display edge.
func MarkerSegment(center f32.Vec2, hour, radius, width int) (start, end f32.Vec2) {
	a := fullCircle * float64(hour) / 12
	start = Point(center, a, float64(radius-width+2))
	end = Point(center, a, float64(radius-width+7))
	return start, end
}
