package clock

import (
	"math"
	"testing"
	"time"

	"golang.org/x/image/math/f32"
)

const epsilon = 1e-3

func near(a, b f32.Vec2) bool {
	return math.Abs(float64(a[0]-b[0])) < epsilon && math.Abs(float64(a[1]-b[1])) < epsilon
}

func TestFromWallClock(t *testing.T) {
	tests := []struct {
		hour, min int
		want      Time
	}{
		{0, 0, Time{0, 0}},
		{9, 41, Time{9, 41}},
		{12, 5, Time{12, 5}},
		{13, 0, Time{1, 0}},
		{23, 59, Time{11, 59}},
	}
	for _, test := range tests {
		wall := time.Date(2024, 3, 1, test.hour, test.min, 30, 0, time.UTC)
		if got := FromWallClock(wall); got != test.want {
			t.Errorf("%02d:%02d: got %+v, expected %+v", test.hour, test.min, got, test.want)
		}
	}
}

func TestHourCreep(t *testing.T) {
	for h := range 12 {
		prev := -1.0
		for m := range 60 {
			a := HourAngle(Time{Hours: h, Minutes: m}, false)
			if a < prev {
				t.Fatalf("%d:%02d: hour angle %v decreased from %v", h, m, a, prev)
			}
			prev = a
		}
		next := HourAngle(Time{Hours: h + 1}, false)
		if prev >= next {
			t.Errorf("%d:59 angle %v passed the next hour %v", h, prev, next)
		}
	}
}

func TestMinuteOpposite(t *testing.T) {
	center := f32.Vec2{72, 84}
	const length = 58
	top := Point(center, MinuteAngle(0), length)
	bottom := Point(center, MinuteAngle(30), length)
	mid := f32.Vec2{(top[0] + bottom[0]) / 2, (top[1] + bottom[1]) / 2}
	if !near(mid, center) {
		t.Errorf("0 and 30 minutes are not diametrical: %v, %v", top, bottom)
	}
	if d := math.Abs(MinuteAngle(30) - MinuteAngle(0)); math.Abs(d-math.Pi) > 1e-9 {
		t.Errorf("got angle difference %v, expected π", d)
	}
}

func TestThreeOClock(t *testing.T) {
	center := f32.Vec2{72, 84}
	const radius = 70
	h := HandsAt(center, Time{Hours: 3, Minutes: 0}, radius, false)
	if !h.ShowMinute || !h.ShowHour {
		t.Fatalf("hands hidden at full radius: %+v", h)
	}
	wantMin := f32.Vec2{center[0], center[1] - (radius - HandMargin)}
	if !near(h.Minute, wantMin) {
		t.Errorf("minute hand at %v, expected %v", h.Minute, wantMin)
	}
	wantHour := f32.Vec2{center[0] + float32(HourHandLength(radius)), center[1]}
	if !near(h.Hour, wantHour) {
		t.Errorf("hour hand at %v, expected %v", h.Hour, wantHour)
	}
	if a := HourAngle(Time{Hours: 3}, false); math.Abs(a-math.Pi/2) > 1e-9 {
		t.Errorf("hour angle %v, expected π/2", a)
	}
}

func TestHandVisibility(t *testing.T) {
	tests := []struct {
		radius       int
		minute, hour bool
	}{
		{0, false, false},
		{HandMargin, false, false},
		{HandMargin + 1, true, false},
		{2 * HandMargin, true, false},
		{2*HandMargin + 1, true, false},
		{2*HandMargin + 6, true, false},
		{2*HandMargin + 7, true, true},
		{70, true, true},
	}
	for _, test := range tests {
		h := HandsAt(f32.Vec2{}, Time{Hours: 4, Minutes: 20}, test.radius, false)
		if h.ShowMinute != test.minute || h.ShowHour != test.hour {
			t.Errorf("radius %d: got minute=%v hour=%v, expected %v %v",
				test.radius, h.ShowMinute, h.ShowHour, test.minute, test.hour)
		}
	}
}

func TestHourHandNeverReversed(t *testing.T) {
	center := f32.Vec2{72, 84}
	for r := 0; r <= 70; r++ {
		h := HandsAt(center, Time{Hours: 3}, r, false)
		if !h.ShowHour {
			continue
		}
		if h.Hour[0] <= center[0] {
			t.Errorf("radius %d: 3 o'clock hour hand tip %v is not east of %v", r, h.Hour, center)
		}
	}
}

func TestSweepMatchesWallClock(t *testing.T) {
	// At the end of the sweep the animated angle must land on the wall
	// clock angle.
	for h := range 13 {
		for _, m := range []int{0, 17, 59} {
			wall := HourAngle(Time{Hours: h, Minutes: m}, false)
			anim := HourAngle(Time{Hours: HoursToMinutes(h), Minutes: m}, true)
			if math.Abs(wall-anim) > 1e-9 {
				t.Errorf("%d:%02d: sweep ends at %v, expected %v", h, m, anim, wall)
			}
		}
	}
}

func TestHoursToMinutes(t *testing.T) {
	for h := range 13 {
		if got, want := HoursToMinutes(h), h*5; got != want {
			t.Errorf("HoursToMinutes(%d) = %d, expected %d", h, got, want)
		}
	}
}

func TestMarkers(t *testing.T) {
	hours := Markers()
	if len(hours) != 10 {
		t.Fatalf("got %d markers, expected 10", len(hours))
	}
	for _, h := range hours {
		if h == 0 || h == 6 {
			t.Errorf("marker at hour %d", h)
		}
	}
	center := f32.Vec2{72, 84}
	start, end := MarkerSegment(center, 3, 70, 144)
	// Negative lengths project through the center: 3 o'clock markers
	// land on the 9 o'clock side.
	if !(start[0] < center[0] && end[0] < center[0]) {
		t.Errorf("3 o'clock marker at %v-%v, expected left of center", start, end)
	}
	if l := center[0] - end[0]; math.Abs(float64(l)-67) > epsilon {
		t.Errorf("marker outer end %v from center, expected 67", l)
	}
}
