package bresenham

import (
	"image"
	"testing"
)

func TestBresenham(t *testing.T) {
	tests := []image.Point{
		image.Pt(0, 0),
		image.Pt(0, 1),
		image.Pt(1, 0),
		image.Pt(1, 1),
		image.Pt(1, 100),
		image.Pt(100, 1),
		image.Pt(100, 0),
		image.Pt(1000, 50),
		image.Pt(20, 50),
	}
	dirs := []image.Point{
		image.Pt(1, 1),
		image.Pt(-1, 1),
		image.Pt(1, -1),
		image.Pt(-1, -1),
	}
	l := new(Line)
	for _, dir := range dirs {
		for _, dist := range tests {
			dist = dist.Sub(dir)
			dirx, diry, steps := l.Reset(dist)
			p := image.Pt(0, 0)
			for range steps {
				dx, dy := l.Step()
				if dx == 1 {
					if dirx == 1 {
						p.X--
					} else {
						p.X++
					}
				}
				if dy == 1 {
					if diry == 1 {
						p.Y--
					} else {
						p.Y++
					}
				}
			}
			dabs := dist
			if dabs.X < 0 {
				dabs.X = -dabs.X
			}
			if dabs.Y < 0 {
				dabs.Y = -dabs.Y
			}
			if want := max(dabs.X, dabs.Y); steps != want {
				t.Errorf("%v stepped %d times, expected %d", dist, steps, want)
			}
			if p != dist {
				t.Errorf("stepped to %v, expected %v", p, dist)
			}
		}
	}
}

func TestWalk(t *testing.T) {
	tests := []struct {
		from, to image.Point
	}{
		{image.Pt(0, 0), image.Pt(0, 0)},
		{image.Pt(72, 84), image.Pt(72, 26)},
		{image.Pt(72, 84), image.Pt(112, 84)},
		{image.Pt(10, 10), image.Pt(-5, 40)},
		{image.Pt(-3, 7), image.Pt(20, -11)},
	}
	for _, test := range tests {
		var pts []image.Point
		for p := range Walk(test.from, test.to) {
			if n := len(pts); n > 0 {
				d := p.Sub(pts[n-1])
				if d.X < -1 || d.X > 1 || d.Y < -1 || d.Y > 1 {
					t.Errorf("%v-%v: gap between %v and %v", test.from, test.to, pts[n-1], p)
				}
			}
			pts = append(pts, p)
		}
		if pts[0] != test.from || pts[len(pts)-1] != test.to {
			t.Errorf("walk from %v to %v went %v to %v", test.from, test.to, pts[0], pts[len(pts)-1])
		}
		d := test.to.Sub(test.from)
		want := max(d.X, -d.X, d.Y, -d.Y) + 1
		if len(pts) != want {
			t.Errorf("%v-%v: %d points, expected %d", test.from, test.to, len(pts), want)
		}
	}
}
