package anim

import "math"

// Curve maps linear time progress in [0, 1] to eased progress.
type Curve func(t float64) float64

func Linear(t float64) float64 {
	return t
}

// EaseInOut starts and ends slowly.
var EaseInOut = CubicBezier(0.42, 0, 0.58, 1)

// CubicBezier returns the easing curve through (0,0), (x1,y1), (x2,y2)
// and (1,1), in the manner of CSS cubic-bezier(). x1 and x2 must be
// in [0, 1] for the curve to be monotonic.
func CubicBezier(x1, y1, x2, y2 float64) Curve {
	return func(t float64) float64 {
		switch {
		case t <= 0:
			return 0
		case t >= 1:
			return 1
		}
		u := solveX(x1, x2, t)
		return bezier(y1, y2, u)
	}
}

// solveX finds the curve parameter u such that x(u) = x. Newton's
// method usually converges in a few steps; bisection catches the
// rest.
func solveX(x1, x2, x float64) float64 {
	const eps = 1e-7
	u := x
	for range 8 {
		d := bezier(x1, x2, u) - x
		if math.Abs(d) < eps {
			return u
		}
		dx := bezierSlope(x1, x2, u)
		if math.Abs(dx) < eps {
			break
		}
		u -= d / dx
	}
	lo, hi := 0.0, 1.0
	u = min(max(u, lo), hi)
	for range 32 {
		d := bezier(x1, x2, u) - x
		if math.Abs(d) < eps {
			break
		}
		if d > 0 {
			hi = u
		} else {
			lo = u
		}
		u = (lo + hi) / 2
	}
	return u
}

// bezier evaluates one coordinate of the curve with end points 0 and
// 1.
func bezier(p1, p2, u float64) float64 {
	v := 1 - u
	return 3*v*v*u*p1 + 3*v*u*u*p2 + u*u*u
}

func bezierSlope(p1, p2, u float64) float64 {
	v := 1 - u
	return 3*v*v*p1 + 6*v*u*(p2-p1) + 3*u*u*(1-p2)
}
