// Package anim implements the entrance animation primitives: progress
// interpolation, easing curves and a frame-stepped scheduler.
package anim

import (
	"time"
)

// Percentage maps normalized progress to [0, target], truncating
// towards zero. Progress outside [0, 1] is clamped.
func Percentage(progress float64, target int) int {
	progress = min(max(progress, 0), 1)
	return int(progress * float64(target))
}

// Animation describes a single timed animation.
type Animation struct {
	Duration time.Duration
	Delay    time.Duration
	// Curve eases progress. Nil means Linear.
	Curve Curve
	// Update receives eased progress in [0, 1] once per frame.
	Update func(progress float64)
	// Started and Stopped are optional. Stopped reports whether the
	// animation ran to completion.
	Started func()
	Stopped func(finished bool)
}

// Scheduler runs animations.
type Scheduler interface {
	Schedule(a *Animation)
}

type running struct {
	anim    *Animation
	start   time.Time
	started bool
}

// Runner is a Scheduler driven by explicit calls to Step, typically
// once per display frame. Animations are stepped in the order they
// were scheduled.
type Runner struct {
	now     time.Time
	running []*running
}

// NewRunner returns a Runner whose animations are timed from now.
func NewRunner(now time.Time) *Runner {
	return &Runner{now: now}
}

func (r *Runner) Schedule(a *Animation) {
	r.running = append(r.running, &running{
		anim:  a,
		start: r.now.Add(a.Delay),
	})
}

// Active reports whether any animation is scheduled or running.
func (r *Runner) Active() bool {
	return len(r.running) > 0
}

// Next returns the time of the earliest pending animation start, or
// the zero time if an animation is already running or none are
// scheduled.
func (r *Runner) Next() time.Time {
	var next time.Time
	for _, a := range r.running {
		if a.started {
			return time.Time{}
		}
		if next.IsZero() || a.start.Before(next) {
			next = a.start
		}
	}
	return next
}

// Step advances all animations to now.
func (r *Runner) Step(now time.Time) {
	r.now = now
	// Callbacks may schedule new animations.
	current := r.running
	r.running = nil
	var remaining []*running
	for _, a := range current {
		if r.step(a, now) {
			remaining = append(remaining, a)
		}
	}
	r.running = append(remaining, r.running...)
}

func (r *Runner) step(a *running, now time.Time) bool {
	if now.Before(a.start) {
		return true
	}
	if !a.started {
		a.started = true
		if a.anim.Started != nil {
			a.anim.Started()
		}
	}
	t := 1.0
	if d := a.anim.Duration; d > 0 {
		t = min(float64(now.Sub(a.start))/float64(d), 1)
	}
	p := t
	if c := a.anim.Curve; c != nil {
		p = c(t)
	}
	if a.anim.Update != nil {
		a.anim.Update(p)
	}
	if t < 1 {
		return true
	}
	if a.anim.Stopped != nil {
		a.anim.Stopped(true)
	}
	return false
}

// Stop unschedules every animation. Stop hooks of started animations
// run with finished set to false.
func (r *Runner) Stop() {
	current := r.running
	r.running = nil
	for _, a := range current {
		if a.started && a.anim.Stopped != nil {
			a.anim.Stopped(false)
		}
	}
}
