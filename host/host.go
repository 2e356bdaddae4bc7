// Package host drives a watchface on a display: it delivers minute
// ticks, battery reports and button presses, steps the entrance
// animations and flushes the changed part of each frame.
package host

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"tictoctac.com/anim"
	"tictoctac.com/battery"
	"tictoctac.com/gui/op"
	"tictoctac.com/input"
	"tictoctac.com/rgb16"
	"tictoctac.com/watchface"
)

// Display is a screen the loop flushes frames to.
type Display interface {
	Size() image.Point
	// Flush copies the dirty region of fb to the screen.
	Flush(fb *rgb16.Image, dirty image.Rectangle) error
}

// DefaultFrameInterval paces animation frames.
const DefaultFrameInterval = time.Second / 30

type Options struct {
	// Battery is optional.
	Battery battery.Source
	// Buttons delivers button events. It may be nil.
	Buttons <-chan input.Event
	// FrameInterval defaults to DefaultFrameInterval.
	FrameInterval time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

type Loop struct {
	face    *watchface.Face
	display Display
	opts    Options

	runner  *anim.Runner
	root    op.Ops
	fb      *rgb16.Image
	minute  time.Time
	reports chan battery.Report
	cancel  context.CancelFunc
}

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(slog.DiscardHandler))
}

// SetLogger sets the logger of the loop. Nil disables logging, the
// default.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	loggerPtr.Store(l)
}

func logger() *slog.Logger {
	return loggerPtr.Load()
}

func New(face *watchface.Face, d Display, opts Options) (*Loop, error) {
	sz := d.Size()
	if sz.X <= 0 || sz.Y <= 0 {
		return nil, fmt.Errorf("host: invalid display size %v", sz)
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultFrameInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Loop{
		face:    face,
		display: d,
		opts:    opts,
		fb:      rgb16.New(image.Rectangle{Max: sz}),
		reports: make(chan battery.Report, 1),
	}, nil
}

// Start delivers the first tick and battery level, starts the battery
// driver and schedules the entrance. The driver stops when ctx is done
// or the loop is closed.
func (l *Loop) Start(ctx context.Context, now time.Time) {
	l.minute = now.Truncate(time.Minute)
	l.face.OnTick(now)
	if src := l.opts.Battery; src != nil {
		if r, err := src.Peek(); err == nil {
			l.face.OnBatteryChange(r.Percent)
		} else if !errors.Is(err, battery.ErrNoReport) {
			logger().Warn("battery unavailable", "err", err)
		}
		ctx, cancel := context.WithCancel(ctx)
		l.cancel = cancel
		go func() {
			err := src.Watch(ctx, l.reports)
			if ctx.Err() == nil {
				logger().Warn("battery driver stopped", "err", err)
			}
		}()
	}
	l.root.Invalidate()
	l.Replay(now)
	logger().Info("watchface started", "size", l.fb.Bounds().Size())
}

// Replay restarts the entrance animation.
func (l *Loop) Replay(now time.Time) {
	if l.runner != nil {
		l.runner.Stop()
	}
	l.runner = anim.NewRunner(now)
	l.face.Start(l.runner)
}

// Button delivers a button event.
func (l *Loop) Button(e input.Event) {
	l.face.OnButton(e)
}

// Battery delivers a battery report.
func (l *Loop) Battery(r battery.Report) {
	l.face.OnBatteryChange(r.Percent)
}

// Framebuffer returns the frame last flushed.
func (l *Loop) Framebuffer() *rgb16.Image {
	return l.fb
}

// Step advances the watchface to now, renders a frame if it changed and
// returns the time the loop should step next.
func (l *Loop) Step(now time.Time) (time.Time, error) {
	if m := now.Truncate(time.Minute); !m.Equal(l.minute) {
		l.minute = m
		l.face.OnTick(now)
	}
	l.drain()
	if l.runner != nil {
		l.runner.Step(now)
	}
	if l.face.Dirty() {
		if err := l.render(); err != nil {
			return time.Time{}, err
		}
	}
	return l.next(now), nil
}

func (l *Loop) drain() {
	for {
		select {
		case r := <-l.reports:
			l.Battery(r)
		case e, ok := <-l.opts.Buttons:
			if !ok {
				l.opts.Buttons = nil
				break
			}
			l.Button(e)
		default:
			return
		}
	}
}

func (l *Loop) render() error {
	start := time.Now()
	ops := l.root.Reset()
	dims := l.fb.Bounds().Size()
	l.face.Layout(ops, dims)
	layoutTime := time.Now()
	dirty := l.root.Draw(l.fb)
	renderTime := time.Now()
	if !dirty.Empty() {
		if err := l.display.Flush(l.fb, dirty); err != nil {
			return fmt.Errorf("host: flush: %w", err)
		}
	}
	flushTime := time.Now()
	logger().Debug("frame",
		"layout", layoutTime.Sub(start),
		"render", renderTime.Sub(layoutTime),
		"flush", flushTime.Sub(renderTime),
		"dirty", dirty)
	return nil
}

func (l *Loop) next(now time.Time) time.Time {
	next := l.minute.Add(time.Minute)
	if l.runner == nil || !l.runner.Active() {
		return next
	}
	frame := now.Add(l.opts.FrameInterval)
	if start := l.runner.Next(); !start.IsZero() && start.After(frame) {
		frame = start
	}
	if frame.Before(next) {
		next = frame
	}
	return next
}

// Run steps the loop until ctx is done, sleeping until the next frame,
// the next minute or the next event.
func (l *Loop) Run(ctx context.Context) error {
	l.Start(ctx, l.opts.Now())
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		now := l.opts.Now()
		next, err := l.Step(now)
		if err != nil {
			return err
		}
		timer.Reset(next.Sub(now))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r := <-l.reports:
			l.Battery(r)
		case e, ok := <-l.opts.Buttons:
			if !ok {
				l.opts.Buttons = nil
				continue
			}
			l.Button(e)
		case <-timer.C:
		}
	}
}

// Close stops the animations and the battery driver, and closes the
// display if it is an io.Closer.
func (l *Loop) Close() error {
	if l.runner != nil {
		l.runner.Stop()
	}
	if l.cancel != nil {
		l.cancel()
	}
	if c, ok := l.display.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
