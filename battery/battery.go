// Package battery reports the charge state of the watch battery.
//
// Sources are polled or streamed by a driver goroutine and deliver
// [Report] values on a channel. Read errors are logged and the source
// keeps going, so the watchface keeps the last reported level.
package battery

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
)

// Report is a battery charge state.
type Report struct {
	// Percent is the charge level, 0-100.
	Percent  int  `cbor:"1,keyasint"`
	Charging bool `cbor:"2,keyasint,omitempty"`
	Plugged  bool `cbor:"3,keyasint,omitempty"`
}

// Source is a battery monitor.
type Source interface {
	// Peek returns the current charge state.
	Peek() (Report, error)
	// Watch sends charge changes to reports until ctx is done.
	Watch(ctx context.Context, reports chan<- Report) error
}

// ErrNoReport is returned by Peek when a source has not seen a report
// yet.
var ErrNoReport = errors.New("battery: no report")

// DefaultInterval is the polling interval of polled sources.
const DefaultInterval = 30 * time.Second

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(slog.DiscardHandler))
}

// SetLogger sets the logger for battery drivers. Drivers log nothing by
// default; nil restores that.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	loggerPtr.Store(l)
}

func logger() *slog.Logger {
	return loggerPtr.Load()
}

func clampPercent(p int) int {
	return min(max(p, 0), 100)
}

// poll calls peek every interval and sends the reports that differ from
// the previous one. The first successful report is always sent.
func poll(ctx context.Context, name string, interval time.Duration, peek func() (Report, error), reports chan<- Report) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	var last Report
	sent := false
	for {
		r, err := peek()
		switch {
		case err != nil:
			logger().Warn("battery read failed", "source", name, "err", err)
		case !sent || r != last:
			select {
			case reports <- r:
			case <-ctx.Done():
				return ctx.Err()
			}
			last, sent = r, true
		}
		select {
		case <-t.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
