package battery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/tarm/serial"
)

// Link receives reports from a power management controller over a
// serial line. The controller sends a stream of CBOR maps with the
// [Report] fields keyed by integers.
type Link struct {
	port io.ReadCloser
	dec  *cbor.Decoder

	mu   sync.Mutex
	last Report
	seen bool
}

// DefaultBaud is the power controller line speed.
const DefaultBaud = 115200

// OpenLink opens the serial device dev. An empty dev tries the usual
// UART devices of the platform.
func OpenLink(dev string, baud int) (*Link, error) {
	if baud == 0 {
		baud = DefaultBaud
	}
	var devices []string
	if dev != "" {
		devices = append(devices, dev)
	} else if runtime.GOOS == "linux" {
		devices = append(devices, "/dev/serial0", "/dev/ttyAMA0", "/dev/ttyS0")
	}
	if len(devices) == 0 {
		return nil, errors.New("battery: no serial device specified")
	}
	var firstErr error
	for _, dev := range devices {
		s, err := serial.OpenPort(&serial.Config{Name: dev, Baud: baud})
		if err == nil {
			return NewLink(s)
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, fmt.Errorf("battery: %w", firstErr)
}

// NewLink reads reports from port.
func NewLink(port io.ReadCloser) (*Link, error) {
	mode, err := cbor.DecOptions{
		MaxNestedLevels: 4,
	}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("battery: failed to initialize decoder: %w", err)
	}
	return &Link{port: port, dec: mode.NewDecoder(port)}, nil
}

// Peek returns the most recent report received by Watch.
func (l *Link) Peek() (Report, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.seen {
		return Report{}, ErrNoReport
	}
	return l.last, nil
}

// Watch decodes reports until ctx is done or the line fails.
func (l *Link) Watch(ctx context.Context, reports chan<- Report) error {
	stop := context.AfterFunc(ctx, func() {
		l.port.Close()
	})
	defer stop()
	for {
		var r Report
		err := l.dec.Decode(&r)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			// A report of the wrong shape is consumed and skipped. Syntax
			// errors leave the stream out of sync.
			var typeErr *cbor.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				logger().Warn("malformed battery report", "err", err)
				continue
			}
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("battery: link closed: %w", err)
			}
			return fmt.Errorf("battery: link: %w", err)
		}
		r.Percent = clampPercent(r.Percent)
		l.mu.Lock()
		l.last, l.seen = r, true
		l.mu.Unlock()
		select {
		case reports <- r:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (l *Link) Close() error {
	return l.port.Close()
}
