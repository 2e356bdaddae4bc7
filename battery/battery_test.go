package battery

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
)

func writeAttr(t *testing.T, dir, name, val string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(val+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestSysfs(t *testing.T) {
	tests := []struct {
		capacity, status string
		want             Report
	}{
		{"57", "Charging", Report{Percent: 57, Charging: true, Plugged: true}},
		{"100", "Full", Report{Percent: 100, Plugged: true}},
		{"3", "Discharging", Report{Percent: 3}},
		{"120", "", Report{Percent: 100}},
	}
	for _, test := range tests {
		dir := t.TempDir()
		writeAttr(t, dir, "capacity", test.capacity)
		if test.status != "" {
			writeAttr(t, dir, "status", test.status)
		}
		s := &Sysfs{Dir: dir}
		got, err := s.Peek()
		if err != nil {
			t.Fatal(err)
		}
		if got != test.want {
			t.Errorf("capacity %s, status %q: got %+v, expected %+v", test.capacity, test.status, got, test.want)
		}
	}
}

func TestSysfsErrors(t *testing.T) {
	dir := t.TempDir()
	s := &Sysfs{Dir: dir}
	if _, err := s.Peek(); err == nil {
		t.Error("missing capacity succeeded")
	}
	writeAttr(t, dir, "capacity", "unknown")
	if _, err := s.Peek(); err == nil {
		t.Error("invalid capacity succeeded")
	}
}

func TestSysfsWatch(t *testing.T) {
	dir := t.TempDir()
	writeAttr(t, dir, "capacity", "50")
	s := &Sysfs{Dir: dir, Interval: time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())
	reports := make(chan Report)
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, reports)
	}()
	if r := <-reports; r.Percent != 50 {
		t.Errorf("got %d%%, expected 50%%", r.Percent)
	}
	writeAttr(t, dir, "capacity", "49")
	if r := <-reports; r.Percent != 49 {
		t.Errorf("got %d%%, expected 49%%", r.Percent)
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Watch returned %v", err)
	}
}

type fakeBus map[byte]uint16

func (b fakeBus) Tx(addr uint16, w, r []byte) error {
	if addr != gaugeAddr {
		return errors.New("no device")
	}
	v, ok := b[w[0]]
	if !ok {
		return errors.New("unknown register")
	}
	r[0], r[1] = byte(v>>8), byte(v)
	return nil
}

func TestGauge(t *testing.T) {
	tests := []struct {
		soc, crate uint16
		want       Report
	}{
		{0x3980, 0x0010, Report{Percent: 57, Charging: true}},
		{0x64ff, 0xffe0, Report{Percent: 100}},
		{0x0000, 0x0000, Report{Percent: 0}},
		{0x6500, 0x0000, Report{Percent: 100}},
	}
	for _, test := range tests {
		g := NewGauge(fakeBus{regSOC: test.soc, regCRate: test.crate}, 0)
		got, err := g.Peek()
		if err != nil {
			t.Fatal(err)
		}
		if got != test.want {
			t.Errorf("soc %#04x, crate %#04x: got %+v, expected %+v", test.soc, test.crate, got, test.want)
		}
	}
	g := NewGauge(fakeBus{}, 0)
	if _, err := g.Peek(); err == nil {
		t.Error("failed read succeeded")
	}
}

func TestLink(t *testing.T) {
	var stream bytes.Buffer
	for _, v := range []any{
		Report{Percent: 80, Plugged: true},
		"not a report",
		Report{Percent: 79, Charging: true, Plugged: true},
		map[int]any{1: 150},
	} {
		b, err := cbor.Marshal(v)
		if err != nil {
			t.Fatal(err)
		}
		stream.Write(b)
	}
	l, err := NewLink(io.NopCloser(&stream))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.Peek(); !errors.Is(err, ErrNoReport) {
		t.Errorf("Peek before any report returned %v", err)
	}
	reports := make(chan Report, 10)
	err = l.Watch(context.Background(), reports)
	if !errors.Is(err, io.EOF) {
		t.Errorf("Watch returned %v, expected EOF", err)
	}
	close(reports)
	var got []Report
	for r := range reports {
		got = append(got, r)
	}
	want := []Report{
		{Percent: 80, Plugged: true},
		{Percent: 79, Charging: true, Plugged: true},
		{Percent: 100},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d reports, expected %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("report %d: got %+v, expected %+v", i, got[i], want[i])
		}
	}
	if r, err := l.Peek(); err != nil || r != want[2] {
		t.Errorf("Peek returned %+v, %v", r, err)
	}
}

func TestSim(t *testing.T) {
	s := NewSim(Report{Percent: 95})
	s.Adjust(10)
	if r, _ := s.Peek(); r.Percent != 100 {
		t.Errorf("got %d%%, expected 100%%", r.Percent)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reports := make(chan Report)
	go s.Watch(ctx, reports)
	if r := <-reports; r.Percent != 100 {
		t.Errorf("got %d%%, expected 100%%", r.Percent)
	}
	s.Adjust(-101)
	if r := <-reports; r.Percent != 0 {
		t.Errorf("got %d%%, expected 0%%", r.Percent)
	}
}

func TestSimConcurrentAdjust(t *testing.T) {
	s := NewSim(Report{Percent: 25})
	var wg sync.WaitGroup
	for i := range 60 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%3 == 0 {
				s.Adjust(-1)
			} else {
				s.Adjust(1)
			}
		}()
	}
	wg.Wait()
	// 20 decrements and 40 increments, never reaching the clamp.
	if r, _ := s.Peek(); r.Percent != 25-20+40 {
		t.Errorf("got %d%%, expected %d%%", r.Percent, 25-20+40)
	}
}
