package battery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultSysfsDir is the power supply class directory of the battery
// on most Linux boards.
const DefaultSysfsDir = "/sys/class/power_supply/battery"

// Sysfs polls a Linux power supply class directory.
type Sysfs struct {
	Dir      string
	Interval time.Duration
}

func (s *Sysfs) Peek() (Report, error) {
	dir := s.Dir
	if dir == "" {
		dir = DefaultSysfsDir
	}
	capacity, err := readAttr(dir, "capacity")
	if err != nil {
		return Report{}, err
	}
	p, err := strconv.Atoi(capacity)
	if err != nil {
		return Report{}, fmt.Errorf("battery: %s: invalid capacity %q", dir, capacity)
	}
	r := Report{Percent: clampPercent(p)}
	// Not every supply has a status attribute.
	if status, err := readAttr(dir, "status"); err == nil {
		switch status {
		case "Charging":
			r.Charging = true
			r.Plugged = true
		case "Full", "Not charging":
			r.Plugged = true
		}
	}
	return r, nil
}

func (s *Sysfs) Watch(ctx context.Context, reports chan<- Report) error {
	return poll(ctx, "sysfs", s.Interval, s.Peek, reports)
}

func readAttr(dir, name string) (string, error) {
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("battery: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
