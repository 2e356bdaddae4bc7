package battery

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Bus is the subset of an I²C bus used by the fuel gauge.
type Bus interface {
	Tx(addr uint16, w, r []byte) error
}

// Gauge is a MAX17048 fuel gauge.
type Gauge struct {
	bus      Bus
	closer   i2c.BusCloser
	interval time.Duration
}

const (
	gaugeAddr = 0x36

	regSOC     = 0x04
	regVersion = 0x08
	regCRate   = 0x16
)

// OpenGauge opens the fuel gauge on the named I²C bus, or the first
// available bus if name is empty.
func OpenGauge(name string, interval time.Duration) (*Gauge, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("battery: %w", err)
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("battery: %w", err)
	}
	g := NewGauge(b, interval)
	g.closer = b
	if _, err := g.readReg(regVersion); err != nil {
		b.Close()
		return nil, fmt.Errorf("battery: no fuel gauge on %s: %w", b, err)
	}
	return g, nil
}

func NewGauge(bus Bus, interval time.Duration) *Gauge {
	return &Gauge{bus: bus, interval: interval}
}

func (g *Gauge) readReg(reg byte) (uint16, error) {
	var resp [2]byte
	if err := g.bus.Tx(gaugeAddr, []byte{reg}, resp[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(resp[:]), nil
}

func (g *Gauge) Peek() (Report, error) {
	soc, err := g.readReg(regSOC)
	if err != nil {
		return Report{}, fmt.Errorf("battery: gauge: %w", err)
	}
	crate, err := g.readReg(regCRate)
	if err != nil {
		return Report{}, fmt.Errorf("battery: gauge: %w", err)
	}
	// The state of charge is in 1/256 %, the charge rate in 0.208 %/h.
	return Report{
		Percent:  clampPercent(int(soc >> 8)),
		Charging: int16(crate) > 0,
	}, nil
}

func (g *Gauge) Watch(ctx context.Context, reports chan<- Report) error {
	return poll(ctx, "max17048", g.interval, g.Peek, reports)
}

func (g *Gauge) Close() error {
	if g.closer == nil {
		return nil
	}
	return g.closer.Close()
}
