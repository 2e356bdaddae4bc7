package config

import (
	"fmt"

	"tictoctac.com/battery"
	"tictoctac.com/input"
)

// ButtonPins returns the configured button pin names, or nil if the
// configuration doesn't name any.
func (c Config) ButtonPins() (map[input.Button]string, error) {
	if len(c.Buttons) == 0 {
		return nil, nil
	}
	pins := make(map[input.Button]string)
	for name, pin := range c.Buttons {
		b, ok := input.ParseButton(name)
		if !ok {
			return nil, fmt.Errorf("config: unknown button %q", name)
		}
		pins[b] = pin
	}
	return pins, nil
}

// OpenBattery opens the configured battery source. Sources holding a
// device implement io.Closer.
func (c Config) OpenBattery() (battery.Source, error) {
	b := c.Battery
	switch b.Kind {
	case Sysfs:
		return &battery.Sysfs{Dir: b.Path, Interval: b.Interval}, nil
	case MAX17048:
		g, err := battery.OpenGauge(b.I2C, b.Interval)
		if err != nil {
			return nil, err
		}
		return g, nil
	case UART:
		l, err := battery.OpenLink(b.Serial, b.Baud)
		if err != nil {
			return nil, err
		}
		return l, nil
	case Sim:
		level := b.Level
		if level == 0 {
			level = 100
		}
		return battery.NewSim(battery.Report{Percent: level}), nil
	default:
		return nil, ErrUnknownBattery
	}
}
