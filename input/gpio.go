package input

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/bcm283x"
)

// Pins maps buttons to GPIO pins. The default is the joystick of the
// Waveshare 1.3" 240x240 HAT: left is back, center is select.
type Pins map[Button]gpio.PinIn

func DefaultPins() Pins {
	return Pins{
		Back:   bcm283x.GPIO5,
		Up:     bcm283x.GPIO6,
		Select: bcm283x.GPIO13,
		Down:   bcm283x.GPIO19,
	}
}

// LookupPins resolves pin names such as "GPIO13" through the periph
// registry.
func LookupPins(names map[Button]string) (Pins, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	pins := make(Pins)
	for b, name := range names {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("input: %s: unknown pin %q", b, name)
		}
		pins[b] = p
	}
	return pins, nil
}

const debounceTimeout = 10 * time.Millisecond

// Open starts a goroutine per button that sends debounced events on
// ch. Buttons are active low.
func Open(pins Pins, ch chan<- Event) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	return listen(pins, ch)
}

func listen(pins Pins, ch chan<- Event) error {
	for b, pin := range pins {
		if err := pin.In(gpio.PullUp, gpio.BothEdges); err != nil {
			return fmt.Errorf("input: %s: %w", b, err)
		}
		go watch(b, pin, ch)
	}
	return nil
}

func watch(b Button, pin gpio.PinIn, ch chan<- Event) {
	pressed := false
	newPressed := false
	for {
		// Wait forever for event, except if we're waiting for
		// the debounce timeout.
		timeout := debounceTimeout
		if newPressed == pressed {
			timeout = -1
		}
		if pin.WaitForEdge(timeout) {
			newPressed = pin.Read() == gpio.Low
		} else {
			// Debounce timeout; ok to send event.
			if newPressed != pressed {
				pressed = newPressed
				ch <- Event{Button: b, Pressed: pressed}
			}
		}
	}
}
