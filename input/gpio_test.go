package input

import (
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestGPIOEvents(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO13", EdgesChan: make(chan gpio.Level)}
	events := make(chan Event, 10)
	if err := listen(Pins{Select: pin}, events); err != nil {
		t.Fatal(err)
	}
	pin.EdgesChan <- gpio.Low
	select {
	case e := <-events:
		if want := (Event{Button: Select, Pressed: true}); e != want {
			t.Errorf("got %+v, expected %+v", e, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no press event")
	}
	pin.EdgesChan <- gpio.High
	select {
	case e := <-events:
		if want := (Event{Button: Select, Pressed: false}); e != want {
			t.Errorf("got %+v, expected %+v", e, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no release event")
	}
	select {
	case e := <-events:
		t.Errorf("unexpected event %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}
