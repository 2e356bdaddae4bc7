// package lcd implements an LCD driver for ST7789 SPI panels such as
// the Waveshare 1.3" 240x240 HAT.
package lcd

import (
	"fmt"
	"image"
	"time"
	"unsafe"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/bcm283x"
	"tictoctac.com/rgb16"
)

type LCD struct {
	dims      image.Point
	pins      Pins
	spi       spi.PortCloser
	conn      spi.Conn
	window    image.Rectangle
	txBuf     []byte
	backlight bool
}

// Pins are the control lines of the panel.
type Pins struct {
	CS, Reset, DC, Backlight gpio.PinOut
}

// DefaultPins are the pins of the Waveshare HAT.
func DefaultPins() Pins {
	return Pins{
		CS:        bcm283x.GPIO8,
		Reset:     bcm283x.GPIO27,
		DC:        bcm283x.GPIO25,
		Backlight: bcm283x.GPIO24,
	}
}

const (
	DefaultWidth  = 240
	DefaultHeight = 240
)

// Open initializes the panel of size dims on the named SPI port, or the
// first available port if port is empty.
func Open(port string, dims image.Point, pins Pins) (*LCD, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("lcd: %w", err)
	}
	if dims == (image.Point{}) {
		dims = image.Pt(DefaultWidth, DefaultHeight)
	}
	p, err := spireg.Open(port)
	if err != nil {
		return nil, fmt.Errorf("lcd: %w", err)
	}
	c, err := p.Connect(40*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("lcd: %w", err)
	}

	lcd := &LCD{
		dims: dims,
		pins: pins,
		spi:  p,
		conn: c,
	}
	maxTx := 4096
	if lim, ok := c.(conn.Limits); ok {
		maxTx = lim.MaxTxSize()
	}
	lcd.txBuf = make([]byte, maxTx)
	if err := lcd.setup(); err != nil {
		lcd.Close()
		return nil, err
	}
	return lcd, nil
}

// Close turns off the backlight and releases the SPI port.
func (l *LCD) Close() error {
	if l.spi == nil {
		return nil
	}
	l.pins.Backlight.Out(gpio.Low)
	err := l.spi.Close()
	l.spi = nil
	l.conn = nil
	return err
}

func (l *LCD) sendCommand(cmd byte, data ...byte) error {
	l.pins.DC.Out(gpio.Low)
	if err := l.conn.Tx([]byte{cmd}, nil); err != nil {
		return err
	}
	if len(data) > 0 {
		l.pins.DC.Out(gpio.High)
		if err := l.conn.Tx(data, nil); err != nil {
			return err
		}
	}
	return nil
}

type command struct {
	op    byte
	data  []byte
	delay time.Duration
}

// initSequence configures an ST7789 for 16-bit little endian pixels in
// the orientation of the Waveshare HAT.
var initSequence = []command{
	{op: 0x36 /* MADCTL: MX, MY, RGB */, data: []byte{0x70}},
	{op: 0x11 /* SLPOUT */, delay: 120 * time.Millisecond},
	{op: 0x3a /* COLMOD: 16 bit */, data: []byte{0x05}},
	{op: 0xb0 /* RAMCTRL: little endian */, data: []byte{0x00, 0xf8}},
	{op: 0xb2 /* PORCTRL */, data: []byte{0x0c, 0x0c, 0x00, 0x33, 0x33}},
	{op: 0xb7 /* GCTRL */, data: []byte{0x35}},
	{op: 0xbb /* VCOMS */, data: []byte{0x37}},
	{op: 0xc0 /* LCMCTRL */, data: []byte{0x2c}},
	{op: 0xc2 /* VDVVRHEN */, data: []byte{0x01}},
	{op: 0xc3 /* VRHS */, data: []byte{0x12}},
	{op: 0xc4 /* VDVS */, data: []byte{0x20}},
	{op: 0xc6 /* FRCTRL2: 60 Hz */, data: []byte{0x0f}},
	{op: 0xd0 /* PWCTRL1 */, data: []byte{0xa4, 0xa1}},
	{op: 0xba /* DGMEN */, data: []byte{0x04}},
	{op: 0x21 /* INVON */},
	{op: 0x29 /* DISPON */},
}

func (l *LCD) send(cmds ...command) error {
	for _, c := range cmds {
		if err := l.sendCommand(c.op, c.data...); err != nil {
			return err
		}
		if c.delay > 0 {
			sleep(c.delay)
		}
	}
	return nil
}

// sleep is replaced in tests.
var sleep = time.Sleep

func (l *LCD) setup() error {
	for _, p := range []gpio.PinOut{l.pins.CS, l.pins.Reset, l.pins.DC} {
		if err := p.Out(gpio.High); err != nil {
			return fmt.Errorf("lcd: %w", err)
		}
	}
	// Keep the backlight off until the first frame is flushed.
	l.pins.Backlight.Out(gpio.Low)

	for _, lvl := range []gpio.Level{gpio.High, gpio.Low, gpio.High} {
		l.pins.Reset.Out(lvl)
		sleep(100 * time.Millisecond)
	}
	if err := l.send(initSequence...); err != nil {
		return fmt.Errorf("lcd: SPI command: %w", err)
	}
	return nil
}

func (l *LCD) Size() image.Point {
	return l.dims
}

// Flush sends the dirty region of fb to the panel.
func (l *LCD) Flush(fb *rgb16.Image, dirty image.Rectangle) error {
	sr := dirty.Intersect(fb.Bounds()).Intersect(image.Rectangle{Max: l.dims})
	if sr.Empty() {
		return nil
	}
	if err := l.setWindow(sr); err != nil {
		return fmt.Errorf("lcd: %w", err)
	}

	l.pins.DC.Out(gpio.High)

	n := 0
	flush := func() error {
		if n == 0 {
			return nil
		}
		err := l.conn.Tx(l.txBuf[:n], nil)
		n = 0
		return err
	}
	for y := sr.Min.Y; y < sr.Max.Y; y++ {
		row := fb.Row(y, sr.Min.X, sr.Max.X)
		b := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(row))), len(row)*2)
		for len(b) > 0 {
			c := copy(l.txBuf[n:], b)
			n += c
			b = b[c:]
			if n == len(l.txBuf) {
				if err := flush(); err != nil {
					return fmt.Errorf("lcd: blit: %w", err)
				}
			}
		}
	}
	if err := flush(); err != nil {
		return fmt.Errorf("lcd: blit: %w", err)
	}

	// Turn on backlight after the first frame.
	if !l.backlight {
		l.pins.Backlight.Out(gpio.High)
		l.backlight = true
	}
	return nil
}

func (l *LCD) setWindow(r image.Rectangle) error {
	cmds := []command{{op: 0x2c /* RAMWR */}}
	if l.window != r {
		l.window = r
		x0, x1 := r.Min.X, r.Max.X-1
		y0, y1 := r.Min.Y, r.Max.Y-1
		cmds = append([]command{
			{op: 0x2a /* CASET */, data: []byte{byte(x0 >> 8), byte(x0), byte(x1 >> 8), byte(x1)}},
			{op: 0x2b /* RASET */, data: []byte{byte(y0 >> 8), byte(y0), byte(y1 >> 8), byte(y1)}},
		}, cmds...)
	}
	return l.send(cmds...)
}
