// Package config loads the watchface configuration from an optional
// YAML file and command line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	"tictoctac.com/watchface"
)

var (
	ErrUnknownDisplay = errors.New("config: unknown display kind")
	ErrUnknownBattery = errors.New("config: unknown battery kind")
)

// Display kinds.
const (
	ST7789 = "st7789"
	FBDev  = "fbdev"
)

// Battery kinds.
const (
	Sysfs    = "sysfs"
	MAX17048 = "max17048"
	UART     = "uart"
	Sim      = "sim"
)

// Config represents the watchface.yaml configuration.
type Config struct {
	HourMarkers     bool    `yaml:"hour_markers"`
	FinalRadius     int     `yaml:"final_radius"`
	StrokeWidth     float32 `yaml:"stroke_width"`
	SlimStrokeWidth float32 `yaml:"slim_stroke_width"`
	Antialiasing    bool    `yaml:"antialiasing"`
	LabelHeight     int     `yaml:"label_height"`
	// MarkerSpan is the distance the hour markers are measured from,
	// zero for the display width.
	MarkerSpan int       `yaml:"marker_span,omitempty"`
	Animation  Animation `yaml:"animation"`
	Colors     Colors    `yaml:"colors"`
	Display    Display   `yaml:"display"`
	Battery    Battery   `yaml:"battery"`
	// Buttons maps button names to GPIO pin names.
	Buttons map[string]string `yaml:"buttons,omitempty"`
}

type Animation struct {
	Duration time.Duration `yaml:"duration"`
	Delay    time.Duration `yaml:"delay"`
}

type Colors struct {
	Background Color `yaml:"background"`
	Minute     Color `yaml:"minute"`
	Hour       Color `yaml:"hour"`
	Marker     Color `yaml:"marker"`
	Text       Color `yaml:"text"`
}

type Display struct {
	Kind   string `yaml:"kind"`
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
	// SPI port name for st7789 panels, empty for the first port.
	SPI string `yaml:"spi,omitempty"`
	// Device path for fbdev displays.
	Device string `yaml:"device,omitempty"`
}

type Battery struct {
	Kind     string        `yaml:"kind"`
	Path     string        `yaml:"path,omitempty"`
	I2C      string        `yaml:"i2c,omitempty"`
	Serial   string        `yaml:"serial,omitempty"`
	Baud     int           `yaml:"baud,omitempty"`
	Interval time.Duration `yaml:"interval,omitempty"`
	// Level is the initial level of the simulated battery.
	Level int `yaml:"level,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	wf := watchface.DefaultConfig()
	return Config{
		HourMarkers:     wf.HourMarkers,
		FinalRadius:     wf.FinalRadius,
		StrokeWidth:     wf.StrokeWidth,
		SlimStrokeWidth: wf.SlimStrokeWidth,
		Antialiasing:    wf.Antialias,
		LabelHeight:     wf.LabelHeight,
		MarkerSpan:      wf.MarkerSpan,
		Animation: Animation{
			Duration: wf.Duration,
			Delay:    wf.Delay,
		},
		Colors: Colors{
			Background: Color(wf.Colors.Background),
			Minute:     Color(wf.Colors.Minute),
			Hour:       Color(wf.Colors.Hour),
			Marker:     Color(wf.Colors.Marker),
			Text:       Color(wf.Colors.Text),
		},
		Display: Display{Kind: ST7789},
		Battery: Battery{Kind: Sysfs},
	}
}

// Load reads the configuration file at path on top of the defaults.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a configuration file on top of the defaults. Unknown
// keys are errors.
func Parse(data []byte) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the display and battery kinds and the dial geometry.
func (c *Config) Validate() error {
	c.Display.Kind = strings.ToLower(c.Display.Kind)
	switch c.Display.Kind {
	case ST7789, FBDev:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDisplay, c.Display.Kind)
	}
	c.Battery.Kind = strings.ToLower(c.Battery.Kind)
	switch c.Battery.Kind {
	case Sysfs, MAX17048, UART, Sim:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBattery, c.Battery.Kind)
	}
	if c.FinalRadius <= 0 {
		return fmt.Errorf("config: final_radius must be positive, got %d", c.FinalRadius)
	}
	if c.StrokeWidth <= 0 || c.SlimStrokeWidth <= 0 {
		return errors.New("config: stroke widths must be positive")
	}
	if c.Animation.Duration < 0 || c.Animation.Delay < 0 {
		return errors.New("config: negative animation timing")
	}
	if c.Display.Width < 0 || c.Display.Height < 0 {
		return errors.New("config: negative display size")
	}
	return nil
}

// DisplaySize returns the configured display size, or the zero point
// for the driver default.
func (c Config) DisplaySize() image.Point {
	return image.Pt(c.Display.Width, c.Display.Height)
}

// Watchface converts the configuration to watchface settings.
func (c Config) Watchface() watchface.Config {
	wf := watchface.DefaultConfig()
	wf.HourMarkers = c.HourMarkers
	wf.FinalRadius = c.FinalRadius
	wf.StrokeWidth = c.StrokeWidth
	wf.SlimStrokeWidth = c.SlimStrokeWidth
	wf.Antialias = c.Antialiasing
	wf.LabelHeight = c.LabelHeight
	wf.MarkerSpan = c.MarkerSpan
	wf.Duration = c.Animation.Duration
	wf.Delay = c.Animation.Delay
	wf.Colors = watchface.Colors{
		Background: color.NRGBA(c.Colors.Background),
		Minute:     color.NRGBA(c.Colors.Minute),
		Hour:       color.NRGBA(c.Colors.Hour),
		Marker:     color.NRGBA(c.Colors.Marker),
		Text:       color.NRGBA(c.Colors.Text),
	}
	return wf
}

// Color is an opaque color written as #rrggbb.
type Color color.NRGBA

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	col, err := ParseColor(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*c = col
	return nil
}

func (c Color) MarshalYAML() (any, error) {
	return c.String(), nil
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseColor parses a #rrggbb color.
func ParseColor(s string) (Color, error) {
	var r, g, b uint8
	if len(s) != 7 || s[0] != '#' {
		return Color{}, fmt.Errorf("config: invalid color %q", s)
	}
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return Color{}, fmt.Errorf("config: invalid color %q", s)
	}
	return Color{R: r, G: g, B: b, A: 0xff}, nil
}
