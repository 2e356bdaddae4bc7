package config

import (
	"flag"
	"fmt"
	"log/slog"
	"strings"
)

// Flags are the command line options shared by the watchface commands.
// Flags given on the command line override the configuration file.
type Flags struct {
	Config  string
	Display string
	Battery string
	Markers bool
	Verbose bool
}

// Register defines the flags on fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "configuration `file`")
	fs.StringVar(&f.Display, "display", "", "display kind ("+ST7789+", "+FBDev+")")
	fs.StringVar(&f.Battery, "battery", "", "battery kind ("+strings.Join([]string{Sysfs, MAX17048, UART, Sim}, ", ")+")")
	fs.BoolVar(&f.Markers, "markers", false, "show hour markers")
	fs.BoolVar(&f.Verbose, "v", false, "verbose logging")
}

// Load reads the configuration file and applies the flags set on fs.
func (f *Flags) Load(fs *flag.FlagSet) (Config, error) {
	c, err := Load(f.Config)
	if err != nil {
		return Config{}, err
	}
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "display":
			c.Display.Kind = f.Display
		case "battery":
			c.Battery.Kind = f.Battery
		case "markers":
			c.HourMarkers = f.Markers
		}
	})
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w (flags)", err)
	}
	return c, nil
}

// LogLevel is the level selected by -v.
func (f *Flags) LogLevel() slog.Level {
	if f.Verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
