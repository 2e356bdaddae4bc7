// command watchface runs the TicTocTac watchface on an ST7789 SPI panel
// or a Linux framebuffer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"tictoctac.com/battery"
	"tictoctac.com/config"
	"tictoctac.com/fbdev"
	"tictoctac.com/host"
	"tictoctac.com/input"
	"tictoctac.com/lcd"
	"tictoctac.com/watchface"
)

// Version is set by the Go linker with -ldflags='-X main.Version=...'.
var Version string

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "watchface: %v\n", err)
		os.Exit(2)
	}
}

func run() error {
	log.SetFlags(log.Flags() &^ (log.Ldate | log.Ltime))
	var flags config.Flags
	flags.Register(flag.CommandLine)
	flag.Parse()
	cfg, err := flags.Load(flag.CommandLine)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: flags.LogLevel()}))
	host.SetLogger(logger)
	battery.SetLogger(logger)
	ver := Version
	if ver == "" {
		ver = "devel"
	}

	display, err := openDisplay(cfg)
	if err != nil {
		return err
	}
	src, err := cfg.OpenBattery()
	if err != nil {
		display.Close()
		return err
	}
	if c, ok := src.(io.Closer); ok {
		defer c.Close()
	}
	btns := make(chan input.Event, 10)
	if err := openButtons(cfg, btns); err != nil {
		log.Printf("buttons: %v", err)
	}
	label, err := watchface.LabelFace()
	if err != nil {
		display.Close()
		return err
	}
	face := watchface.New(cfg.Watchface(), label, nil)
	loop, err := host.New(face, display, host.Options{
		Battery: src,
		Buttons: btns,
	})
	if err != nil {
		display.Close()
		return err
	}
	defer loop.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info("watchface", "version", ver, "display", cfg.Display.Kind, "size", display.Size(), "battery", cfg.Battery.Kind)
	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

type screen interface {
	host.Display
	io.Closer
}

func openDisplay(cfg config.Config) (screen, error) {
	switch cfg.Display.Kind {
	case config.ST7789:
		d, err := lcd.Open(cfg.Display.SPI, cfg.DisplaySize(), lcd.DefaultPins())
		if err != nil {
			return nil, err
		}
		return d, nil
	case config.FBDev:
		d, err := fbdev.Open(cfg.Display.Device)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, config.ErrUnknownDisplay
	}
}

func openButtons(cfg config.Config, btns chan<- input.Event) error {
	pins := input.DefaultPins()
	names, err := cfg.ButtonPins()
	if err != nil {
		return err
	}
	if names != nil {
		pins, err = input.LookupPins(names)
		if err != nil {
			return err
		}
	}
	return input.Open(pins, btns)
}
