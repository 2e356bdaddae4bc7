// command watchterm previews the TicTocTac watchface in a terminal,
// two pixels per character cell.
//
// Keys: m toggles the hour markers, + and - change the simulated battery
// level, r replays the entrance animation, q or Escape quits.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"tictoctac.com/battery"
	"tictoctac.com/config"
	"tictoctac.com/host"
	"tictoctac.com/input"
	"tictoctac.com/watchface"
)

// Pebble screen size.
var defaultSize = image.Pt(144, 168)

const batteryStep = 5

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "watchterm: %v\n", err)
		os.Exit(2)
	}
}

func run() error {
	log.SetFlags(log.Flags() &^ (log.Ldate | log.Ltime))
	var flags config.Flags
	flags.Register(flag.CommandLine)
	logFile := flag.String("log", "", "write log to `file`")
	flag.Parse()
	cfg, err := flags.Load(flag.CommandLine)
	if err != nil {
		return err
	}
	// The terminal is taken; log elsewhere.
	logOut := io.Discard
	if *logFile != "" {
		f, err := os.Create(*logFile)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: flags.LogLevel()}))
	host.SetLogger(logger)
	battery.SetLogger(logger)

	if flags.Battery == "" {
		cfg.Battery.Kind = config.Sim
	}
	src, err := cfg.OpenBattery()
	if err != nil {
		return err
	}
	if c, ok := src.(io.Closer); ok {
		defer c.Close()
	}
	size := cfg.DisplaySize()
	if size.X == 0 || size.Y == 0 {
		size = defaultSize
	}
	label, err := watchface.LabelFace()
	if err != nil {
		return err
	}

	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	term := &terminal{screen: s, size: size}
	face := watchface.New(cfg.Watchface(), label, nil)
	loop, err := host.New(face, term, host.Options{Battery: src})
	if err != nil {
		s.Fini()
		return err
	}
	defer loop.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := make(chan tcell.Event, 10)
	quit := make(chan struct{})
	defer close(quit)
	go s.ChannelEvents(events, quit)

	sim, _ := src.(*battery.Sim)
	loop.Start(ctx, time.Now())
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		now := time.Now()
		next, err := loop.Step(now)
		if err != nil {
			return err
		}
		timer.Reset(next.Sub(now))
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				s.Sync()
				term.redraw()
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
					return nil
				}
				if ev.Key() != tcell.KeyRune {
					break
				}
				switch ev.Rune() {
				case 'q':
					return nil
				case 'm':
					loop.Button(input.Event{Button: input.Select, Pressed: true})
					loop.Button(input.Event{Button: input.Select, Pressed: false})
				case 'r':
					loop.Replay(time.Now())
				case '+', '=':
					if sim != nil {
						sim.Adjust(batteryStep)
					}
				case '-':
					if sim != nil {
						sim.Adjust(-batteryStep)
					}
				}
			}
		case <-timer.C:
		}
	}
}
