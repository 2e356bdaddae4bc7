// command watchsim runs the TicTocTac watchface in a desktop window.
//
// Keys: m toggles the hour markers, + and - change the simulated battery
// level, r replays the entrance animation and Escape quits.
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

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"tictoctac.com/battery"
	"tictoctac.com/config"
	"tictoctac.com/host"
	"tictoctac.com/input"
	"tictoctac.com/rgb16"
	"tictoctac.com/watchface"
)

// Pebble screen size.
var defaultSize = image.Pt(144, 168)

const batteryStep = 5

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "watchsim: %v\n", err)
		os.Exit(2)
	}
}

func run() error {
	log.SetFlags(log.Flags() &^ (log.Ldate | log.Ltime))
	var flags config.Flags
	flags.Register(flag.CommandLine)
	scale := flag.Int("scale", 3, "window scale")
	flag.Parse()
	cfg, err := flags.Load(flag.CommandLine)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: flags.LogLevel()}))
	host.SetLogger(logger)
	battery.SetLogger(logger)

	// The simulated battery is used unless another is asked for.
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
	win := newWindow(size)
	face := watchface.New(cfg.Watchface(), label, nil)
	loop, err := host.New(face, win, host.Options{Battery: src})
	if err != nil {
		return err
	}
	defer loop.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	loop.Start(ctx, time.Now())

	sim, _ := src.(*battery.Sim)
	g := &game{loop: loop, win: win, sim: sim}
	ebiten.SetWindowSize(size.X**scale, size.Y**scale)
	ebiten.SetWindowTitle("TicTocTac")
	return ebiten.RunGame(g)
}

type game struct {
	loop *host.Loop
	win  *window
	sim  *battery.Sim
}

func (g *game) Update() error {
	now := time.Now()
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		g.loop.Button(input.Event{Button: input.Select, Pressed: true})
		g.loop.Button(input.Event{Button: input.Select, Pressed: false})
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.loop.Replay(now)
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual), inpututil.IsKeyJustPressed(ebiten.KeyKPAdd):
		if g.sim != nil {
			g.sim.Adjust(batteryStep)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract):
		if g.sim != nil {
			g.sim.Adjust(-batteryStep)
		}
	}
	// Ebiten paces the updates; the wakeup time is not needed.
	_, err := g.loop.Step(now)
	return err
}

func (g *game) Draw(screen *ebiten.Image) {
	g.win.draw(screen)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.win.size.X, g.win.size.Y
}

// window is a host.Display backed by an ebiten image.
type window struct {
	size  image.Point
	pix   []byte
	img   *ebiten.Image
	dirty bool
}

func newWindow(size image.Point) *window {
	return &window{
		size: size,
		img:  ebiten.NewImage(size.X, size.Y),
	}
}

func (w *window) Size() image.Point {
	return w.size
}

func (w *window) Flush(fb *rgb16.Image, dirty image.Rectangle) error {
	w.pix = fb.AppendRGBA(w.pix[:0], fb.Bounds())
	w.dirty = true
	return nil
}

func (w *window) draw(screen *ebiten.Image) {
	if w.dirty {
		w.img.WritePixels(w.pix)
		w.dirty = false
	}
	screen.DrawImage(w.img, nil)
}
