package watchface

import (
	"image/color"
	"time"
)

// Config holds the watchface appearance and entrance timing.
type Config struct {
	// FinalRadius is the dial radius once the entrance completes.
	FinalRadius int
	// StrokeWidth is the width of the hands, SlimStrokeWidth the width
	// of the hour markers.
	StrokeWidth     float32
	SlimStrokeWidth float32
	Antialias       bool
	HourMarkers     bool
	// MarkerSpan is the distance the hour markers are laid out from.
	// Zero means the display width.
	MarkerSpan int
	// LabelHeight is the height of the battery strip at the bottom.
	LabelHeight int

	// Duration is the radius animation length; the hand sweep runs
	// twice as long. Both start after Delay.
	Duration time.Duration
	Delay    time.Duration

	Colors Colors
}

type Colors struct {
	Background color.NRGBA
	Minute     color.NRGBA
	Hour       color.NRGBA
	Marker     color.NRGBA
	Text       color.NRGBA
}

func DefaultConfig() Config {
	return Config{
		FinalRadius:     70,
		StrokeWidth:     8,
		SlimStrokeWidth: 2,
		Antialias:       true,
		LabelHeight:     20,
		Duration:        500 * time.Millisecond,
		Delay:           600 * time.Millisecond,
		Colors: Colors{
			Background: rgb(0x000000),
			Minute:     rgb(0xffffff),
			Hour:       rgb(0x02a780),
			Marker:     rgb(0xffffff),
			Text:       rgb(0xffffff),
		},
	}
}

func rgb(c uint32) color.NRGBA {
	return color.NRGBA{R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c), A: 0xff}
}
