//go:build !linux

package fbdev

import (
	"image"

	"tictoctac.com/rgb16"
)

type Device struct{}

func Open(path string) (*Device, error) {
	return nil, ErrUnsupported
}

func (d *Device) Size() image.Point {
	return image.Point{}
}

func (d *Device) Format() Format {
	return Format{}
}

func (d *Device) Flush(fb *rgb16.Image, dirty image.Rectangle) error {
	return ErrUnsupported
}

func (d *Device) Close() error {
	return nil
}
