package fbdev

import (
	"fmt"
	"image"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
	"tictoctac.com/rgb16"
)

const (
	_FBIOGET_VSCREENINFO = 0x4600
	_FBIOGET_FSCREENINFO = 0x4602
)

type fbBitfield struct {
	offset, length, msbRight uint32
}

type fbVarScreeninfo struct {
	xres, yres               uint32
	xresVirtual, yresVirtual uint32
	xoffset, yoffset         uint32
	bitsPerPixel, grayscale  uint32
	red, green, blue, transp fbBitfield
	nonstd, activate         uint32
	height, width            uint32
	accelFlags, pixclock     uint32
	leftMargin, rightMargin  uint32
	upperMargin, lowerMargin uint32
	hsyncLen, vsyncLen       uint32
	sync, vmode              uint32
	rotate, colorspace       uint32
	reserved                 [4]uint32
}

type fbFixScreeninfo struct {
	id                            [16]byte
	smemStart                     uintptr
	smemLen, typ, typeAux, visual uint32
	xpanstep, ypanstep, ywrapstep uint16
	lineLength                    uint32
	mmioStart                     uintptr
	mmioLen, accel                uint32
	capabilities                  uint16
	reserved                      [2]uint16
}

type Device struct {
	dev    *os.File
	mem    []byte
	size   image.Point
	stride int
	format Format
}

// Open maps the framebuffer device at path.
func Open(path string) (*Device, error) {
	if path == "" {
		path = DefaultDevice
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("fbdev: %w", err)
	}
	d, err := setup(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("fbdev: %s: %w", path, err)
	}
	return d, nil
}

func setup(dev *os.File) (*Device, error) {
	fd := dev.Fd()
	var vinfo fbVarScreeninfo
	if err := ioctl(fd, "FBIOGET_VSCREENINFO", _FBIOGET_VSCREENINFO, unsafe.Pointer(&vinfo)); err != nil {
		return nil, err
	}
	var finfo fbFixScreeninfo
	if err := ioctl(fd, "FBIOGET_FSCREENINFO", _FBIOGET_FSCREENINFO, unsafe.Pointer(&finfo)); err != nil {
		return nil, err
	}
	format := Format{
		BitsPerPixel: int(vinfo.bitsPerPixel),
		Red:          Bitfield{Offset: vinfo.red.offset, Length: vinfo.red.length},
		Green:        Bitfield{Offset: vinfo.green.offset, Length: vinfo.green.length},
		Blue:         Bitfield{Offset: vinfo.blue.offset, Length: vinfo.blue.length},
	}
	if err := format.check(); err != nil {
		return nil, err
	}
	mem, err := unix.Mmap(int(fd), 0, int(finfo.smemLen), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("framebuffer mmap failed: %w", err)
	}
	d := &Device{
		dev:    dev,
		mem:    mem,
		size:   image.Pt(int(vinfo.xres), int(vinfo.yres)),
		stride: int(finfo.lineLength),
		format: format,
	}
	if need := d.stride * d.size.Y; need > len(mem) {
		d.Close()
		return nil, fmt.Errorf("framebuffer too small: %d bytes, need %d", len(mem), need)
	}
	return d, nil
}

func ioctl(fd uintptr, name string, req uintptr, arg unsafe.Pointer) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, uintptr(arg)); errno != 0 {
		return fmt.Errorf("ioctl(%s): %w", name, errno)
	}
	return nil
}

func (d *Device) Size() image.Point {
	return d.size
}

func (d *Device) Format() Format {
	return d.format
}

func (d *Device) Flush(fb *rgb16.Image, dirty image.Rectangle) error {
	Blit(d.mem, d.stride, d.format, fb, dirty.Intersect(image.Rectangle{Max: d.size}))
	return nil
}

func (d *Device) Close() error {
	var err error
	if d.mem != nil {
		err = unix.Munmap(d.mem)
		d.mem = nil
	}
	if d.dev != nil {
		if cerr := d.dev.Close(); err == nil {
			err = cerr
		}
		d.dev = nil
	}
	return err
}
