// Package golden compares rendered frames against golden PNG files.
package golden

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrMissing is returned by CompareImage when the golden file doesn't
// exist.
var ErrMissing = errors.New("golden: missing golden file")

// CompareImage compares got against the PNG at path. If update is set,
// the golden file is (re)written instead. Channels may differ by at most
// tolerance, and at most maxErrors pixels may exceed it. If dumpDir is
// not empty, a mismatching image is written there for inspection.
func CompareImage(path string, update bool, dumpDir string, got image.Image, tolerance uint8, maxErrors int) error {
	if update {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return fmt.Errorf("golden: %w", err)
		}
		return writePNG(path, got)
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, ErrMissing)
		}
		return fmt.Errorf("golden: %w", err)
	}
	defer f.Close()
	want, err := png.Decode(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	mismatches, err := Diff(want, got, tolerance)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if mismatches > maxErrors {
		if dumpDir != "" {
			dump := filepath.Join(dumpDir, filepath.Base(path))
			if err := writePNG(dump, got); err != nil {
				return err
			}
		}
		b := want.Bounds()
		return fmt.Errorf("%s: %d/%d pixels mismatch", path, mismatches, b.Dx()*b.Dy())
	}
	return nil
}

// Diff counts the pixels of a and b that differ by more than tolerance
// in any channel. The images are compared relative to their bounds.
func Diff(a, b image.Image, tolerance uint8) (int, error) {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Size() != bb.Size() {
		return 0, fmt.Errorf("golden: image size mismatch: %v, %v", ab.Size(), bb.Size())
	}
	mismatches := 0
	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			c1 := color.NRGBAModel.Convert(a.At(ab.Min.X+x, ab.Min.Y+y)).(color.NRGBA)
			c2 := color.NRGBAModel.Convert(b.At(bb.Min.X+x, bb.Min.Y+y)).(color.NRGBA)
			if !closeEnough(c1.R, c2.R, tolerance) || !closeEnough(c1.G, c2.G, tolerance) ||
				!closeEnough(c1.B, c2.B, tolerance) || !closeEnough(c1.A, c2.A, tolerance) {
				mismatches++
			}
		}
	}
	return mismatches, nil
}

func closeEnough(v1, v2, tolerance uint8) bool {
	if v1 > v2 {
		v1, v2 = v2, v1
	}
	return v2-v1 <= tolerance
}

func writePNG(path string, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o640); err != nil {
		return fmt.Errorf("golden: %w", err)
	}
	return nil
}
