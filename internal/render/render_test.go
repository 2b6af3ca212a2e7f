// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/emit-toolkit/internal/ortho"
)

func TestStretchBounds(t *testing.T) {
	// 100 values 1..100, fill sprinkled in.
	values := make([]float32, 0, 103)
	for i := 1; i <= 100; i++ {
		values = append(values, float32(i))
	}
	values = append(values, -9999, -9999, float32(math.NaN()))

	lo, hi, err := (Stretch{Low: 2, High: 98}).bounds(values, -9999)
	if err != nil {
		t.Fatalf("bounds() error = %v", err)
	}
	if lo < 1 || lo > 5 {
		t.Errorf("lo = %v, want near the 2nd percentile", lo)
	}
	if hi < 95 || hi > 100 {
		t.Errorf("hi = %v, want near the 98th percentile", hi)
	}
	if hi <= lo {
		t.Errorf("hi %v <= lo %v", hi, lo)
	}
}

func TestStretchBoundsAllFill(t *testing.T) {
	if _, _, err := DefaultStretch.bounds([]float32{-9999, -9999}, -9999); err == nil {
		t.Fatal("bounds() expected error when no valid pixels remain")
	}
}

func TestStretchBoundsInvalidPercentiles(t *testing.T) {
	if _, _, err := (Stretch{Low: 90, High: 10}).bounds([]float32{1, 2, 3}, -9999); err == nil {
		t.Fatal("bounds() expected error for inverted percentiles")
	}
}

func TestScale(t *testing.T) {
	if got := scale(5, -9999, 0, 10); got != 0.5 {
		t.Errorf("scale(5) = %v, want 0.5", got)
	}
	if got := scale(-3, -9999, 0, 10); got != 0 {
		t.Errorf("scale clamps low: %v", got)
	}
	if got := scale(25, -9999, 0, 10); got != 1 {
		t.Errorf("scale clamps high: %v", got)
	}
	if got := scale(-9999, -9999, 0, 10); !math.IsNaN(got) {
		t.Errorf("scale(fill) = %v, want NaN", got)
	}
}

// gradientRaster builds a 4x4 single-band raster with one unmapped cell.
func gradientRaster() *ortho.Raster {
	r := &ortho.Raster{Width: 4, Height: 4, Bands: 1, FillValue: -9999}
	for i := 0; i < 16; i++ {
		r.Data = append(r.Data, float32(i))
	}
	r.Data[5] = -9999
	return r
}

func TestQuicklookGrayscale(t *testing.T) {
	img, err := Quicklook(gradientRaster(), []int{0}, DefaultStretch)
	if err != nil {
		t.Fatalf("Quicklook() error = %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 4 || b.Dy() != 4 {
		t.Fatalf("image is %d x %d", b.Dx(), b.Dy())
	}

	// The unmapped cell (x=1, y=1) is transparent.
	_, _, _, a := img.At(1, 1).RGBA()
	if a != 0 {
		t.Error("unmapped cell is not transparent")
	}

	// Grayscale: R == G == B on a mapped pixel.
	c := img.At(3, 3).(color.NRGBA)
	if c.R != c.G || c.G != c.B || c.A != 255 {
		t.Errorf("pixel (3,3) = %+v, want gray opaque", c)
	}
	// Brightest pixel maps near white, darkest near black.
	dark := img.At(0, 0).(color.NRGBA)
	if dark.R > 40 {
		t.Errorf("darkest pixel R = %d, want near 0", dark.R)
	}
	if c.R < 215 {
		t.Errorf("brightest pixel R = %d, want near 255", c.R)
	}
}

func TestQuicklookRGB(t *testing.T) {
	r := &ortho.Raster{Width: 2, Height: 1, Bands: 3, FillValue: -9999,
		Data: []float32{0.1, 0.2, 0.3, 0.9, 0.8, 0.7}}
	img, err := Quicklook(r, []int{0, 1, 2}, DefaultStretch)
	if err != nil {
		t.Fatalf("Quicklook() error = %v", err)
	}
	a := img.At(0, 0).(color.NRGBA)
	b := img.At(1, 0).(color.NRGBA)
	if a.R >= b.R {
		t.Errorf("red channel not increasing: %d vs %d", a.R, b.R)
	}
}

func TestQuicklookBandCount(t *testing.T) {
	if _, err := Quicklook(gradientRaster(), []int{0, 0}, DefaultStretch); err == nil {
		t.Fatal("Quicklook() expected error for 2 bands")
	}
	if _, err := Quicklook(gradientRaster(), []int{7}, DefaultStretch); err == nil {
		t.Fatal("Quicklook() expected error for band out of range")
	}
}

func TestWritePNG(t *testing.T) {
	img, err := Quicklook(gradientRaster(), []int{0}, DefaultStretch)
	if err != nil {
		t.Fatalf("Quicklook() error = %v", err)
	}
	path := filepath.Join(t.TempDir(), "scene.png")
	if err := WritePNG(img, path); err != nil {
		t.Fatalf("WritePNG() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading PNG: %v", err)
	}
	if len(data) < 8 || string(data[1:4]) != "PNG" {
		t.Error("output is not a PNG")
	}
}

func TestSpectrumHTML(t *testing.T) {
	wavelengths := []float64{381, 388, 395, 403}
	spectrum := []float64{0.12, math.NaN(), 0.15, 0.18}

	path := filepath.Join(t.TempDir(), "spectrum.html")
	if err := SpectrumHTML(wavelengths, spectrum, "EMIT pixel (120, 300)", path); err != nil {
		t.Fatalf("SpectrumHTML() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading HTML: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "EMIT pixel (120, 300)") {
		t.Error("chart title missing from output")
	}
	if !strings.Contains(out, "reflectance") {
		t.Error("series name missing from output")
	}
}

func TestSpectrumHTMLLengthMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spectrum.html")
	if err := SpectrumHTML([]float64{1, 2}, []float64{0.1}, "x", path); err == nil {
		t.Fatal("SpectrumHTML() expected error for length mismatch")
	}
}
