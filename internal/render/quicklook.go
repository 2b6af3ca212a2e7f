// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/pdiddy/emit-toolkit/internal/ortho"
)

// Quicklook renders a raster as an 8-bit image. bandIdxs selects either
// one band (grayscale) or three (RGB); indices refer to bands of the
// raster, not of the original cube. Unmapped cells come out black and
// fully transparent.
func Quicklook(r *ortho.Raster, bandIdxs []int, s Stretch) (image.Image, error) {
	switch len(bandIdxs) {
	case 1, 3:
	default:
		return nil, fmt.Errorf("quicklook needs 1 or 3 bands, got %d", len(bandIdxs))
	}
	for _, b := range bandIdxs {
		if b < 0 || b >= r.Bands {
			return nil, fmt.Errorf("band index %d outside raster with %d bands", b, r.Bands)
		}
	}

	// Per-band stretch bounds over each selected plane.
	los := make([]float64, len(bandIdxs))
	his := make([]float64, len(bandIdxs))
	plane := make([]float32, r.Width*r.Height)
	for i, b := range bandIdxs {
		for cell := 0; cell < len(plane); cell++ {
			plane[cell] = r.Data[cell*r.Bands+b]
		}
		lo, hi, err := DefaultStretchIfZero(s).bounds(plane, r.FillValue)
		if err != nil {
			return nil, fmt.Errorf("band %d: %w", b, err)
		}
		los[i], his[i] = lo, hi
	}

	img := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			cell := y*r.Width + x
			var rgb [3]uint8
			transparent := false
			for i, b := range bandIdxs {
				v := scale(r.Data[cell*r.Bands+b], r.FillValue, los[i], his[i])
				if math.IsNaN(v) {
					transparent = true
					break
				}
				rgb[i] = uint8(v*255 + 0.5)
			}
			if transparent {
				img.SetNRGBA(x, y, color.NRGBA{})
				continue
			}
			if len(bandIdxs) == 1 {
				rgb[1], rgb[2] = rgb[0], rgb[0]
			}
			img.SetNRGBA(x, y, color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255})
		}
	}
	return img, nil
}

// DefaultStretchIfZero substitutes the default stretch for a zero value.
func DefaultStretchIfZero(s Stretch) Stretch {
	if s.Low == 0 && s.High == 0 {
		return DefaultStretch
	}
	return s
}

// WritePNG encodes an image to path.
func WritePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding PNG: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
