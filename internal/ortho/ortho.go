// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ortho applies an EMIT geometry lookup table to a raw reflectance
// cube, producing a north-up geographic raster. The GLT holds, per output
// cell, the 1-based crosstrack/downtrack index of the source pixel; cells
// with index 0 have no source pixel and receive the fill value.
package ortho

import (
	"fmt"

	"github.com/pdiddy/emit-toolkit/internal/product"
)

// Raster is an orthorectified image grid, row-major over (y, x, band).
type Raster struct {
	Width     int
	Height    int
	Bands     int
	Data      []float32
	FillValue float32

	Geotransform [6]float64
	SpatialRef   string

	// Wavelengths carries the band centers through to output writers.
	Wavelengths []float64
}

// At returns the spectrum stored at an output cell. The returned slice
// aliases the raster, so callers must copy before modifying.
func (r *Raster) At(x, y int) ([]float32, error) {
	if x < 0 || x >= r.Width || y < 0 || y >= r.Height {
		return nil, fmt.Errorf("cell (%d, %d) outside %d x %d raster", x, y, r.Width, r.Height)
	}
	off := (y*r.Width + x) * r.Bands
	return r.Data[off : off+r.Bands], nil
}

// Mapped reports whether an output cell received a source pixel. A cell
// is unmapped when its first band still holds the fill value.
func (r *Raster) Mapped(x, y int) bool {
	spectrum, err := r.At(x, y)
	if err != nil {
		return false
	}
	return spectrum[0] != r.FillValue
}

// Apply scatters the raw cube through the GLT. Every output cell with a
// nonzero lookup copies its full spectrum from the referenced raw pixel;
// the rest of the grid is fill. Selected bands only can be produced by
// passing band indices; nil selects all bands.
func Apply(cube *product.Cube, glt *product.GLT, bands []int) (*Raster, error) {
	if len(glt.X) != glt.Width*glt.Height || len(glt.Y) != len(glt.X) {
		return nil, fmt.Errorf("GLT arrays do not match %d x %d grid", glt.Width, glt.Height)
	}

	if bands == nil {
		bands = make([]int, cube.Bands)
		for i := range bands {
			bands[i] = i
		}
	}
	for _, b := range bands {
		if b < 0 || b >= cube.Bands {
			return nil, fmt.Errorf("band index %d outside cube with %d bands", b, cube.Bands)
		}
	}

	out := &Raster{
		Width:        glt.Width,
		Height:       glt.Height,
		Bands:        len(bands),
		Data:         make([]float32, glt.Width*glt.Height*len(bands)),
		FillValue:    cube.FillValue,
		Geotransform: glt.Geotransform,
		SpatialRef:   glt.SpatialRef,
	}
	for i := range out.Data {
		out.Data[i] = cube.FillValue
	}

	for cell := 0; cell < len(glt.X); cell++ {
		gx, gy := glt.X[cell], glt.Y[cell]
		if gx == 0 || gy == 0 {
			continue
		}
		ct, dt := int(gx)-1, int(gy)-1
		if dt >= cube.Downtrack || ct >= cube.Crosstrack || dt < 0 || ct < 0 {
			return nil, fmt.Errorf("GLT cell %d references pixel (%d, %d) outside %d x %d cube",
				cell, dt, ct, cube.Downtrack, cube.Crosstrack)
		}

		src := (dt*cube.Crosstrack + ct) * cube.Bands
		dst := cell * len(bands)
		for i, b := range bands {
			out.Data[dst+i] = cube.Data[src+b]
		}
	}
	return out, nil
}

// MappedFraction returns the share of output cells with a source pixel.
// EMIT swaths are diagonal in the geographic grid, so values around 0.5
// are normal for a full scene.
func MappedFraction(glt *product.GLT) float64 {
	if len(glt.X) == 0 {
		return 0
	}
	mapped := 0
	for i := range glt.X {
		if glt.X[i] != 0 && glt.Y[i] != 0 {
			mapped++
		}
	}
	return float64(mapped) / float64(len(glt.X))
}
