// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package product reads EMIT L2A surface reflectance NetCDF files. An L2A
// file has three groups: the root holds the reflectance array (downtrack ×
// crosstrack × bands), sensor_band_parameters holds the per-band
// wavelength grid, and location holds the pixel geolocation plus the
// geometry lookup table (GLT) used for orthorectification.
package product

import (
	"fmt"
	"math"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// DefaultFillValue is the EMIT no-data marker.
const DefaultFillValue float32 = -9999

const (
	reflectanceVar = "reflectance"
	bandGroup      = "sensor_band_parameters"
	locationGroup  = "location"
)

// Cube is the spatially-raw reflectance array. Data is row-major over
// (downtrack, crosstrack, band).
type Cube struct {
	Downtrack  int
	Crosstrack int
	Bands      int
	Data       []float32
	FillValue  float32
}

// At returns a copy of the spectrum at a raw pixel.
func (c *Cube) At(dt, ct int) ([]float32, error) {
	if dt < 0 || dt >= c.Downtrack || ct < 0 || ct >= c.Crosstrack {
		return nil, fmt.Errorf("pixel (%d, %d) outside %d x %d cube", dt, ct, c.Downtrack, c.Crosstrack)
	}
	off := (dt*c.Crosstrack + ct) * c.Bands
	spectrum := make([]float32, c.Bands)
	copy(spectrum, c.Data[off:off+c.Bands])
	return spectrum, nil
}

// BandParams holds the per-band wavelength grid.
type BandParams struct {
	// Wavelengths are band centers in nanometers.
	Wavelengths []float64

	// FWHM is the full width at half maximum per band, in nanometers.
	FWHM []float64

	// Good marks bands outside the water-vapor absorption windows.
	Good []bool
}

// NearestBand returns the index of the band whose center is closest to
// the requested wavelength in nanometers.
func (b *BandParams) NearestBand(wavelength float64) (int, error) {
	if len(b.Wavelengths) == 0 {
		return 0, fmt.Errorf("no wavelengths loaded")
	}
	best, bestDist := 0, math.Inf(1)
	for i, w := range b.Wavelengths {
		if d := math.Abs(w - wavelength); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, nil
}

// MaskBad replaces values in bands flagged bad with NaN. The spectrum is
// modified in place and returned for chaining.
func (b *BandParams) MaskBad(spectrum []float64) []float64 {
	for i := range spectrum {
		if i < len(b.Good) && !b.Good[i] {
			spectrum[i] = math.NaN()
		}
	}
	return spectrum
}

// Location holds per-pixel geolocation for the raw cube, flattened
// row-major over (downtrack, crosstrack).
type Location struct {
	Lat  []float64
	Lon  []float64
	Elev []float64
}

// GLT is the geometry lookup table: for each cell of the geographic
// output grid, the 1-based crosstrack (X) and downtrack (Y) index of the
// source pixel, or 0 where no source pixel maps.
type GLT struct {
	Width  int
	Height int
	X      []int32
	Y      []int32

	// Geotransform is the 6-element GDAL-style affine transform of the
	// output grid: [originX, pixelWidth, 0, originY, 0, pixelHeight].
	Geotransform [6]float64

	// SpatialRef is the WKT of the output grid's coordinate system.
	SpatialRef string
}

// LonLatOf returns the geographic coordinates of an output cell center.
func (g *GLT) LonLatOf(x, y int) (lon, lat float64) {
	gt := g.Geotransform
	lon = gt[0] + (float64(x)+0.5)*gt[1] + (float64(y)+0.5)*gt[2]
	lat = gt[3] + (float64(x)+0.5)*gt[4] + (float64(y)+0.5)*gt[5]
	return lon, lat
}

// CellOf inverts LonLatOf for north-up grids (no rotation terms).
func (g *GLT) CellOf(lon, lat float64) (x, y int, err error) {
	gt := g.Geotransform
	if gt[2] != 0 || gt[4] != 0 {
		return 0, 0, fmt.Errorf("rotated geotransform not supported")
	}
	if gt[1] == 0 || gt[5] == 0 {
		return 0, 0, fmt.Errorf("degenerate geotransform")
	}
	x = int(math.Floor((lon - gt[0]) / gt[1]))
	y = int(math.Floor((lat - gt[3]) / gt[5]))
	if x < 0 || x >= g.Width || y < 0 || y >= g.Height {
		return 0, 0, fmt.Errorf("position (%v, %v) outside the output grid", lon, lat)
	}
	return x, y, nil
}

// Product is a fully-loaded EMIT L2A reflectance file.
type Product struct {
	Path     string
	Cube     Cube
	Bands    BandParams
	Location Location
	GLT      GLT
}

// Open reads an EMIT L2A reflectance file into memory. The reflectance
// cube for a full scene is on the order of a gigabyte; callers that only
// need the header should use Info.
func Open(path string) (*Product, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer nc.Close()

	p := &Product{Path: path}

	if err := readCube(nc, &p.Cube); err != nil {
		return nil, fmt.Errorf("reading reflectance: %w", err)
	}
	if err := readBandParams(nc, &p.Bands); err != nil {
		return nil, fmt.Errorf("reading %s: %w", bandGroup, err)
	}
	if err := readLocation(nc, p); err != nil {
		return nil, fmt.Errorf("reading %s: %w", locationGroup, err)
	}

	if p.Cube.Bands != len(p.Bands.Wavelengths) {
		return nil, fmt.Errorf("cube has %d bands but %d wavelengths", p.Cube.Bands, len(p.Bands.Wavelengths))
	}
	return p, nil
}

// Summary describes a product without loading the reflectance values.
type Summary struct {
	Downtrack   int
	Crosstrack  int
	Bands       int
	GoodBands   int
	MinWavelen  float64
	MaxWavelen  float64
	OrthoWidth  int
	OrthoHeight int
}

// Info reads the header of an EMIT L2A file: dimensions, the wavelength
// grid, and the GLT shape. The reflectance values stay on disk.
func Info(path string) (*Summary, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer nc.Close()

	getter, err := nc.GetVarGetter(reflectanceVar)
	if err != nil {
		return nil, fmt.Errorf("reading reflectance header: %w", err)
	}
	dims := getter.Dimensions()
	if len(dims) != 3 {
		return nil, fmt.Errorf("reflectance has %d dimensions, want 3", len(dims))
	}

	var bands BandParams
	if err := readBandParams(nc, &bands); err != nil {
		return nil, fmt.Errorf("reading %s: %w", bandGroup, err)
	}

	s := &Summary{Bands: len(bands.Wavelengths)}
	for _, g := range bands.Good {
		if g {
			s.GoodBands++
		}
	}
	if n := len(bands.Wavelengths); n > 0 {
		s.MinWavelen = bands.Wavelengths[0]
		s.MaxWavelen = bands.Wavelengths[n-1]
	}
	if s.Bands > 0 {
		total := int(getter.Len())
		spatial := total / s.Bands
		// Downtrack/crosstrack split needs the GLT-independent lat
		// array shape; read it from the location group.
		loc, err := nc.GetGroup(locationGroup)
		if err != nil {
			return nil, fmt.Errorf("opening %s group: %w", locationGroup, err)
		}
		defer loc.Close()
		latVar, err := loc.GetVariable("lat")
		if err != nil {
			return nil, fmt.Errorf("reading lat: %w", err)
		}
		rows, cols, err := shape2(latVar.Values)
		if err != nil {
			return nil, fmt.Errorf("lat shape: %w", err)
		}
		if rows*cols != spatial {
			return nil, fmt.Errorf("lat is %d x %d but reflectance holds %d spectra", rows, cols, spatial)
		}
		s.Downtrack, s.Crosstrack = rows, cols

		gltVar, err := loc.GetVariable("glt_x")
		if err == nil {
			if h, w, shapeErr := shape2(gltVar.Values); shapeErr == nil {
				s.OrthoHeight, s.OrthoWidth = h, w
			}
		}
	}
	return s, nil
}

func readCube(nc api.Group, cube *Cube) error {
	v, err := nc.GetVariable(reflectanceVar)
	if err != nil {
		return err
	}

	d0, d1, d2, err := shape3(v.Values)
	if err != nil {
		return err
	}
	data, err := flattenFloat32(v.Values)
	if err != nil {
		return err
	}

	cube.Downtrack, cube.Crosstrack, cube.Bands = d0, d1, d2
	cube.Data = data
	cube.FillValue = DefaultFillValue
	if fv, has := v.Attributes.Get("_FillValue"); has {
		if f, err := attrFloat32(fv); err == nil {
			cube.FillValue = f
		}
	}
	return nil
}

func readBandParams(nc api.Group, bands *BandParams) error {
	g, err := nc.GetGroup(bandGroup)
	if err != nil {
		return err
	}
	defer g.Close()

	wl, err := groupFloat64s(g, "wavelengths")
	if err != nil {
		return err
	}
	bands.Wavelengths = wl

	// fwhm and good_wavelengths are advisory; older granules omit them.
	if fwhm, err := groupFloat64s(g, "fwhm"); err == nil {
		bands.FWHM = fwhm
	}
	if good, err := groupFloat64s(g, "good_wavelengths"); err == nil {
		bands.Good = make([]bool, len(good))
		for i, v := range good {
			bands.Good[i] = v != 0
		}
	}
	return nil
}

func readLocation(nc api.Group, p *Product) error {
	g, err := nc.GetGroup(locationGroup)
	if err != nil {
		return err
	}
	defer g.Close()

	lat, err := groupFloat64s(g, "lat")
	if err != nil {
		return err
	}
	lon, err := groupFloat64s(g, "lon")
	if err != nil {
		return err
	}
	p.Location.Lat = lat
	p.Location.Lon = lon
	if elev, err := groupFloat64s(g, "elev"); err == nil {
		p.Location.Elev = elev
	}

	gltX, err := g.GetVariable("glt_x")
	if err != nil {
		return fmt.Errorf("reading glt_x: %w", err)
	}
	h, w, err := shape2(gltX.Values)
	if err != nil {
		return fmt.Errorf("glt_x shape: %w", err)
	}
	x, err := flattenInt32(gltX.Values)
	if err != nil {
		return fmt.Errorf("glt_x values: %w", err)
	}

	gltY, err := g.GetVariable("glt_y")
	if err != nil {
		return fmt.Errorf("reading glt_y: %w", err)
	}
	y, err := flattenInt32(gltY.Values)
	if err != nil {
		return fmt.Errorf("glt_y values: %w", err)
	}
	if len(y) != len(x) {
		return fmt.Errorf("glt_x has %d cells but glt_y has %d", len(x), len(y))
	}

	p.GLT.Width, p.GLT.Height = w, h
	p.GLT.X, p.GLT.Y = x, y

	// The affine transform and CRS live in the root attributes.
	attrs := nc.Attributes()
	if v, has := attrs.Get("geotransform"); has {
		gt, err := attrFloat64s(v)
		if err != nil || len(gt) != 6 {
			return fmt.Errorf("geotransform attribute: %v", err)
		}
		copy(p.GLT.Geotransform[:], gt)
	}
	if v, has := attrs.Get("spatial_ref"); has {
		if s, err := attrString(v); err == nil {
			p.GLT.SpatialRef = s
		}
	}
	return nil
}

// groupFloat64s reads a variable from a group as a flat []float64.
func groupFloat64s(g api.Group, name string) ([]float64, error) {
	v, err := g.GetVariable(name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	vals, err := flattenFloat64(v.Values)
	if err != nil {
		return nil, fmt.Errorf("%s values: %w", name, err)
	}
	return vals, nil
}
