// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ortho

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// WriteENVI writes the raster as an ENVI image: a flat band-sequential
// float32 little-endian file at path, with a text header at path + ".hdr".
// ENVI is the interchange format the EMIT distribution tooling itself
// produces, and GDAL reads the pair directly.
func WriteENVI(r *Raster, path string) error {
	if len(r.Data) != r.Width*r.Height*r.Bands {
		return fmt.Errorf("raster data length %d does not match %d x %d x %d",
			len(r.Data), r.Width, r.Height, r.Bands)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating image file: %w", err)
	}
	w := bufio.NewWriter(f)

	// The raster is stored band-interleaved-by-pixel in memory; ENVI
	// BSQ wants whole bands in sequence.
	buf := make([]byte, 4)
	for b := 0; b < r.Bands; b++ {
		for cell := 0; cell < r.Width*r.Height; cell++ {
			v := r.Data[cell*r.Bands+b]
			binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
			if _, err := w.Write(buf); err != nil {
				f.Close()
				return fmt.Errorf("writing image data: %w", err)
			}
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flushing image data: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing image file: %w", err)
	}

	hdr := buildHeader(r)
	if err := os.WriteFile(path+".hdr", []byte(hdr), 0o644); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	return nil
}

// buildHeader renders the ENVI header text. Data type 4 is float32, byte
// order 0 is little-endian.
func buildHeader(r *Raster) string {
	var b strings.Builder
	b.WriteString("ENVI\n")
	b.WriteString("description = {orthorectified EMIT L2A reflectance}\n")
	fmt.Fprintf(&b, "samples = %d\n", r.Width)
	fmt.Fprintf(&b, "lines = %d\n", r.Height)
	fmt.Fprintf(&b, "bands = %d\n", r.Bands)
	b.WriteString("header offset = 0\n")
	b.WriteString("file type = ENVI Standard\n")
	b.WriteString("data type = 4\n")
	b.WriteString("interleave = bsq\n")
	b.WriteString("byte order = 0\n")
	fmt.Fprintf(&b, "data ignore value = %s\n", formatFloat(float64(r.FillValue)))

	gt := r.Geotransform
	if gt[1] != 0 && gt[5] != 0 {
		// ENVI map info references the upper-left corner with 1-based
		// tie point coordinates.
		fmt.Fprintf(&b, "map info = {Geographic Lat/Lon, 1, 1, %s, %s, %s, %s, WGS-84}\n",
			formatFloat(gt[0]), formatFloat(gt[3]),
			formatFloat(gt[1]), formatFloat(-gt[5]))
	}
	if r.SpatialRef != "" {
		fmt.Fprintf(&b, "coordinate system string = {%s}\n", r.SpatialRef)
	}
	if len(r.Wavelengths) == r.Bands && r.Bands > 0 {
		b.WriteString("wavelength units = Nanometers\n")
		b.WriteString("wavelength = {")
		for i, w := range r.Wavelengths {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(formatFloat(w))
		}
		b.WriteString("}\n")
	}
	return b.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
