// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/emit-toolkit/internal/product"
	"github.com/pdiddy/emit-toolkit/internal/render"
)

var spectrumCmd = &cobra.Command{
	Use:   "spectrum",
	Short: "Plot the reflectance spectrum of one pixel",
	Long: `Spectrum extracts a single pixel's reflectance across all bands and
writes an interactive HTML chart. The pixel is addressed either by raw
scene coordinates (--pixel downtrack,crosstrack) or geographically
(--lonlat), in which case the geometry lookup table finds the source
pixel. Water-absorption bands are masked out of the plot.`,
	RunE: runSpectrum,
}

func init() {
	spectrumCmd.Flags().String("in", "", "input EMIT L2A NetCDF file")
	spectrumCmd.Flags().String("out", "spectrum.html", "output HTML path")
	spectrumCmd.Flags().String("pixel", "", "raw pixel as downtrack,crosstrack")
	spectrumCmd.Flags().String("lonlat", "", "geographic point as lon,lat")
	spectrumCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(spectrumCmd)
}

func runSpectrum(cmd *cobra.Command, args []string) error {
	in, _ := cmd.Flags().GetString("in")
	out, _ := cmd.Flags().GetString("out")

	p, err := product.Open(in)
	if err != nil {
		return err
	}

	dt, ct, err := spectrumPixel(cmd, p)
	if err != nil {
		return err
	}

	raw, err := p.Cube.At(dt, ct)
	if err != nil {
		return err
	}
	if raw[0] == p.Cube.FillValue {
		return fmt.Errorf("pixel (%d, %d) holds no data", dt, ct)
	}

	spectrum := make([]float64, len(raw))
	for i, v := range raw {
		spectrum[i] = float64(v)
	}
	spectrum = p.Bands.MaskBad(spectrum)

	title := fmt.Sprintf("Reflectance at pixel (%d, %d)", dt, ct)
	if err := render.SpectrumHTML(p.Bands.Wavelengths, spectrum, title, out); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", out)
	return nil
}

// spectrumPixel resolves --pixel or --lonlat into raw scene coordinates.
func spectrumPixel(cmd *cobra.Command, p *product.Product) (dt, ct int, err error) {
	pixel, _ := cmd.Flags().GetString("pixel")
	lonlat, _ := cmd.Flags().GetString("lonlat")

	switch {
	case pixel != "" && lonlat != "":
		return 0, 0, fmt.Errorf("use only one of --pixel, --lonlat")
	case pixel != "":
		vals, err := parseFloats(pixel, 2)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid --pixel: %w", err)
		}
		return int(vals[0]), int(vals[1]), nil
	case lonlat != "":
		vals, err := parseFloats(lonlat, 2)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid --lonlat: %w", err)
		}
		x, y, err := p.GLT.CellOf(vals[0], vals[1])
		if err != nil {
			return 0, 0, err
		}
		gx, gy := p.GLT.X[y*p.GLT.Width+x], p.GLT.Y[y*p.GLT.Width+x]
		if gx == 0 || gy == 0 {
			return 0, 0, fmt.Errorf("no scene pixel at %v, %v", vals[0], vals[1])
		}
		return int(gy) - 1, int(gx) - 1, nil
	default:
		return 0, 0, fmt.Errorf("one of --pixel or --lonlat is required")
	}
}
