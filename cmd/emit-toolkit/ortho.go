// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/emit-toolkit/internal/ortho"
	"github.com/pdiddy/emit-toolkit/internal/product"
)

var orthoCmd = &cobra.Command{
	Use:   "ortho",
	Short: "Orthorectify an EMIT L2A file to an ENVI raster",
	Long: `Ortho applies the geometry lookup table embedded in an EMIT L2A file to
the reflectance cube and writes the result as an ENVI raster (BSQ float32
plus a text header). Cells outside the scene footprint carry the fill
value. With --bands only the listed band indices (zero-based) are written.`,
	RunE: runOrtho,
}

func init() {
	orthoCmd.Flags().String("in", "", "input EMIT L2A NetCDF file")
	orthoCmd.Flags().String("out", "", "output ENVI raster path")
	orthoCmd.Flags().String("bands", "", "comma-separated band indices (default: all)")
	orthoCmd.MarkFlagRequired("in")
	orthoCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(orthoCmd)
}

func runOrtho(cmd *cobra.Command, args []string) error {
	in, _ := cmd.Flags().GetString("in")
	out, _ := cmd.Flags().GetString("out")

	bands, err := parseBands(cmd)
	if err != nil {
		return err
	}

	p, err := product.Open(in)
	if err != nil {
		return err
	}

	raster, err := ortho.Apply(&p.Cube, &p.GLT, bands)
	if err != nil {
		return fmt.Errorf("orthorectifying %s: %w", in, err)
	}
	raster.Wavelengths = selectWavelengths(p.Bands.Wavelengths, bands)

	if err := ortho.WriteENVI(raster, out); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %dx%dx%d raster to %s (%.0f%% of cells mapped)\n",
		raster.Width, raster.Height, raster.Bands, out, 100*ortho.MappedFraction(&p.GLT))
	return nil
}

func parseBands(cmd *cobra.Command) ([]int, error) {
	s, _ := cmd.Flags().GetString("bands")
	if s == "" {
		return nil, nil
	}
	var bands []int
	for _, part := range strings.Split(s, ",") {
		b, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid --bands entry %q", part)
		}
		bands = append(bands, b)
	}
	return bands, nil
}

func selectWavelengths(wavelengths []float64, bands []int) []float64 {
	if bands == nil {
		return wavelengths
	}
	out := make([]float64, 0, len(bands))
	for _, b := range bands {
		if b >= 0 && b < len(wavelengths) {
			out = append(out, wavelengths[b])
		}
	}
	return out
}
