// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/emit-toolkit/internal/ortho"
	"github.com/pdiddy/emit-toolkit/internal/product"
	"github.com/pdiddy/emit-toolkit/internal/render"
)

var quicklookCmd = &cobra.Command{
	Use:   "quicklook",
	Short: "Render a quick-look PNG from an EMIT L2A file",
	Long: `Quicklook orthorectifies an EMIT L2A scene and renders a true-color (or
single-band grayscale) PNG with a percentile contrast stretch. Cells
outside the scene footprint are transparent. The --rgb wavelengths are
matched to the nearest bands of the wavelength grid.`,
	RunE: runQuicklook,
}

func init() {
	quicklookCmd.Flags().String("in", "", "input EMIT L2A NetCDF file")
	quicklookCmd.Flags().String("out", "quicklook.png", "output PNG path")
	quicklookCmd.Flags().Float64Slice("rgb", []float64{650, 560, 470}, "band center wavelengths (nm); one value renders grayscale")
	quicklookCmd.Flags().Float64Slice("stretch", []float64{2, 98}, "contrast stretch percentiles lo,hi")
	quicklookCmd.Flags().Bool("raw", false, "render the spatially-raw cube without orthorectification")
	quicklookCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(quicklookCmd)
}

func runQuicklook(cmd *cobra.Command, args []string) error {
	in, _ := cmd.Flags().GetString("in")
	out, _ := cmd.Flags().GetString("out")

	wavelengths, _ := cmd.Flags().GetFloat64Slice("rgb")
	if len(wavelengths) != 1 && len(wavelengths) != 3 {
		return fmt.Errorf("--rgb wants 1 or 3 wavelengths, got %d", len(wavelengths))
	}
	stretchVals, _ := cmd.Flags().GetFloat64Slice("stretch")
	if len(stretchVals) != 2 {
		return fmt.Errorf("--stretch wants 2 percentiles, got %d", len(stretchVals))
	}
	stretch := render.Stretch{Low: stretchVals[0], High: stretchVals[1]}

	p, err := product.Open(in)
	if err != nil {
		return err
	}

	bands := make([]int, 0, len(wavelengths))
	for _, w := range wavelengths {
		b, err := p.Bands.NearestBand(w)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%.0f nm -> band %d (%.1f nm)\n", w, b, p.Bands.Wavelengths[b])
		bands = append(bands, b)
	}

	var raster *ortho.Raster
	if raw, _ := cmd.Flags().GetBool("raw"); raw {
		raster = rawRaster(&p.Cube, bands)
	} else {
		raster, err = ortho.Apply(&p.Cube, &p.GLT, bands)
		if err != nil {
			return fmt.Errorf("orthorectifying %s: %w", in, err)
		}
	}

	bandIdxs := make([]int, len(bands))
	for i := range bands {
		bandIdxs[i] = i
	}
	img, err := render.Quicklook(raster, bandIdxs, stretch)
	if err != nil {
		return err
	}
	if err := render.WritePNG(img, out); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", out)
	return nil
}

// rawRaster wraps a band subset of the unrectified cube so it can feed
// the same rendering path as an orthorectified raster.
func rawRaster(cube *product.Cube, bands []int) *ortho.Raster {
	r := &ortho.Raster{
		Width:     cube.Crosstrack,
		Height:    cube.Downtrack,
		Bands:     len(bands),
		Data:      make([]float32, cube.Downtrack*cube.Crosstrack*len(bands)),
		FillValue: cube.FillValue,
	}
	for px := 0; px < cube.Downtrack*cube.Crosstrack; px++ {
		src := px * cube.Bands
		dst := px * len(bands)
		for i, b := range bands {
			r.Data[dst+i] = cube.Data[src+b]
		}
	}
	return r
}
