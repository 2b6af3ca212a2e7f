// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// SpectrumHTML renders a per-pixel reflectance spectrum as a standalone
// HTML line chart. Bands masked to NaN (water-vapor absorption windows)
// become gaps in the line rather than plotted points.
func SpectrumHTML(wavelengths, spectrum []float64, title, path string) error {
	if len(wavelengths) != len(spectrum) {
		return fmt.Errorf("%d wavelengths but %d spectrum values", len(wavelengths), len(spectrum))
	}
	if len(wavelengths) == 0 {
		return fmt.Errorf("empty spectrum")
	}

	xAxis := make([]string, len(wavelengths))
	series := make([]opts.LineData, len(spectrum))
	for i, w := range wavelengths {
		xAxis[i] = fmt.Sprintf("%.0f", w)
		if math.IsNaN(spectrum[i]) {
			series[i] = opts.LineData{Value: nil}
			continue
		}
		series[i] = opts.LineData{Value: spectrum[i]}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Wavelength (nm)", NameLocation: "middle", NameGap: 30}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Reflectance"}),
	)
	line.SetXAxis(xAxis)
	line.AddSeries("reflectance", series, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(false)}))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := line.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("rendering chart: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
