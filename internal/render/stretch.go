// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render produces quick-look images and spectral plots from
// orthorectified EMIT rasters.
package render

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Stretch maps reflectance values to [0, 1] display intensity using a
// percentile contrast stretch.
type Stretch struct {
	// Low and High are the stretch percentiles (defaults 2 and 98).
	Low  float64
	High float64
}

// DefaultStretch is the 2-98% stretch most quick-looks use.
var DefaultStretch = Stretch{Low: 2, High: 98}

// bounds computes the stretch interval over the finite, non-fill values
// of one band plane.
func (s Stretch) bounds(values []float32, fill float32) (lo, hi float64, err error) {
	low, high := s.Low, s.High
	if low == 0 && high == 0 {
		low, high = DefaultStretch.Low, DefaultStretch.High
	}
	if low < 0 || high > 100 || low >= high {
		return 0, 0, fmt.Errorf("invalid stretch percentiles %v-%v", low, high)
	}

	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if v == fill || math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			continue
		}
		finite = append(finite, float64(v))
	}
	if len(finite) == 0 {
		return 0, 0, fmt.Errorf("band has no valid pixels")
	}
	sort.Float64s(finite)

	lo = stat.Quantile(low/100, stat.Empirical, finite, nil)
	hi = stat.Quantile(high/100, stat.Empirical, finite, nil)
	if hi <= lo {
		hi = lo + 1e-9
	}
	return lo, hi, nil
}

// scale maps one value into [0, 1] against the stretch interval. Fill
// values map to NaN so callers can render them transparent or black.
func scale(v float32, fill float32, lo, hi float64) float64 {
	if v == fill || math.IsNaN(float64(v)) {
		return math.NaN()
	}
	x := (float64(v) - lo) / (hi - lo)
	return math.Max(0, math.Min(1, x))
}
