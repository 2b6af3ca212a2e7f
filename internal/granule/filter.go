// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package granule filters, formats, and persists CMR granule search results.
package granule

import (
	"fmt"
	"strings"

	"github.com/pdiddy/emit-toolkit/pkg/types"
)

// Filter selects granules from a search result set.
type Filter struct {
	// MaxCloud drops granules whose cloud cover exceeds this percentage.
	// Negative disables the check. Granules with unknown cloud cover
	// (-1) pass only when MaxCloud is negative or >= 100.
	MaxCloud float64

	// Kinds keeps only granules carrying at least one asset of these
	// kinds. Empty keeps all.
	Kinds []types.AssetKind

	// DayOnly drops granules not flagged "Day".
	DayOnly bool
}

// Apply returns the granules passing every enabled criterion.
func (f Filter) Apply(granules []types.Granule) []types.Granule {
	var out []types.Granule
	for _, g := range granules {
		if !f.keep(g) {
			continue
		}
		out = append(out, g)
	}
	return out
}

func (f Filter) keep(g types.Granule) bool {
	if f.MaxCloud >= 0 && f.MaxCloud < 100 {
		if g.CloudCover < 0 || g.CloudCover > f.MaxCloud {
			return false
		}
	}
	if f.DayOnly && g.DayNight != "Day" {
		return false
	}
	if len(f.Kinds) > 0 && len(g.AssetsOfKind(f.Kinds...)) == 0 {
		return false
	}
	return true
}

// ParseKinds converts a comma-separated kind list ("reflectance,mask")
// into asset kinds. Short aliases rfl, unc, and mask are accepted.
func ParseKinds(s string) ([]types.AssetKind, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var kinds []types.AssetKind
	for _, part := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "reflectance", "rfl":
			kinds = append(kinds, types.AssetReflectance)
		case "uncertainty", "unc", "rfluncert":
			kinds = append(kinds, types.AssetUncertainty)
		case "mask":
			kinds = append(kinds, types.AssetMask)
		case "other":
			kinds = append(kinds, types.AssetOther)
		default:
			return nil, fmt.Errorf("unknown asset kind %q (want reflectance, uncertainty, mask, or other)", part)
		}
	}
	return kinds, nil
}
