// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the emit-toolkit pipeline:
// granule records produced by CMR discovery, asset descriptors consumed by
// the download stage, and the per-stage configuration structs.
package types

import "time"

// AssetKind categorizes a granule asset by the EMIT product file it points at.
type AssetKind string

const (
	AssetReflectance AssetKind = "reflectance"
	AssetUncertainty AssetKind = "uncertainty"
	AssetMask        AssetKind = "mask"
	AssetOther       AssetKind = "other"
)

// LonLat is a single footprint vertex in degrees.
type LonLat struct {
	Lon float64 `json:"lon" yaml:"lon"`
	Lat float64 `json:"lat" yaml:"lat"`
}

// Asset is a downloadable file belonging to a granule.
type Asset struct {
	// Kind classifies the asset from its filename (reflectance,
	// uncertainty, mask, or other).
	Kind AssetKind `json:"kind" yaml:"kind"`

	// URL is the HTTPS download link from the granule's CMR entry.
	URL string `json:"url" yaml:"url"`
}

// Granule represents one EMIT scene returned by a CMR granule search.
type Granule struct {
	// ID is the producer granule ID (e.g.
	// "EMIT_L2A_RFL_001_20230316T045211_2307503_006").
	ID string `json:"id" yaml:"id"`

	// ConceptID is the CMR concept ID for this granule.
	ConceptID string `json:"concept_id" yaml:"concept_id"`

	// Collection is the concept ID of the parent collection.
	Collection string `json:"collection" yaml:"collection"`

	// StartTime is the acquisition start time of the scene.
	StartTime time.Time `json:"start_time" yaml:"start_time"`

	// CloudCover is the scene cloud cover percentage, or -1 when the
	// CMR entry does not report one.
	CloudCover float64 `json:"cloud_cover" yaml:"cloud_cover"`

	// DayNight is the CMR day/night flag ("Day", "Night", "Both", or "").
	DayNight string `json:"day_night" yaml:"day_night"`

	// Assets lists the downloadable files attached to the granule.
	Assets []Asset `json:"assets" yaml:"assets"`

	// Footprint is the scene boundary ring in lon/lat order. The ring
	// is closed (first vertex repeated last) when CMR reports one.
	Footprint []LonLat `json:"footprint,omitempty" yaml:"footprint,omitempty"`
}

// AssetsOfKind returns the granule's assets matching any of the given kinds.
// An empty kinds list matches every asset.
func (g Granule) AssetsOfKind(kinds ...AssetKind) []Asset {
	if len(kinds) == 0 {
		return g.Assets
	}
	var out []Asset
	for _, a := range g.Assets {
		for _, k := range kinds {
			if a.Kind == k {
				out = append(out, a)
				break
			}
		}
	}
	return out
}
