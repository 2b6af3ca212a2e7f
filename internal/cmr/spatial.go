// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cmr

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/emit-toolkit/pkg/types"
)

// SpatialFilter constrains a granule search to a geographic region. Each
// filter kind (point, bounding box, polygon) contributes its own CMR query
// parameter.
type SpatialFilter interface {
	// Apply adds the filter's parameter to the query values.
	Apply(params url.Values) error
}

// Point matches granules whose footprint contains a single lon/lat position.
type Point struct {
	Lon float64
	Lat float64
}

// Apply sets the CMR point parameter, "lon,lat".
func (p Point) Apply(params url.Values) error {
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("point longitude %v out of range [-180, 180]", p.Lon)
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("point latitude %v out of range [-90, 90]", p.Lat)
	}
	params.Set("point", formatCoord(p.Lon)+","+formatCoord(p.Lat))
	return nil
}

// BoundingBox matches granules intersecting a west/south/east/north box.
type BoundingBox struct {
	West  float64
	South float64
	East  float64
	North float64
}

// Apply sets the CMR bounding_box parameter, "west,south,east,north".
func (b BoundingBox) Apply(params url.Values) error {
	if b.West >= b.East {
		return fmt.Errorf("bounding box west (%v) must be less than east (%v)", b.West, b.East)
	}
	if b.South >= b.North {
		return fmt.Errorf("bounding box south (%v) must be less than north (%v)", b.South, b.North)
	}
	if b.South < -90 || b.North > 90 {
		return fmt.Errorf("bounding box latitudes must lie in [-90, 90]")
	}
	params.Set("bounding_box", strings.Join([]string{
		formatCoord(b.West), formatCoord(b.South),
		formatCoord(b.East), formatCoord(b.North),
	}, ","))
	return nil
}

// Polygon matches granules intersecting a lon/lat ring. CMR requires the
// ring closed and counter-clockwise; Apply closes an open ring itself.
type Polygon struct {
	Ring []types.LonLat
}

// Apply sets the CMR polygon parameter, "lon1,lat1,lon2,lat2,...".
func (p Polygon) Apply(params url.Values) error {
	ring := p.Ring
	if len(ring) < 3 {
		return fmt.Errorf("polygon needs at least 3 vertices, got %d", len(ring))
	}
	if ring[0] != ring[len(ring)-1] {
		ring = append(append([]types.LonLat{}, ring...), ring[0])
	}
	parts := make([]string, 0, len(ring)*2)
	for _, v := range ring {
		parts = append(parts, formatCoord(v.Lon), formatCoord(v.Lat))
	}
	params.Set("polygon", strings.Join(parts, ","))
	return nil
}

// formatCoord renders a coordinate without exponent notation or trailing zeros.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
