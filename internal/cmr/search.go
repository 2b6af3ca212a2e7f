// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cmr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/emit-toolkit/internal/httputil"
	"github.com/pdiddy/emit-toolkit/pkg/types"
)

const (
	defaultPageSize = 200
	maxPageSize     = 2000

	// dataRel marks downloadable asset links in a granule's link list.
	dataRel = "http://esipfed.org/ns/fedsearch/1.1/data#"
)

// SearchParams describes one granule search.
type SearchParams struct {
	// Collection is the collection concept ID (required).
	Collection string

	// TemporalStart and TemporalEnd bound the acquisition time. Either
	// side may be zero for an open-ended range.
	TemporalStart time.Time
	TemporalEnd   time.Time

	// Spatial constrains the search region. Nil searches globally.
	Spatial SpatialFilter
}

// SearchGranules runs a paginated granules.json search and returns every
// matching granule. Pages are requested until a page comes back short or
// empty. Progress lines go to w.
func (c *Client) SearchGranules(ctx context.Context, params SearchParams, w io.Writer) ([]types.Granule, error) {
	if params.Collection == "" {
		return nil, fmt.Errorf("search requires a collection concept ID")
	}

	pageSize := c.Cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	form := url.Values{
		"collection_concept_id": {params.Collection},
		"page_size":             {strconv.Itoa(pageSize)},
	}
	if t := formatTemporal(params.TemporalStart, params.TemporalEnd); t != "" {
		form.Set("temporal", t)
	}
	if params.Spatial != nil {
		if err := params.Spatial.Apply(form); err != nil {
			return nil, fmt.Errorf("spatial filter: %w", err)
		}
	}

	var granules []types.Granule
	for page := 1; ; page++ {
		if page > 1 && c.Cfg.PageDelay > 0 {
			select {
			case <-ctx.Done():
				return granules, ctx.Err()
			case <-time.After(c.Cfg.PageDelay):
			}
		}

		form.Set("page_num", strconv.Itoa(page))
		entries, err := c.searchPage(ctx, form)
		if err != nil {
			return granules, fmt.Errorf("page %d: %w", page, err)
		}
		if len(entries) == 0 {
			break
		}

		for _, e := range entries {
			granules = append(granules, granuleFromEntry(e, params.Collection))
		}
		fmt.Fprintf(w, "page %d: %d granules (%d total)\n", page, len(entries), len(granules))

		if c.Cfg.MaxResults > 0 && len(granules) >= c.Cfg.MaxResults {
			granules = granules[:c.Cfg.MaxResults]
			break
		}
		// A short page is the last page.
		if len(entries) < pageSize {
			break
		}
	}
	return granules, nil
}

// searchPage POSTs one granules.json request and decodes the entry list.
func (c *Client) searchPage(ctx context.Context, form url.Values) ([]granuleEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		cmrBase+"/granules.json", bytes.NewBufferString(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.Cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, 0)
	if err != nil {
		return nil, fmt.Errorf("CMR granules request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CMR granules returned HTTP %d", resp.StatusCode)
	}

	var gr granulesResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("parsing CMR granules response: %w", err)
	}
	return gr.Feed.Entry, nil
}

// formatTemporal renders a CMR temporal range, "start,end". Open ends keep
// the comma so CMR treats the range as half-bounded.
func formatTemporal(start, end time.Time) string {
	if start.IsZero() && end.IsZero() {
		return ""
	}
	var s, e string
	if !start.IsZero() {
		s = start.UTC().Format(time.RFC3339)
	}
	if !end.IsZero() {
		e = end.UTC().Format(time.RFC3339)
	}
	return s + "," + e
}

// granules.json response structures.
type granulesResponse struct {
	Feed granulesFeed `json:"feed"`
}

type granulesFeed struct {
	Entry []granuleEntry `json:"entry"`
}

type granuleEntry struct {
	ID                string      `json:"id"`
	ProducerGranuleID string      `json:"producer_granule_id"`
	TimeStart         string      `json:"time_start"`
	CloudCover        *cloudCover `json:"cloud_cover"`
	DayNightFlag      string      `json:"day_night_flag"`
	Links             []entryLink `json:"links"`
	Polygons          [][]string  `json:"polygons"`
}

type entryLink struct {
	Rel       string `json:"rel"`
	Href      string `json:"href"`
	Inherited bool   `json:"inherited"`
}

// cloudCover tolerates the three shapes CMR uses for the field: a JSON
// number, a quoted number, or null/absent. Absent decodes to -1.
type cloudCover float64

func (c *cloudCover) UnmarshalJSON(data []byte) error {
	*c = -1
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("cloud cover %q: %w", s, err)
	}
	*c = cloudCover(v)
	return nil
}

// granuleFromEntry converts a CMR entry to a Granule record.
func granuleFromEntry(e granuleEntry, collection string) types.Granule {
	g := types.Granule{
		ID:         e.ProducerGranuleID,
		ConceptID:  e.ID,
		Collection: collection,
		CloudCover: -1,
		DayNight:   e.DayNightFlag,
	}
	if e.CloudCover != nil {
		g.CloudCover = float64(*e.CloudCover)
	}
	if g.ID == "" {
		g.ID = e.ID
	}

	if t, err := time.Parse(time.RFC3339, e.TimeStart); err == nil {
		g.StartTime = t
	}

	for _, l := range e.Links {
		if !isAssetLink(l) {
			continue
		}
		g.Assets = append(g.Assets, types.Asset{
			Kind: ClassifyAsset(l.Href),
			URL:  l.Href,
		})
	}

	if len(e.Polygons) > 0 && len(e.Polygons[0]) > 0 {
		if ring, err := parseRing(e.Polygons[0][0]); err == nil {
			g.Footprint = ring
		}
	}
	return g
}

// isAssetLink keeps direct HTTPS data links and drops inherited collection
// links and S3 mirrors.
func isAssetLink(l entryLink) bool {
	if l.Rel != dataRel || l.Inherited {
		return false
	}
	if !strings.HasPrefix(l.Href, "https://") {
		return false
	}
	return !strings.Contains(l.Href, ".s3.")
}

// ClassifyAsset maps an EMIT asset URL to its kind from the product file
// naming convention (EMIT_L2A_RFL_..., EMIT_L2A_RFLUNCERT_...,
// EMIT_L2A_MASK_...).
func ClassifyAsset(href string) types.AssetKind {
	base := href
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	switch {
	case strings.Contains(base, "_RFLUNCERT_"):
		return types.AssetUncertainty
	case strings.Contains(base, "_RFL_"):
		return types.AssetReflectance
	case strings.Contains(base, "_MASK_"):
		return types.AssetMask
	default:
		return types.AssetOther
	}
}

// parseRing decodes a CMR polygon string, "lat1 lon1 lat2 lon2 ...".
func parseRing(s string) ([]types.LonLat, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields)%2 != 0 {
		return nil, fmt.Errorf("polygon string has %d coordinates", len(fields))
	}
	ring := make([]types.LonLat, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		lat, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("latitude %q: %w", fields[i], err)
		}
		lon, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return nil, fmt.Errorf("longitude %q: %w", fields[i+1], err)
		}
		ring = append(ring, types.LonLat{Lon: lon, Lat: lat})
	}
	return ring, nil
}
