// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/emit-toolkit/internal/cmr"
	"github.com/pdiddy/emit-toolkit/internal/granule"
	"github.com/pdiddy/emit-toolkit/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search CMR for EMIT granules",
	Long: `Search queries NASA's Common Metadata Repository for EMIT L2A granules
matching a time range and a spatial constraint (point, bounding box, or
polygon), filters the results by cloud cover, and prints them as a table.

With --save the search and its results are written to a YAML file that the
urls and download commands accept instead of re-querying CMR.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("doi", cmr.EMITL2ADOI, "product DOI to resolve into a collection")
	searchCmd.Flags().String("collection", "", "collection concept ID (skips DOI resolution)")
	searchCmd.Flags().String("from", "", "temporal range start (YYYY-MM-DD)")
	searchCmd.Flags().String("to", "", "temporal range end (YYYY-MM-DD)")
	searchCmd.Flags().String("point", "", "point filter as lon,lat")
	searchCmd.Flags().String("bbox", "", "bounding box filter as west,south,east,north")
	searchCmd.Flags().String("polygon", "", "polygon filter as lon,lat,lon,lat,...")
	searchCmd.Flags().Float64("max-cloud", 100, "maximum cloud cover percentage")
	searchCmd.Flags().Bool("day-only", false, "keep only daytime scenes")
	searchCmd.Flags().Int("max-results", 0, "cap the number of granules returned")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().String("save", "", "write the search and results to a YAML file")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := cmrConfig(cmd)
	client := cmr.NewClient(&http.Client{Timeout: cfg.Timeout}, cfg)
	ctx := context.Background()

	collection, _ := cmd.Flags().GetString("collection")
	doi, _ := cmd.Flags().GetString("doi")
	if collection == "" {
		var err error
		collection, err = client.ResolveCollection(ctx, doi)
		if err != nil {
			return fmt.Errorf("resolving collection: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Collection %s resolves to %s\n", doi, collection)
	}

	params := cmr.SearchParams{Collection: collection}
	var err error
	if params.TemporalStart, err = parseDateFlag(cmd, "from"); err != nil {
		return err
	}
	if params.TemporalEnd, err = parseDateFlag(cmd, "to"); err != nil {
		return err
	}
	if params.Spatial, err = spatialFromFlags(cmd); err != nil {
		return err
	}

	granules, err := client.SearchGranules(ctx, params, os.Stderr)
	if err != nil {
		return fmt.Errorf("searching granules: %w", err)
	}
	total := len(granules)

	maxCloud, _ := cmd.Flags().GetFloat64("max-cloud")
	dayOnly, _ := cmd.Flags().GetBool("day-only")
	granules = granule.Filter{MaxCloud: maxCloud, DayOnly: dayOnly}.Apply(granules)

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		if err := granule.FormatJSON(granules, os.Stdout); err != nil {
			return err
		}
	} else {
		granule.FormatTable(granules, os.Stdout)
	}

	savePath, _ := cmd.Flags().GetString("save")
	if savePath != "" {
		query := granule.SaveQuery{
			Collection: collection,
			DOI:        doi,
			MaxCloud:   maxCloud,
			Spatial:    spatialDescription(cmd),
		}
		if !params.TemporalStart.IsZero() {
			query.TemporalStart = params.TemporalStart.Format(time.RFC3339)
		}
		if !params.TemporalEnd.IsZero() {
			query.TemporalEnd = params.TemporalEnd.Format(time.RFC3339)
		}
		if err := granule.WriteSaveFile(savePath, query, granules, total); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved %d granules to %s\n", len(granules), savePath)
	}
	return nil
}

// cmrConfig assembles the CMR stage config from viper and defaults.
func cmrConfig(cmd *cobra.Command) types.CMRConfig {
	cfg := types.CMRConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   defaultTimeout,
			UserAgent: defaultUserAgent,
		},
		PageSize:  viper.GetInt("cmr.page_size"),
		PageDelay: viper.GetDuration("cmr.page_delay"),
	}
	if t := viper.GetDuration("cmr.timeout"); t > 0 {
		cfg.Timeout = t
	}
	if ua := viper.GetString("cmr.user_agent"); ua != "" {
		cfg.UserAgent = ua
	}
	if n, err := cmd.Flags().GetInt("max-results"); err == nil && n > 0 {
		cfg.MaxResults = n
	}
	return cfg
}

func parseDateFlag(cmd *cobra.Command, name string) (time.Time, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: want YYYY-MM-DD", name, s)
	}
	return t, nil
}

// spatialFromFlags builds the spatial filter; at most one of --point,
// --bbox, --polygon may be given.
func spatialFromFlags(cmd *cobra.Command) (cmr.SpatialFilter, error) {
	point, _ := cmd.Flags().GetString("point")
	bbox, _ := cmd.Flags().GetString("bbox")
	polygon, _ := cmd.Flags().GetString("polygon")

	set := 0
	for _, s := range []string{point, bbox, polygon} {
		if s != "" {
			set++
		}
	}
	if set > 1 {
		return nil, fmt.Errorf("use only one of --point, --bbox, --polygon")
	}

	switch {
	case point != "":
		vals, err := parseFloats(point, 2)
		if err != nil {
			return nil, fmt.Errorf("invalid --point: %w", err)
		}
		return cmr.Point{Lon: vals[0], Lat: vals[1]}, nil
	case bbox != "":
		vals, err := parseFloats(bbox, 4)
		if err != nil {
			return nil, fmt.Errorf("invalid --bbox: %w", err)
		}
		return cmr.BoundingBox{West: vals[0], South: vals[1], East: vals[2], North: vals[3]}, nil
	case polygon != "":
		vals, err := parseFloats(polygon, 0)
		if err != nil {
			return nil, fmt.Errorf("invalid --polygon: %w", err)
		}
		if len(vals)%2 != 0 {
			return nil, fmt.Errorf("invalid --polygon: odd number of coordinates")
		}
		ring := make([]types.LonLat, 0, len(vals)/2)
		for i := 0; i < len(vals); i += 2 {
			ring = append(ring, types.LonLat{Lon: vals[i], Lat: vals[i+1]})
		}
		return cmr.Polygon{Ring: ring}, nil
	default:
		return nil, nil
	}
}

func spatialDescription(cmd *cobra.Command) string {
	if s, _ := cmd.Flags().GetString("point"); s != "" {
		return "point " + s
	}
	if s, _ := cmd.Flags().GetString("bbox"); s != "" {
		return "bbox " + s
	}
	if s, _ := cmd.Flags().GetString("polygon"); s != "" {
		return "polygon " + s
	}
	return ""
}

// parseFloats splits a comma-separated float list. want 0 accepts any count.
func parseFloats(s string, want int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if want > 0 && len(parts) != want {
		return nil, fmt.Errorf("want %d comma-separated values, got %d", want, len(parts))
	}
	vals := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", p)
		}
		vals = append(vals, v)
	}
	return vals, nil
}
