// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package granule

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/emit-toolkit/pkg/types"
)

// FormatTable writes granules as a human-readable table to w.
func FormatTable(granules []types.Granule, w io.Writer) {
	if len(granules) == 0 {
		fmt.Fprintln(w, "No granules found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-46s  %-20s  %-6s  %-5s  %s\n",
		"#", "Granule", "Start", "Cloud", "D/N", "Assets")
	fmt.Fprintln(w, strings.Repeat("-", 96))

	for i, g := range granules {
		id := g.ID
		if len(id) > 46 {
			id = id[:43] + "..."
		}
		start := ""
		if !g.StartTime.IsZero() {
			start = g.StartTime.Format("2006-01-02 15:04:05")
		}
		cloud := "?"
		if g.CloudCover >= 0 {
			cloud = fmt.Sprintf("%.0f%%", g.CloudCover)
		}
		fmt.Fprintf(w, "%-4d  %-46s  %-20s  %-6s  %-5s  %d\n",
			i+1, id, start, cloud, shortDayNight(g.DayNight), len(g.Assets))
	}

	fmt.Fprintf(w, "\n%d granules\n", len(granules))
}

// FormatJSON writes granules as indented JSON to w.
func FormatJSON(granules []types.Granule, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(granules)
}

func shortDayNight(s string) string {
	switch s {
	case "Day":
		return "D"
	case "Night":
		return "N"
	case "Both":
		return "D+N"
	default:
		return "?"
	}
}
