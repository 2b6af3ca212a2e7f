// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package granule

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/emit-toolkit/pkg/types"
)

// SaveFile is the on-disk representation of a granule search and its
// results. A search can be saved once and fed to the urls and download
// commands later without re-querying CMR.
type SaveFile struct {
	Query   SaveQuery       `yaml:"query"`
	Results []types.Granule `yaml:"results"`
	Summary SaveSummary     `yaml:"summary"`
}

// SaveQuery stores the search parameters in a serializable form.
type SaveQuery struct {
	Collection    string  `yaml:"collection"`
	DOI           string  `yaml:"doi,omitempty"`
	TemporalStart string  `yaml:"temporal_start,omitempty"`
	TemporalEnd   string  `yaml:"temporal_end,omitempty"`
	Spatial       string  `yaml:"spatial,omitempty"`
	MaxCloud      float64 `yaml:"max_cloud,omitempty"`
}

// SaveSummary stores result statistics and a timestamp.
type SaveSummary struct {
	Total     int       `yaml:"total"`
	Filtered  int       `yaml:"filtered"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteSaveFile saves a search and its (possibly filtered) results to a
// YAML file. total is the pre-filter result count.
func WriteSaveFile(path string, query SaveQuery, granules []types.Granule, total int) error {
	sf := SaveFile{
		Query:   query,
		Results: granules,
		Summary: SaveSummary{
			Total:     total,
			Filtered:  len(granules),
			Timestamp: time.Now(),
		},
	}

	data, err := yaml.Marshal(&sf)
	if err != nil {
		return fmt.Errorf("marshaling save file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadSaveFile loads a previously saved search from disk.
func ReadSaveFile(path string) (*SaveFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading save file: %w", err)
	}
	var sf SaveFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing save file: %w", err)
	}
	return &sf, nil
}
