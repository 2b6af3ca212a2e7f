// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/pdiddy/emit-toolkit/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.CatalogConfig{CatalogDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testGranules() []types.Granule {
	return []types.Granule{
		{
			ID:         "EMIT_L2A_RFL_001_20230316T045211_2307503_006",
			ConceptID:  "G1-LPCLOUD",
			Collection: "C2408750690-LPCLOUD",
			StartTime:  time.Date(2023, 3, 16, 4, 52, 11, 0, time.UTC),
			CloudCover: 12,
			DayNight:   "Day",
			Assets: []types.Asset{
				{Kind: types.AssetReflectance, URL: "https://x/a_RFL_.nc"},
				{Kind: types.AssetMask, URL: "https://x/a_MASK_.nc"},
			},
			Footprint: []types.LonLat{{Lon: -61.8, Lat: -39.7}, {Lon: -61.0, Lat: -39.7}, {Lon: -61.8, Lat: -39.7}},
		},
		{
			ID:         "EMIT_L2A_RFL_001_20230320T101500_2307901_002",
			ConceptID:  "G2-LPCLOUD",
			Collection: "C2408750690-LPCLOUD",
			StartTime:  time.Date(2023, 3, 20, 10, 15, 0, 0, time.UTC),
			CloudCover: 80,
			DayNight:   "Day",
			Assets: []types.Asset{
				{Kind: types.AssetReflectance, URL: "https://x/b_RFL_.nc"},
			},
		},
	}
}

func TestSaveAndList(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, testGranules()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.List(ctx, ListFilter{MaxCloud: -1})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List() returned %d granules, want 2", len(got))
	}
	// Newest first.
	if got[0].ID != "EMIT_L2A_RFL_001_20230320T101500_2307901_002" {
		t.Errorf("first granule = %s", got[0].ID)
	}

	g := got[1]
	if g.CloudCover != 12 || g.DayNight != "Day" {
		t.Errorf("granule metadata = %+v", g)
	}
	if len(g.Assets) != 2 {
		t.Fatalf("granule has %d assets, want 2", len(g.Assets))
	}
	if len(g.Footprint) != 3 || g.Footprint[0].Lon != -61.8 {
		t.Errorf("footprint did not round-trip: %+v", g.Footprint)
	}
	if g.StartTime.IsZero() {
		t.Error("start time not restored")
	}
}

func TestSaveUpsert(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	gs := testGranules()

	if err := s.Save(ctx, gs); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Re-save with changed cloud cover; must update, not duplicate.
	gs[0].CloudCover = 15
	if err := s.Save(ctx, gs[:1]); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	got, err := s.List(ctx, ListFilter{MaxCloud: -1})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List() returned %d granules after upsert, want 2", len(got))
	}
	if got[1].CloudCover != 15 {
		t.Errorf("cloud cover = %v, want 15 after upsert", got[1].CloudCover)
	}
}

func TestListFilters(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	if err := s.Save(ctx, testGranules()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.List(ctx, ListFilter{MaxCloud: 50})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 1 || got[0].CloudCover != 12 {
		t.Errorf("cloud filter returned %+v", got)
	}

	got, err = s.List(ctx, ListFilter{MaxCloud: -1, Collection: "C0000-NONE"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("collection filter returned %d granules, want 0", len(got))
	}

	got, err = s.List(ctx, ListFilter{MaxCloud: -1, Limit: 1})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("limit returned %d granules, want 1", len(got))
	}

	got, err = s.List(ctx, ListFilter{MaxCloud: -1, Limit: -1})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != len(testGranules()) {
		t.Errorf("negative limit returned %d granules, want %d", len(got), len(testGranules()))
	}
}

func TestMarkFetched(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	if err := s.Save(ctx, testGranules()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	err := s.MarkFetched(ctx, "https://x/a_RFL_.nc", "/data/raw/a_RFL_.nc", 1024, "abc123")
	if err != nil {
		t.Fatalf("MarkFetched() error = %v", err)
	}

	n, err := s.FetchedCount(ctx)
	if err != nil {
		t.Fatalf("FetchedCount() error = %v", err)
	}
	if n != 1 {
		t.Errorf("FetchedCount() = %d, want 1", n)
	}

	if err := s.MarkFetched(ctx, "https://x/unknown.nc", "/p", 1, "x"); err == nil {
		t.Error("MarkFetched() expected error for unknown asset")
	}
}
