// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog persists discovered granules and their download state
// in a local SQLite database, so searches survive sessions and the urls
// and download commands can work without re-querying CMR.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/emit-toolkit/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "granules.db"
)

// Store manages the granule catalog SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the catalog database at
// catalogDir/index/granules.db, creating the schema if needed.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.CatalogDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 50
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS granules (
			id TEXT PRIMARY KEY,
			concept_id TEXT,
			collection TEXT,
			start_time TEXT,
			cloud_cover REAL,
			day_night TEXT,
			footprint TEXT,
			saved_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS assets (
			url TEXT PRIMARY KEY,
			granule_id TEXT NOT NULL REFERENCES granules(id) ON DELETE CASCADE,
			kind TEXT,
			local_path TEXT,
			size INTEGER,
			sha256 TEXT,
			fetched_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assets_granule_id ON assets(granule_id)`,
		`CREATE INDEX IF NOT EXISTS idx_granules_start_time ON granules(start_time)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save upserts granules and their assets. Re-saving a granule refreshes
// its metadata and asset list but keeps recorded download state.
func (s *Store) Save(ctx context.Context, granules []types.Granule) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, g := range granules {
		footprint := ""
		if len(g.Footprint) > 0 {
			data, err := json.Marshal(g.Footprint)
			if err != nil {
				return fmt.Errorf("marshaling footprint of %s: %w", g.ID, err)
			}
			footprint = string(data)
		}

		start := ""
		if !g.StartTime.IsZero() {
			start = g.StartTime.UTC().Format(time.RFC3339)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO granules (id, concept_id, collection, start_time, cloud_cover, day_night, footprint, saved_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				concept_id = excluded.concept_id,
				collection = excluded.collection,
				start_time = excluded.start_time,
				cloud_cover = excluded.cloud_cover,
				day_night = excluded.day_night,
				footprint = excluded.footprint,
				saved_at = excluded.saved_at`,
			g.ID, g.ConceptID, g.Collection, start, g.CloudCover, g.DayNight, footprint, now,
		); err != nil {
			return fmt.Errorf("upserting granule %s: %w", g.ID, err)
		}

		for _, a := range g.Assets {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO assets (url, granule_id, kind)
				VALUES (?, ?, ?)
				ON CONFLICT(url) DO UPDATE SET
					granule_id = excluded.granule_id,
					kind = excluded.kind`,
				a.URL, g.ID, string(a.Kind),
			); err != nil {
				return fmt.Errorf("upserting asset %s: %w", a.URL, err)
			}
		}
	}
	return tx.Commit()
}

// ListFilter narrows List results.
type ListFilter struct {
	// MaxCloud drops granules above this cloud cover. Negative disables.
	MaxCloud float64

	// Collection keeps granules of one collection. Empty keeps all.
	Collection string

	// Limit caps the result count; zero uses the store default and
	// negative returns everything.
	Limit int
}

// List returns cataloged granules ordered by start time, newest first.
func (s *Store) List(ctx context.Context, f ListFilter) ([]types.Granule, error) {
	limit := f.Limit
	if limit == 0 {
		limit = s.maxResults
	}
	if limit < 0 {
		limit = -1 // SQLite: no limit
	}

	query := `SELECT id, concept_id, collection, start_time, cloud_cover, day_night, footprint
		FROM granules WHERE 1=1`
	var args []any
	if f.MaxCloud >= 0 {
		query += ` AND cloud_cover >= 0 AND cloud_cover <= ?`
		args = append(args, f.MaxCloud)
	}
	if f.Collection != "" {
		query += ` AND collection = ?`
		args = append(args, f.Collection)
	}
	query += ` ORDER BY start_time DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying granules: %w", err)
	}
	defer rows.Close()

	var granules []types.Granule
	for rows.Next() {
		var g types.Granule
		var start, footprint string
		if err := rows.Scan(&g.ID, &g.ConceptID, &g.Collection, &start, &g.CloudCover, &g.DayNight, &footprint); err != nil {
			return nil, fmt.Errorf("scanning granule: %w", err)
		}
		if start != "" {
			if t, parseErr := time.Parse(time.RFC3339, start); parseErr == nil {
				g.StartTime = t
			}
		}
		if footprint != "" {
			if err := json.Unmarshal([]byte(footprint), &g.Footprint); err != nil {
				return nil, fmt.Errorf("parsing footprint of %s: %w", g.ID, err)
			}
		}

		assets, err := s.assetsOf(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		g.Assets = assets
		granules = append(granules, g)
	}
	return granules, rows.Err()
}

func (s *Store) assetsOf(ctx context.Context, granuleID string) ([]types.Asset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT url, kind FROM assets WHERE granule_id = ? ORDER BY url`, granuleID)
	if err != nil {
		return nil, fmt.Errorf("querying assets of %s: %w", granuleID, err)
	}
	defer rows.Close()

	var assets []types.Asset
	for rows.Next() {
		var a types.Asset
		var kind string
		if err := rows.Scan(&a.URL, &kind); err != nil {
			return nil, fmt.Errorf("scanning asset: %w", err)
		}
		a.Kind = types.AssetKind(kind)
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// MarkFetched records a completed download against its asset URL.
func (s *Store) MarkFetched(ctx context.Context, url, localPath string, size int64, sha256 string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE assets SET local_path = ?, size = ?, sha256 = ?, fetched_at = ?
		WHERE url = ?`,
		localPath, size, sha256, time.Now().UTC().Format(time.RFC3339), url)
	if err != nil {
		return fmt.Errorf("marking asset fetched: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("asset %s not in catalog", url)
	}
	return nil
}

// FetchedCount returns how many cataloged assets have been downloaded.
func (s *Store) FetchedCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM assets WHERE fetched_at IS NOT NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting fetched assets: %w", err)
	}
	return n, nil
}
