// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package granule

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/emit-toolkit/pkg/types"
)

// WriteURLList writes the asset URLs of the given granules to path, one
// URL per line, for consumption by an external bulk-download tool. Only
// assets matching kinds are written (empty kinds writes every asset).
// It returns the number of URLs written.
func WriteURLList(path string, granules []types.Granule, kinds []types.AssetKind) (int, error) {
	var b strings.Builder
	n := 0
	for _, g := range granules {
		for _, a := range g.AssetsOfKind(kinds...) {
			b.WriteString(a.URL)
			b.WriteByte('\n')
			n++
		}
	}
	if n == 0 {
		return 0, fmt.Errorf("no matching asset URLs to write")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return 0, fmt.Errorf("writing URL list: %w", err)
	}
	return n, nil
}

// ReadURLList reads a URL list written by WriteURLList (or by hand).
// Blank lines and #-comments are skipped.
func ReadURLList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading URL list: %w", err)
	}
	var urls []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, nil
}
