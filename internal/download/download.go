// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package download fetches granule assets from the LP DAAC cloud archive
// and writes metadata sidecars. Earthdata Login is handled with a bearer
// token; the archive's redirect chain is followed by the HTTP client.
package download

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/emit-toolkit/pkg/types"
)

const (
	rawDir      = "raw"
	metadataDir = "metadata"
)

// BatchResult holds the outcome of a batch download run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
	Files      []string
}

// Total returns the total number of assets processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any assets failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Sidecar is the YAML metadata record written next to each download.
type Sidecar struct {
	URL       string    `yaml:"url"`
	Kind      string    `yaml:"kind,omitempty"`
	Size      int64     `yaml:"size"`
	SHA256    string    `yaml:"sha256"`
	FetchedAt time.Time `yaml:"fetched_at"`
}

// FetchAsset downloads a single asset URL into cfg.DataDir/raw and writes
// a YAML sidecar under cfg.DataDir/metadata. If the file already exists on
// disk the download is skipped; the skipped return value reports that.
func FetchAsset(client *http.Client, assetURL string, cfg types.DownloadConfig, w io.Writer) (localPath string, skipped bool, err error) {
	name, err := assetFileName(assetURL)
	if err != nil {
		return "", false, err
	}

	destPath := filepath.Join(cfg.DataDir, rawDir, name)
	metaPath := filepath.Join(cfg.DataDir, metadataDir, name+".yaml")

	if _, err := os.Stat(destPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", name)
		return destPath, true, nil
	}

	for _, dir := range []string{
		filepath.Join(cfg.DataDir, rawDir),
		filepath.Join(cfg.DataDir, metadataDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", false, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	fmt.Fprintf(w, "downloading: %s\n", name)

	size, sum, err := downloadFile(client, assetURL, destPath, cfg)
	if err != nil {
		return "", false, fmt.Errorf("downloading %s: %w", name, err)
	}

	sc := Sidecar{
		URL:       assetURL,
		Size:      size,
		SHA256:    sum,
		FetchedAt: time.Now().UTC(),
	}
	if err := writeSidecar(sc, metaPath); err != nil {
		return "", false, fmt.Errorf("writing sidecar for %s: %w", name, err)
	}

	return destPath, false, nil
}

// FetchBatch processes multiple asset URLs, printing per-item status and
// returning a summary. It continues after individual failures and applies
// a delay between consecutive downloads.
func FetchBatch(client *http.Client, urls []string, cfg types.DownloadConfig, w io.Writer) BatchResult {
	var result BatchResult
	for i, u := range urls {
		if i > 0 && cfg.DownloadDelay > 0 {
			time.Sleep(cfg.DownloadDelay)
		}
		local, wasSkipped, err := FetchAsset(client, u, cfg, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", stripQuery(u), err)
			result.Failed++
			continue
		}
		if wasSkipped {
			result.Skipped++
		} else {
			result.Downloaded++
		}
		result.Files = append(result.Files, local)
	}
	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result
}

// assetFileName extracts the base filename from an asset URL.
func assetFileName(assetURL string) (string, error) {
	u, err := url.Parse(assetURL)
	if err != nil {
		return "", fmt.Errorf("invalid asset URL %q: %w", assetURL, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return "", fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("cannot derive filename from %q", assetURL)
	}
	return name, nil
}

// downloadFile fetches url to destPath through a temporary file so a
// partial download never lands under the final name. The file's size and
// streaming SHA-256 are returned.
func downloadFile(client *http.Client, assetURL, destPath string, cfg types.DownloadConfig) (int64, string, error) {
	req, err := http.NewRequest(http.MethodGet, assetURL, nil)
	if err != nil {
		return 0, "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/x-netcdf, application/octet-stream")
	if cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return 0, "", fmt.Errorf("HTTP %d from %s (is the Earthdata token set?)", resp.StatusCode, assetURL)
	default:
		return 0, "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, assetURL)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return 0, "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	hasher := sha256.New()
	size, copyErr := io.Copy(io.MultiWriter(tmpFile, hasher), resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return 0, "", fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, "", fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return 0, "", fmt.Errorf("renaming temp file: %w", err)
	}
	return size, hex.EncodeToString(hasher.Sum(nil)), nil
}

func writeSidecar(sc Sidecar, metaPath string) error {
	data, err := yaml.Marshal(&sc)
	if err != nil {
		return fmt.Errorf("marshaling sidecar: %w", err)
	}
	return os.WriteFile(metaPath, data, 0o644)
}

// ReadSidecar loads a metadata sidecar written by FetchAsset.
func ReadSidecar(metaPath string) (*Sidecar, error) {
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, fmt.Errorf("reading sidecar: %w", err)
	}
	var sc Sidecar
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing sidecar: %w", err)
	}
	return &sc, nil
}

// SidecarPath returns the sidecar path for a downloaded asset path.
func SidecarPath(cfg types.DownloadConfig, localPath string) string {
	return filepath.Join(cfg.DataDir, metadataDir, filepath.Base(localPath)+".yaml")
}

// stripQuery is a helper for display: asset URLs may carry signed query
// strings that should not appear in logs.
func stripQuery(assetURL string) string {
	if i := strings.IndexByte(assetURL, '?'); i >= 0 {
		return assetURL[:i]
	}
	return assetURL
}
