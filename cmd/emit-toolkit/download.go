// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/emit-toolkit/internal/catalog"
	"github.com/pdiddy/emit-toolkit/internal/download"
	"github.com/pdiddy/emit-toolkit/internal/granule"
	"github.com/pdiddy/emit-toolkit/internal/secrets"
	"github.com/pdiddy/emit-toolkit/pkg/types"
)

const defaultDownloadDelay = 1 * time.Second

var downloadCmd = &cobra.Command{
	Use:   "download [url...]",
	Short: "Download granule assets from the LP DAAC archive",
	Long: `Download fetches granule assets into <data-dir>/raw and records a YAML
sidecar per file under <data-dir>/metadata. Asset URLs come from the
command line, or with --from, from a search save file (as written by
search --save) or a plain URL list (as written by urls). Files already
on disk are skipped.

Authentication uses an Earthdata Login bearer token from --token, the
EMIT_TOOLKIT_TOKEN environment variable, or .secrets/earthdata-token.`,
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().String("from", "", "save file or URL list to download from")
	downloadCmd.Flags().String("data-dir", "data", "base directory for downloaded assets")
	downloadCmd.Flags().String("kinds", "reflectance", "asset kinds to fetch from a save file")
	downloadCmd.Flags().Duration("delay", defaultDownloadDelay, "delay between downloads")
	downloadCmd.Flags().String("token", "", "Earthdata Login bearer token")
	downloadCmd.Flags().Bool("catalog", false, "record download state in the local catalog")
	downloadCmd.Flags().String("catalog-dir", "catalog", "directory holding the catalog database")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	urls := args
	from, _ := cmd.Flags().GetString("from")
	if from != "" {
		fromURLs, err := downloadURLs(cmd, from)
		if err != nil {
			return err
		}
		urls = append(urls, fromURLs...)
	}
	if len(urls) == 0 {
		return fmt.Errorf("no asset URLs to download: pass URLs or --from")
	}

	cfg, err := downloadConfig(cmd)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: cfg.Timeout}
	result := download.FetchBatch(client, urls, cfg, os.Stderr)

	if mark, _ := cmd.Flags().GetBool("catalog"); mark {
		if err := markFetched(cmd, cfg, result.Files); err != nil {
			return err
		}
	}

	if result.HasFailures() {
		return fmt.Errorf("%d of %d downloads failed", result.Failed, result.Total())
	}
	return nil
}

// markFetched records completed downloads against their catalog assets.
// Assets the catalog has never seen are skipped with a warning.
func markFetched(cmd *cobra.Command, cfg types.DownloadConfig, files []string) error {
	catalogDir, _ := cmd.Flags().GetString("catalog-dir")
	store, err := catalog.NewStore(types.CatalogConfig{CatalogDir: catalogDir})
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	for _, localPath := range files {
		sc, err := download.ReadSidecar(download.SidecarPath(cfg, localPath))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: no sidecar for %s: %v\n", localPath, err)
			continue
		}
		if err := store.MarkFetched(ctx, sc.URL, localPath, sc.Size, sc.SHA256); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
	return nil
}

// downloadURLs extracts asset URLs from a save file or a plain URL list.
// Save files are detected by attempting a YAML parse first.
func downloadURLs(cmd *cobra.Command, path string) ([]string, error) {
	if sf, err := granule.ReadSaveFile(path); err == nil && len(sf.Results) > 0 {
		kindsFlag, _ := cmd.Flags().GetString("kinds")
		kinds, err := granule.ParseKinds(kindsFlag)
		if err != nil {
			return nil, err
		}
		var urls []string
		for _, g := range sf.Results {
			for _, a := range g.AssetsOfKind(kinds...) {
				urls = append(urls, a.URL)
			}
		}
		return urls, nil
	}
	return granule.ReadURLList(path)
}

func downloadConfig(cmd *cobra.Command) (types.DownloadConfig, error) {
	cfg := types.DownloadConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   defaultTimeout,
			UserAgent: defaultUserAgent,
		},
	}
	cfg.DataDir, _ = cmd.Flags().GetString("data-dir")
	cfg.DownloadDelay, _ = cmd.Flags().GetDuration("delay")
	if t := viper.GetDuration("download.timeout"); t > 0 {
		cfg.Timeout = t
	}
	if d := viper.GetString("download.data_dir"); d != "" && !cmd.Flags().Changed("data-dir") {
		cfg.DataDir = d
	}

	cfg.Token, _ = cmd.Flags().GetString("token")
	if cfg.Token == "" {
		cfg.Token = viper.GetString("token")
	}
	if cfg.Token == "" {
		cfg.Token = secrets.Token(loadedSecrets)
	}
	if cfg.Token == "" {
		fmt.Fprintln(os.Stderr, "Warning: no Earthdata token configured; downloads from the LP DAAC archive will fail")
	}
	return cfg, nil
}
