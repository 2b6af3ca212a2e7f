// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/emit-toolkit/internal/catalog"
	"github.com/pdiddy/emit-toolkit/internal/granule"
	"github.com/pdiddy/emit-toolkit/pkg/types"
)

var urlsCmd = &cobra.Command{
	Use:   "urls [save-file]",
	Short: "Write an asset URL list from a saved search or the catalog",
	Long: `Urls writes the download URLs of the selected asset kinds, one per line,
to a text file. Granules come from a search save file, or with --catalog
from the local catalog. The list feeds the download command or external
tools like wget.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runURLs,
}

func init() {
	urlsCmd.Flags().String("out", "urls.txt", "output file for the URL list")
	urlsCmd.Flags().String("kinds", "reflectance", "comma-separated asset kinds (reflectance,uncertainty,mask)")
	urlsCmd.Flags().Float64("max-cloud", 100, "maximum cloud cover percentage")
	urlsCmd.Flags().Bool("catalog", false, "read granules from the local catalog")
	urlsCmd.Flags().String("catalog-dir", "catalog", "directory holding the catalog database")

	rootCmd.AddCommand(urlsCmd)
}

func runURLs(cmd *cobra.Command, args []string) error {
	granules, err := urlsGranules(cmd, args)
	if err != nil {
		return err
	}

	maxCloud, _ := cmd.Flags().GetFloat64("max-cloud")
	granules = granule.Filter{MaxCloud: maxCloud}.Apply(granules)

	kindsFlag, _ := cmd.Flags().GetString("kinds")
	kinds, err := granule.ParseKinds(kindsFlag)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	n, err := granule.WriteURLList(out, granules, kinds)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %d URLs to %s\n", n, out)
	return nil
}

func urlsGranules(cmd *cobra.Command, args []string) ([]types.Granule, error) {
	fromCatalog, _ := cmd.Flags().GetBool("catalog")
	switch {
	case fromCatalog && len(args) > 0:
		return nil, fmt.Errorf("use either a save file or --catalog, not both")
	case fromCatalog:
		catalogDir, _ := cmd.Flags().GetString("catalog-dir")
		store, err := catalog.NewStore(types.CatalogConfig{CatalogDir: catalogDir})
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.List(context.Background(), catalog.ListFilter{MaxCloud: -1, Limit: -1})
	case len(args) == 1:
		sf, err := granule.ReadSaveFile(args[0])
		if err != nil {
			return nil, err
		}
		return sf.Results, nil
	default:
		return nil, fmt.Errorf("pass a save file or --catalog")
	}
}
