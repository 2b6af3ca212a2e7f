// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/emit-toolkit/internal/catalog"
	"github.com/pdiddy/emit-toolkit/internal/granule"
	"github.com/pdiddy/emit-toolkit/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the local granule catalog (add, list)",
	Long: `Catalog manages a local SQLite database of discovered granules. Use
subcommands to ingest search results or list what the catalog holds.`,
}

// --- add subcommand ---

var catalogAddCmd = &cobra.Command{
	Use:   "add <save-file>",
	Short: "Ingest granules from a search save file",
	Long: `Add upserts the granules of a search save file into the catalog.
Granules already present are updated in place; download state recorded
against their assets is preserved.`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogAdd,
}

func runCatalogAdd(cmd *cobra.Command, args []string) error {
	sf, err := granule.ReadSaveFile(args[0])
	if err != nil {
		return err
	}

	store, err := catalog.NewStore(catalogConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Save(context.Background(), sf.Results); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Cataloged %d granules from %s\n", len(sf.Results), args[0])
	return nil
}

// --- list subcommand ---

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cataloged granules",
	RunE:  runCatalogList,
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	store, err := catalog.NewStore(catalogConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	filter := catalog.ListFilter{MaxCloud: -1}
	if cmd.Flags().Changed("max-cloud") {
		filter.MaxCloud, _ = cmd.Flags().GetFloat64("max-cloud")
	}
	filter.Collection, _ = cmd.Flags().GetString("collection")
	filter.Limit, _ = cmd.Flags().GetInt("limit")

	ctx := context.Background()
	granules, err := store.List(ctx, filter)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return granule.FormatJSON(granules, os.Stdout)
	}
	granule.FormatTable(granules, os.Stdout)

	fetched, err := store.FetchedCount(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%d granules listed, %d assets downloaded\n", len(granules), fetched)
	return nil
}

func catalogConfig(cmd *cobra.Command) types.CatalogConfig {
	cfg := types.CatalogConfig{MaxResults: 50}
	cfg.CatalogDir, _ = cmd.Flags().GetString("catalog-dir")
	if d := viper.GetString("catalog.catalog_dir"); d != "" && !cmd.Flags().Changed("catalog-dir") {
		cfg.CatalogDir = d
	}
	return cfg
}

func init() {
	catalogAddCmd.Flags().String("catalog-dir", "catalog", "directory holding the catalog database")

	catalogListCmd.Flags().String("catalog-dir", "catalog", "directory holding the catalog database")
	catalogListCmd.Flags().Float64("max-cloud", 100, "maximum cloud cover percentage")
	catalogListCmd.Flags().String("collection", "", "filter by collection concept ID")
	catalogListCmd.Flags().Int("limit", 50, "maximum number of results")
	catalogListCmd.Flags().Bool("json", false, "output results as JSON")

	catalogCmd.AddCommand(catalogAddCmd)
	catalogCmd.AddCommand(catalogListCmd)
	rootCmd.AddCommand(catalogCmd)
}
