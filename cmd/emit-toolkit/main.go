// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the emit-toolkit CLI. Each pipeline
// stage is a subcommand: search discovers granules through CMR, urls and
// download act on the results, and info, ortho, quicklook, and spectrum
// work on downloaded L2A files.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/emit-toolkit/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "emit-toolkit/0.1"
)

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the emit-toolkit CLI.
var rootCmd = &cobra.Command{
	Use:   "emit-toolkit",
	Short: "Discover, download, and orthorectify EMIT reflectance scenes",
	Long: `emit-toolkit works with EMIT L2A surface reflectance products. It searches
NASA's CMR metadata API for granules over a region and time range, writes
filtered asset URL lists, downloads granule files from the LP DAAC archive,
and turns the spatially-raw reflectance cubes into georeferenced rasters,
quick-look images, and spectral plots.

Downloads need an Earthdata Login bearer token in .secrets/earthdata-token.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./emit-toolkit.yaml or ~/.config/emit-toolkit/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("emit-toolkit")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "emit-toolkit"))
		}
	}

	viper.SetEnvPrefix("EMIT_TOOLKIT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
