// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/emit-toolkit/internal/product"
)

var infoCmd = &cobra.Command{
	Use:   "info <file.nc>",
	Short: "Print a summary of an EMIT L2A file",
	Long: `Info reads the header of an EMIT L2A reflectance file and prints its
dimensions, wavelength coverage, and orthorectified output size without
loading the reflectance values into memory.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	s, err := product.Info(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "File:        %s\n", args[0])
	fmt.Fprintf(os.Stdout, "Scene:       %d downtrack x %d crosstrack\n", s.Downtrack, s.Crosstrack)
	fmt.Fprintf(os.Stdout, "Bands:       %d (%d good)\n", s.Bands, s.GoodBands)
	fmt.Fprintf(os.Stdout, "Wavelengths: %.1f - %.1f nm\n", s.MinWavelen, s.MaxWavelen)
	fmt.Fprintf(os.Stdout, "Ortho grid:  %d x %d\n", s.OrthoWidth, s.OrthoHeight)
	return nil
}
