// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "emit-toolkit/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CMRConfig holds settings for the CMR discovery stage.
type CMRConfig struct {
	HTTPConfig `yaml:",inline"`

	// PageSize is the number of granule entries requested per page
	// (default 200, CMR caps at 2000).
	PageSize int `json:"page_size" yaml:"page_size"`

	// MaxResults bounds the total number of granules returned by a
	// search. Zero means no bound beyond what CMR holds.
	MaxResults int `json:"max_results" yaml:"max_results"`

	// PageDelay is the pause between consecutive page requests.
	PageDelay time.Duration `json:"page_delay" yaml:"page_delay"`
}

// DownloadConfig holds settings for the asset download stage.
type DownloadConfig struct {
	HTTPConfig `yaml:",inline"`

	// DataDir is the base directory for downloaded assets
	// (contains raw/, metadata/).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// DownloadDelay is the delay between consecutive downloads (default 1s).
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`

	// Token is the Earthdata Login bearer token. Usually loaded from
	// .secrets/earthdata-token rather than the config file.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`
}

// OrthoConfig holds settings for the orthorectification stage.
type OrthoConfig struct {
	// FillValue overrides the fill written into unmapped output cells.
	// When zero the product's own fill value (-9999) is used.
	FillValue float64 `json:"fill_value,omitempty" yaml:"fill_value,omitempty"`
}

// RenderConfig holds settings for quick-look and spectrum rendering.
type RenderConfig struct {
	// StretchLow and StretchHigh are the percentile bounds for the
	// contrast stretch (defaults 2 and 98).
	StretchLow  float64 `json:"stretch_low" yaml:"stretch_low"`
	StretchHigh float64 `json:"stretch_high" yaml:"stretch_high"`
}

// CatalogConfig holds settings for the granule catalog.
type CatalogConfig struct {
	// CatalogDir is the directory holding the catalog database
	// (contains index/).
	CatalogDir string `json:"catalog_dir" yaml:"catalog_dir"`

	// MaxResults is the default maximum number of list results (default 50).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	CMR      CMRConfig      `json:"cmr" yaml:"cmr"`
	Download DownloadConfig `json:"download" yaml:"download"`
	Ortho    OrthoConfig    `json:"ortho" yaml:"ortho"`
	Render   RenderConfig   `json:"render" yaml:"render"`
	Catalog  CatalogConfig  `json:"catalog" yaml:"catalog"`
}
