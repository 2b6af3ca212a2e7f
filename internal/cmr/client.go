// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cmr queries NASA's Common Metadata Repository for EMIT granules.
// It resolves a collection concept ID from a product DOI and runs paginated
// granule searches with temporal and spatial constraints.
package cmr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/emit-toolkit/internal/httputil"
	"github.com/pdiddy/emit-toolkit/pkg/types"
)

// cmrBase is the CMR search endpoint. Declared as a var so tests can
// substitute an httptest server.
var cmrBase = "https://cmr.earthdata.nasa.gov/search"

// EMITL2ADOI is the DOI of the EMIT L2A surface reflectance collection.
const EMITL2ADOI = "10.5067/EMIT/EMITL2ARFL.001"

// Client talks to the CMR search API.
type Client struct {
	HTTP *http.Client
	Cfg  types.CMRConfig
}

// NewClient returns a Client with the given HTTP client and config.
func NewClient(httpClient *http.Client, cfg types.CMRConfig) *Client {
	return &Client{HTTP: httpClient, Cfg: cfg}
}

// collections.json response structures. CMR wraps entries in an Atom-style feed.
type collectionsResponse struct {
	Feed collectionsFeed `json:"feed"`
}

type collectionsFeed struct {
	Entry []collectionEntry `json:"entry"`
}

type collectionEntry struct {
	ID        string `json:"id"`
	ShortName string `json:"short_name"`
	Title     string `json:"title"`
}

// ResolveCollection looks up the CMR concept ID for a product DOI via
// collections.json. CMR returns at most one collection per DOI; an empty
// entry list means the DOI is unknown.
func (c *Client) ResolveCollection(ctx context.Context, doi string) (string, error) {
	if strings.TrimSpace(doi) == "" {
		return "", fmt.Errorf("empty DOI")
	}

	reqURL := cmrBase + "/collections.json?" + url.Values{"doi": {doi}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.Cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, 0)
	if err != nil {
		return "", fmt.Errorf("CMR collections request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("CMR collections returned HTTP %d", resp.StatusCode)
	}

	var cr collectionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("parsing CMR collections response: %w", err)
	}

	if len(cr.Feed.Entry) == 0 {
		return "", fmt.Errorf("no collection found for DOI %s", doi)
	}
	return cr.Feed.Entry[0].ID, nil
}
