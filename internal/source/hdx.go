package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
)

// HDXPackage is one dataset entry from the Humanitarian Data Exchange catalog.
type HDXPackage struct {
	Title            string `json:"title"`
	Name             string `json:"name"`
	MetadataModified string `json:"metadata_modified"`
	Organization     struct {
		Title string `json:"title"`
	} `json:"organization"`
}

// HDXSearch is a package-catalog search result: a total count plus the most
// recently modified entries.
type HDXSearch struct {
	Count    int
	Packages []HDXPackage
}

// HDXClient queries the HDX CKAN catalog for dataset activity.
type HDXClient struct {
	name    string
	baseURL string
	httpCfg httpConfig
	circuit *gobreaker.CircuitBreaker
}

func NewHDXClient(client *http.Client) *HDXClient {
	return &HDXClient{
		name:    "hdx",
		baseURL: "https://data.humdata.org/api/3/action/package_search",
		httpCfg: httpConfig{client: client, timeout: 15 * time.Second},
		circuit: newCircuit("hdx"),
	}
}

func (c *HDXClient) Name() string { return c.name }

// Search returns the catalog count and newest packages for the query, sorted
// by modification time descending.
func (c *HDXClient) Search(ctx context.Context, query string, rows int) (*HDXSearch, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("rows", fmt.Sprintf("%d", rows))
	values.Set("sort", "metadata_modified desc")
	u := fmt.Sprintf("%s?%s", c.baseURL, values.Encode())

	var payload struct {
		Success bool `json:"success"`
		Result  struct {
			Count   int          `json:"count"`
			Results []HDXPackage `json:"results"`
		} `json:"result"`
	}
	if err := fetchJSON(ctx, c.name, c.circuit, c.httpCfg, u, &payload); err != nil {
		return nil, err
	}
	if !payload.Success {
		return nil, &SourceError{Provider: c.name, Kind: FailureMalformed, Err: errors.New("catalog reported success=false")}
	}

	return &HDXSearch{Count: payload.Result.Count, Packages: payload.Result.Results}, nil
}

// DatasetURL is the public page for a package name.
func (p HDXPackage) DatasetURL() string {
	return "https://data.humdata.org/dataset/" + p.Name
}
