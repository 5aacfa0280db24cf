package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/faizalashwel-dev/Yemen-weather-data/internal/extract"
)

// WorldBankClient fetches paginated indicator time series from the World Bank
// open data API.
type WorldBankClient struct {
	name    string
	baseURL string
	country string
	perPage int
	httpCfg httpConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWorldBankClient(client *http.Client, country string) *WorldBankClient {
	return &WorldBankClient{
		name:    "worldbank",
		baseURL: "https://api.worldbank.org/v2",
		country: country,
		perPage: 30,
		httpCfg: httpConfig{client: client, timeout: 15 * time.Second},
		circuit: newCircuit("worldbank"),
	}
}

func (c *WorldBankClient) Name() string { return c.name }

// IndicatorSeries returns the chronologically sorted series for one indicator
// code. An empty (but well-formed) response yields an empty series, not an
// error.
func (c *WorldBankClient) IndicatorSeries(ctx context.Context, code string) ([]extract.SeriesPoint, error) {
	values := url.Values{}
	values.Set("format", "json")
	values.Set("per_page", fmt.Sprintf("%d", c.perPage))
	u := fmt.Sprintf("%s/country/%s/indicator/%s?%s", c.baseURL, c.country, code, values.Encode())

	// The API wraps rows in a two-element array: [paging metadata, rows].
	var envelope []json.RawMessage
	if err := fetchJSON(ctx, c.name, c.circuit, c.httpCfg, u, &envelope); err != nil {
		return nil, err
	}
	if len(envelope) < 2 {
		return nil, &SourceError{Provider: c.name, Kind: FailureMalformed, Err: fmt.Errorf("expected [meta, rows], got %d elements", len(envelope))}
	}

	var rows []struct {
		Date  string   `json:"date"`
		Value *float64 `json:"value"`
	}
	if err := json.Unmarshal(envelope[1], &rows); err != nil {
		return nil, &SourceError{Provider: c.name, Kind: FailureMalformed, Err: err}
	}

	points := make([]extract.SeriesPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, extract.SeriesPoint{Period: r.Date, Value: r.Value})
	}
	extract.SortByPeriod(points)
	return points, nil
}
