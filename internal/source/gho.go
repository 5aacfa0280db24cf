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

// CombinedSexes is the WHO dimension code covering both sexes; it is preferred
// over sex-split values when a year carries several rows.
const CombinedSexes = "BTSX"

// GHOClient fetches dimensional statistics from the WHO Global Health
// Observatory OData API. The API can be slow, hence the generous timeout.
type GHOClient struct {
	name    string
	baseURL string
	country string
	httpCfg httpConfig
	circuit *gobreaker.CircuitBreaker
}

func NewGHOClient(client *http.Client, country string) *GHOClient {
	return &GHOClient{
		name:    "who-gho",
		baseURL: "https://ghoapi.azureedge.net/api",
		country: country,
		httpCfg: httpConfig{client: client, timeout: 25 * time.Second},
		circuit: newCircuit("who-gho"),
	}
}

func (c *GHOClient) Name() string { return c.name }

// IndicatorValues returns all dimensional rows for one indicator code,
// filtered to the client's country.
func (c *GHOClient) IndicatorValues(ctx context.Context, code string) ([]extract.DimValue, error) {
	filter := url.QueryEscape(fmt.Sprintf("SpatialDim eq '%s'", c.country))
	u := fmt.Sprintf("%s/%s?$filter=%s", c.baseURL, code, filter)

	var payload struct {
		Value []struct {
			TimeDim      json.Number `json:"TimeDim"`
			Dim1         string      `json:"Dim1"`
			NumericValue *float64    `json:"NumericValue"`
		} `json:"value"`
	}
	if err := fetchJSON(ctx, c.name, c.circuit, c.httpCfg, u, &payload); err != nil {
		return nil, err
	}

	values := make([]extract.DimValue, 0, len(payload.Value))
	for _, v := range payload.Value {
		values = append(values, extract.DimValue{
			Period: v.TimeDim.String(),
			Dim:    v.Dim1,
			Value:  v.NumericValue,
		})
	}
	return values, nil
}
