package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// CurrentConditions is the normalized current-weather reading shared by every
// weather adapter and by the simulated fallback.
type CurrentConditions struct {
	Temperature2m      float64 `json:"temperature_2m"`
	RelativeHumidity2m float64 `json:"relative_humidity_2m"`
	ApparentTemp       float64 `json:"apparent_temperature"`
	IsDay              int     `json:"is_day"`
	WeatherCode        int     `json:"weather_code"`
	WindSpeed10m       float64 `json:"wind_speed_10m"`
	WindDirection10m   float64 `json:"wind_direction_10m"`
	SurfacePressure    float64 `json:"surface_pressure"`
	UVIndex            float64 `json:"uv_index"`
	DewPoint2m         float64 `json:"dew_point_2m"`
	Visibility         float64 `json:"visibility"`
	CloudCover         float64 `json:"cloud_cover"`
	ShortwaveRadiation float64 `json:"shortwave_radiation"`
}

const currentParams = "temperature_2m,relative_humidity_2m,apparent_temperature,is_day,weather_code," +
	"wind_speed_10m,wind_direction_10m,surface_pressure,uv_index,dew_point_2m,visibility,cloud_cover,shortwave_radiation"

// OpenMeteoClient fetches gridded current conditions, batching every tracked
// coordinate into a single call. The response carries one element per input
// coordinate, at the same index as the request.
type OpenMeteoClient struct {
	name    string
	baseURL string
	httpCfg httpConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoClient(client *http.Client) *OpenMeteoClient {
	return &OpenMeteoClient{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: httpConfig{client: client, timeout: 15 * time.Second},
		circuit: newCircuit("openmeteo"),
	}
}

func (c *OpenMeteoClient) Name() string { return c.name }

// CurrentBatch fetches current conditions for all coordinates in one call.
// len(lats) must equal len(lons); the result has the same length and order.
func (c *OpenMeteoClient) CurrentBatch(ctx context.Context, lats, lons []float64) ([]CurrentConditions, error) {
	if len(lats) != len(lons) || len(lats) == 0 {
		return nil, &SourceError{Provider: c.name, Kind: FailureMalformed, Err: fmt.Errorf("coordinate arrays mismatch: %d lats, %d lons", len(lats), len(lons))}
	}

	values := url.Values{}
	values.Set("latitude", joinFloats(lats))
	values.Set("longitude", joinFloats(lons))
	values.Set("current", currentParams)
	values.Set("timezone", "auto")
	u := fmt.Sprintf("%s?%s", c.baseURL, values.Encode())

	body, err := doRequest(ctx, c.name, c.circuit, c.httpCfg, u)
	if err != nil {
		return nil, err
	}

	type envelope struct {
		Current CurrentConditions `json:"current"`
	}

	// A single-coordinate request returns a bare object, a batched one an
	// array.
	var envelopes []envelope
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &envelopes); err != nil {
			return nil, &SourceError{Provider: c.name, Kind: FailureMalformed, Err: err}
		}
	} else {
		var single envelope
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, &SourceError{Provider: c.name, Kind: FailureMalformed, Err: err}
		}
		envelopes = []envelope{single}
	}

	if len(envelopes) != len(lats) {
		return nil, &SourceError{Provider: c.name, Kind: FailureMalformed, Err: fmt.Errorf("expected %d results, got %d", len(lats), len(envelopes))}
	}

	conditions := make([]CurrentConditions, len(envelopes))
	for i, e := range envelopes {
		conditions[i] = e.Current
	}
	return conditions, nil
}

func joinFloats(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'f', 4, 64)
	}
	return strings.Join(parts, ",")
}
