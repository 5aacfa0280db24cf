package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
)

// WttrClient fetches current conditions from the free-text wttr.in service,
// keyed by location name. It backs the live fallback chain; the batched
// gridded API remains the primary weather source.
type WttrClient struct {
	name    string
	baseURL string
	httpCfg httpConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWttrClient(client *http.Client) *WttrClient {
	return &WttrClient{
		name:    "wttr",
		baseURL: "https://wttr.in",
		httpCfg: httpConfig{client: client, timeout: 10 * time.Second},
		circuit: newCircuit("wttr"),
	}
}

func (c *WttrClient) Name() string { return c.name }

// Current fetches current conditions for a city by name. wttr.in serializes
// every numeric field as a string, so values are converted here.
func (c *WttrClient) Current(ctx context.Context, city string) (*CurrentConditions, error) {
	u := fmt.Sprintf("%s/%s?format=j1", c.baseURL, url.PathEscape(city))

	var payload struct {
		CurrentCondition []struct {
			TempC          string `json:"temp_C"`
			Humidity       string `json:"humidity"`
			WindspeedKmph  string `json:"windspeedKmph"`
			WinddirDegree  string `json:"winddirDegree"`
			WeatherCode    string `json:"weatherCode"`
			Pressure       string `json:"pressure"`
			UVIndex        string `json:"uvIndex"`
			Visibility     string `json:"visibility"`
			CloudCover     string `json:"cloudcover"`
			DewPointC      string `json:"DewPointC"`
		} `json:"current_condition"`
	}
	if err := fetchJSON(ctx, c.name, c.circuit, c.httpCfg, u, &payload); err != nil {
		return nil, err
	}
	if len(payload.CurrentCondition) == 0 {
		return nil, &SourceError{Provider: c.name, Kind: FailureMalformed, Err: errors.New("empty current_condition")}
	}

	cc := payload.CurrentCondition[0]
	return &CurrentConditions{
		Temperature2m:      num(cc.TempC),
		RelativeHumidity2m: num(cc.Humidity),
		WindSpeed10m:       num(cc.WindspeedKmph),
		WindDirection10m:   num(cc.WinddirDegree),
		WeatherCode:        int(num(cc.WeatherCode)),
		IsDay:              1,
		SurfacePressure:    num(cc.Pressure),
		UVIndex:            num(cc.UVIndex),
		DewPoint2m:         num(cc.DewPointC),
		Visibility:         num(cc.Visibility) * 1000, // km to meters
		CloudCover:         num(cc.CloudCover),
	}, nil
}

func num(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
