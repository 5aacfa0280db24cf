package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/faizalashwel-dev/Yemen-weather-data/internal/model"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/source"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/store"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/sync"
)

type stubByName struct {
	temp float64
}

func (s *stubByName) Name() string { return "stub-live" }

func (s *stubByName) Current(ctx context.Context, city string) (*source.CurrentConditions, error) {
	return &source.CurrentConditions{Temperature2m: s.temp}, nil
}

type stubBatch struct{}

func (s *stubBatch) Name() string { return "stub-batch" }

func (s *stubBatch) CurrentBatch(ctx context.Context, lats, lons []float64) ([]source.CurrentConditions, error) {
	return make([]source.CurrentConditions, len(lats)), nil
}

func newTestApp(t *testing.T) (*fiber.App, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	live := sync.NewLiveService(st, &stubByName{temp: 28}, &stubBatch{}, 15*time.Minute, zap.NewNop())
	srv := NewServer(st, live, zap.NewNop())

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	srv.RegisterRoutes(app)
	return app, st
}

func get(t *testing.T, app *fiber.App, path string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, body
}

func TestWeatherEndpointConvertsTimestamps(t *testing.T) {
	app, st := newTestApp(t)

	if err := st.SeedLocations([]model.Location{
		{CityName: "Aden", Country: "Yemen", Latitude: 12.7794, Longitude: 45.0367},
	}); err != nil {
		t.Fatal(err)
	}
	locs, _ := st.Locations()
	err := st.UpsertCurrentWeather(model.CurrentWeather{
		LocationID:        locs[0].LocationID,
		Country:           "Yemen",
		ObservationTime:   "2025-06-15 12:00:00",
		ObservationFields: model.ObservationFields{Temperature: 31.5},
	})
	if err != nil {
		t.Fatal(err)
	}

	resp, body := get(t, app, "/api/weather")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	var got struct {
		Status  string `json:"status"`
		Current []struct {
			CityName        string  `json:"city_name"`
			Temperature     float64 `json:"temperature"`
			ObservationTime string  `json:"observation_time"`
		} `json:"current"`
		ServerTime string `json:"server_time"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got.Status != "success" {
		t.Fatalf("expected success, got %q", got.Status)
	}
	if len(got.Current) != 1 || got.Current[0].CityName != "Aden" {
		t.Fatalf("unexpected current rows: %+v", got.Current)
	}
	if got.Current[0].ObservationTime != "2025-06-15T12:00:00" {
		t.Fatalf("observation_time must use the T separator, got %q", got.Current[0].ObservationTime)
	}
	if !strings.Contains(got.ServerTime, "T") {
		t.Fatalf("server_time must be ISO-8601, got %q", got.ServerTime)
	}
}

func TestFamilyEndpointShape(t *testing.T) {
	app, st := newTestApp(t)

	err := st.ReplaceIndicator(model.FamilyHealth, model.Indicator{
		IndicatorKey: "life_expectancy",
		CurrentValue: 66.1,
		YearUpdated:  "2023",
		HistoryJSON:  `[{"year":"2022","value":65.8},{"year":"2023","value":66.1}]`,
		UpdatedAt:    "2025-06-15 12:00:00",
	})
	if err != nil {
		t.Fatal(err)
	}
	_, err = st.InsertReport(model.SituationReport{
		Sector: "health", Title: "Cholera sitrep", Source: "ReliefWeb (RSS)",
		DatePublished: "2025-06-10", URL: "https://reliefweb.int/report/yemen/1",
	})
	if err != nil {
		t.Fatal(err)
	}

	resp, body := get(t, app, "/api/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	var got struct {
		Status string `json:"status"`
		KPI    map[string]struct {
			Value   float64              `json:"value"`
			Year    string               `json:"year"`
			History []model.HistoryPoint `json:"history"`
		} `json:"kpi"`
		NRT  []model.SituationReport `json:"nrt"`
		Meta struct {
			Count       int    `json:"count"`
			LastUpdated string `json:"last_updated"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}

	entry, ok := got.KPI["life_expectancy"]
	if !ok {
		t.Fatalf("kpi missing life_expectancy: %s", body)
	}
	if entry.Value != 66.1 || len(entry.History) != 2 {
		t.Fatalf("unexpected kpi entry: %+v", entry)
	}
	if len(got.NRT) != 1 || got.NRT[0].Title != "Cholera sitrep" {
		t.Fatalf("unexpected nrt: %+v", got.NRT)
	}
	if got.Meta.Count != 1 {
		t.Fatalf("meta.count = %d, want 1", got.Meta.Count)
	}
	if got.Meta.LastUpdated != "2025-06-15T12:00:00" {
		t.Fatalf("meta.last_updated must be ISO-8601, got %q", got.Meta.LastUpdated)
	}
}

func TestReportsQueryValidation(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := get(t, app, "/api/reports")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing sector must be rejected, got %d", resp.StatusCode)
	}
	var got struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got.Status != "error" {
		t.Fatalf("error body must carry status=error, got %s", body)
	}

	resp, _ = get(t, app, "/api/reports?sector=finance")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown sector must be rejected, got %d", resp.StatusCode)
	}

	resp, _ = get(t, app, "/api/reports?sector=health&limit=500")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("oversized limit must be rejected, got %d", resp.StatusCode)
	}
}

func TestReportsEndpoint(t *testing.T) {
	app, st := newTestApp(t)

	for i, url := range []string{"https://x/1", "https://x/2"} {
		_, err := st.InsertReport(model.SituationReport{
			Sector: "education", Title: "report", URL: url,
			DatePublished: "2025-06-1" + string(rune('0'+i)),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	resp, body := get(t, app, "/api/reports?sector=education&limit=1")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	var got struct {
		Count   int                     `json:"count"`
		Reports []model.SituationReport `json:"reports"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got.Count != 1 || len(got.Reports) != 1 {
		t.Fatalf("limit not applied: %s", body)
	}
	if got.Reports[0].DatePublished != "2025-06-11" {
		t.Fatalf("reports must be newest first, got %+v", got.Reports[0])
	}
}

func TestLiveEndpointServesCachedChain(t *testing.T) {
	app, st := newTestApp(t)

	if err := st.SeedLocations([]model.Location{
		{CityName: "Aden", Country: "Yemen", Latitude: 12.7794, Longitude: 45.0367},
	}); err != nil {
		t.Fatal(err)
	}

	resp, body := get(t, app, "/api/weather/live")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	var got struct {
		Status   string `json:"status"`
		Provider string `json:"provider"`
		Current  []struct {
			CityName      string  `json:"city_name"`
			Temperature2m float64 `json:"temperature_2m"`
		} `json:"current"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got.Status != "success" || got.Provider != "stub-live" {
		t.Fatalf("unexpected live payload: %s", body)
	}
	if len(got.Current) != 1 || got.Current[0].Temperature2m != 28 {
		t.Fatalf("unexpected live conditions: %s", body)
	}
}
