package store

import (
	"gorm.io/gorm/clause"

	"github.com/faizalashwel-dev/Yemen-weather-data/internal/model"
)

// UpsertCurrentWeather inserts or fully replaces the location's current row.
func (s *Store) UpsertCurrentWeather(cw model.CurrentWeather) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "location_id"}},
		UpdateAll: true,
	}).Create(&cw).Error
}

// AppendWeatherHistory appends an observation unless the (location,
// observation_time) pair already exists. Replays are silently dropped.
func (s *Store) AppendWeatherHistory(h model.WeatherHistory) (bool, error) {
	res := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "location_id"}, {Name: "observation_time"}},
		DoNothing: true,
	}).Create(&h)
	return res.RowsAffected > 0, res.Error
}

// CurrentWeatherRow is the joined read shape for the weather endpoint.
type CurrentWeatherRow struct {
	model.Location
	model.ObservationFields
	ObservationTime string `json:"observation_time"`
}

// CurrentWeatherAll returns one joined row per location, whether or not an
// observation exists yet.
func (s *Store) CurrentWeatherAll() ([]CurrentWeatherRow, error) {
	var rows []CurrentWeatherRow
	err := s.db.Table("locations l").
		Select("l.*, cw.observation_time, cw.temperature, cw.humidity, cw.windspeed, cw.winddirection, " +
			"cw.weathercode, cw.is_day, cw.pressure, cw.uv_index, cw.dew_point, cw.visibility, " +
			"cw.cloud_cover, cw.solar_rad").
		Joins("LEFT JOIN current_weather cw ON l.location_id = cw.location_id").
		Order("l.city_name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// HistoryRow is one point of the recent-history series for the dashboard.
type HistoryRow struct {
	CityName        string  `json:"city_name"`
	Temperature     float64 `json:"temperature"`
	ObservationTime string  `json:"observation_time"`
}

// WeatherHistorySince returns temperature history newer than cutoff, oldest
// first.
func (s *Store) WeatherHistorySince(cutoff string) ([]HistoryRow, error) {
	var rows []HistoryRow
	err := s.db.Table("weather_history wh").
		Select("l.city_name, wh.temperature, wh.observation_time").
		Joins("JOIN locations l ON wh.location_id = l.location_id").
		Where("wh.observation_time > ?", cutoff).
		Order("wh.observation_time ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CurrentObservationCount returns the number of current rows for a location.
// At most one must ever exist.
func (s *Store) CurrentObservationCount(locationID uint) (int64, error) {
	var n int64
	err := s.db.Model(&model.CurrentWeather{}).
		Where("location_id = ?", locationID).
		Count(&n).Error
	return n, err
}
