package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/faizalashwel-dev/Yemen-weather-data/internal/model"
)

type AppConfig struct {
	Port   string
	DBPath string

	// Country scopes every structured-API adapter.
	CountryISO3 string
	CountryName string

	// WeatherInterval controls the batched observation cycle; FamilyInterval
	// controls how often the indicator families are checked for staleness.
	// The staleness gate itself is governed by FreshnessMaxAge.
	WeatherInterval time.Duration
	FamilyInterval  time.Duration

	FreshnessMaxAge time.Duration
	TouchWindow     time.Duration
	ReportRetention time.Duration

	// CacheTTL bounds the live-weather response cache.
	CacheTTL time.Duration

	// HTTPTimeout applies to the shared outbound client; adapters layer
	// their own per-request deadlines on top.
	HTTPTimeout time.Duration

	// Locations to track. Seeded into the store at bootstrap.
	Locations []model.Location
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		Port:        getenvDefault("PORT", "8080"),
		DBPath:      getenvDefault("DB_PATH", "data_platform.db"),
		CountryISO3: getenvDefault("COUNTRY_ISO3", "YEM"),
		CountryName: getenvDefault("COUNTRY_NAME", "Yemen"),
		Locations:   defaultLocations(),
	}

	var err error
	if cfg.WeatherInterval, err = getenvDuration("WEATHER_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.FamilyInterval, err = getenvDuration("FAMILY_INTERVAL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.FreshnessMaxAge, err = getenvDuration("FRESHNESS_MAX_AGE", 720*time.Hour); err != nil {
		return nil, err
	}
	if cfg.TouchWindow, err = getenvDuration("TOUCH_WINDOW", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ReportRetention, err = getenvDuration("REPORT_RETENTION", 8760*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}

	return cfg, nil
}

// defaultLocations is the fixed tracked-city list. Coordinates are static;
// there is no geocoding step.
func defaultLocations() []model.Location {
	return []model.Location{
		{CityName: "Aden", Country: "Yemen", Latitude: 12.7794, Longitude: 45.0367},
		{CityName: "Taiz", Country: "Yemen", Latitude: 13.5795, Longitude: 44.0209},
		{CityName: "Al Hudaydah", Country: "Yemen", Latitude: 14.7978, Longitude: 42.9545},
		{CityName: "Ibb", Country: "Yemen", Latitude: 13.9667, Longitude: 44.1833},
		{CityName: "Mukalla", Country: "Yemen", Latitude: 14.5425, Longitude: 49.1242},
		{CityName: "Dhamar", Country: "Yemen", Latitude: 14.5425, Longitude: 44.4061},
		{CityName: "Amran", Country: "Yemen", Latitude: 15.6594, Longitude: 43.9328},
		{CityName: "Sa'dah", Country: "Yemen", Latitude: 16.9402, Longitude: 43.7638},
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
