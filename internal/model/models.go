package model

// Family names a logical indicator namespace. Each family owns its own
// indicator table and its own refresh cadence.
type Family string

const (
	FamilyHealth    Family = "health"
	FamilyEducation Family = "education"
	FamilyEconomy   Family = "economy"
)

// IndicatorTable returns the table holding this family's indicators.
func (f Family) IndicatorTable() string {
	switch f {
	case FamilyEconomy:
		return "economic_indicators"
	case FamilyEducation:
		return "education_indicators"
	default:
		return "health_indicators"
	}
}

// Sector is the value used in situation_reports.sector for this family.
func (f Family) Sector() string {
	return string(f)
}

// Location is a tracked city. Rows are seeded once at bootstrap and never
// deleted in normal operation.
type Location struct {
	LocationID uint    `json:"location_id" gorm:"column:location_id;primaryKey;autoIncrement"`
	CityName   string  `json:"city_name" gorm:"uniqueIndex"`
	Country    string  `json:"country"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

func (Location) TableName() string { return "locations" }

// ObservationFields is the full measured suite shared by the current and
// history weather tables.
type ObservationFields struct {
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	WindSpeed     float64 `json:"windspeed" gorm:"column:windspeed"`
	WindDirection float64 `json:"winddirection" gorm:"column:winddirection"`
	WeatherCode   int     `json:"weathercode" gorm:"column:weathercode"`
	IsDay         int     `json:"is_day"`
	Pressure      float64 `json:"pressure"`
	UVIndex       float64 `json:"uv_index" gorm:"column:uv_index"`
	DewPoint      float64 `json:"dew_point"`
	Visibility    float64 `json:"visibility"`
	CloudCover    float64 `json:"cloud_cover"`
	SolarRad      float64 `json:"solar_rad"`
}

// CurrentWeather holds the latest observation per location. At most one row
// per location; each sync cycle fully replaces it.
type CurrentWeather struct {
	LocationID        uint   `json:"location_id" gorm:"column:location_id;primaryKey"`
	Country           string `json:"country"`
	ObservationTime   string `json:"observation_time"`
	ObservationFields `gorm:"embedded"`
}

func (CurrentWeather) TableName() string { return "current_weather" }

// WeatherHistory is the append-only observation log. Duplicate
// (location, observation_time) pairs are dropped on insert, never updated.
type WeatherHistory struct {
	ID                uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	LocationID        uint   `json:"location_id" gorm:"column:location_id;uniqueIndex:idx_history_loc_time"`
	Country           string `json:"country"`
	ObservationTime   string `json:"observation_time" gorm:"uniqueIndex:idx_history_loc_time"`
	ObservationFields `gorm:"embedded"`
}

func (WeatherHistory) TableName() string { return "weather_history" }

// Indicator is one named statistic with its charting history. The same struct
// backs the health, education and economic tables; the store picks the table
// per family.
type Indicator struct {
	IndicatorKey string  `json:"indicator_key" gorm:"column:indicator_key;primaryKey"`
	CurrentValue float64 `json:"current_value"`
	YearUpdated  string  `json:"year_updated"`
	HistoryJSON  string  `json:"history_json" gorm:"column:history_json"`
	UpdatedAt    string  `json:"updated_at" gorm:"column:updated_at"`
}

// HistoryPoint is one entry of an indicator's charting series.
type HistoryPoint struct {
	Year  string  `json:"year"`
	Value float64 `json:"value"`
}

// Provenance records where a text-mined value came from. Mined indicators
// store a single provenance entry in place of a true series.
type Provenance struct {
	Source  string `json:"source"`
	Snippet string `json:"snippet"`
}

// SituationReport is a narrative item fetched or mined from a feed. The URL
// is the deduplication key.
type SituationReport struct {
	ID            uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Sector        string `json:"sector" gorm:"index"`
	Title         string `json:"title"`
	Source        string `json:"source"`
	DatePublished string `json:"date_published"`
	URL           string `json:"url" gorm:"column:url;uniqueIndex"`
}

func (SituationReport) TableName() string { return "situation_reports" }
