package store

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/faizalashwel-dev/Yemen-weather-data/internal/model"
)

// ErrNotFound is returned when a read query matches no rows.
var ErrNotFound = errors.New("not found")

// Store is the sole durable owner of synchronized state. Every read surface
// and every sync pipeline goes through it.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// Open connects to the sqlite database at path and ensures the schema exists.
func Open(path string, log *zap.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// sqlite allows one writer; a single pooled connection also keeps
	// ":memory:" databases from splitting per connection.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	s := &Store{db: db, log: log}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	if err := s.db.AutoMigrate(
		&model.Location{},
		&model.CurrentWeather{},
		&model.WeatherHistory{},
		&model.SituationReport{},
	); err != nil {
		return err
	}
	// One indicator table per family, same shape.
	for _, f := range []model.Family{model.FamilyHealth, model.FamilyEducation, model.FamilyEconomy} {
		if err := s.db.Table(f.IndicatorTable()).AutoMigrate(&model.Indicator{}); err != nil {
			return err
		}
	}
	return nil
}

// InTx runs fn against a transactional view of the store. It backs the
// per-adapter commit semantics: all of a provider's facts or none.
func (s *Store) InTx(fn func(tx *Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, log: s.log})
	})
}

// SeedLocations inserts the bootstrap city list, leaving existing rows alone.
func (s *Store) SeedLocations(locations []model.Location) error {
	for _, loc := range locations {
		err := s.db.Where(model.Location{CityName: loc.CityName}).
			FirstOrCreate(&loc).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// Locations returns every tracked location ordered by city name.
func (s *Store) Locations() ([]model.Location, error) {
	var locs []model.Location
	if err := s.db.Order("city_name ASC").Find(&locs).Error; err != nil {
		return nil, err
	}
	return locs, nil
}
