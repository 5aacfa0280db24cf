package store

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/faizalashwel-dev/Yemen-weather-data/internal/model"
)

// ReplaceIndicator fully replaces the row for the indicator's key: value,
// label, history and timestamp. Old and new history are never merged.
func (s *Store) ReplaceIndicator(family model.Family, ind model.Indicator) error {
	return s.db.Table(family.IndicatorTable()).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "indicator_key"}},
			UpdateAll: true,
		}).
		Create(&ind).Error
}

// SeedIndicators inserts baseline rows only where the key does not already
// exist, so a freshly mined value is never clobbered by a seed pass.
func (s *Store) SeedIndicators(family model.Family, inds []model.Indicator) error {
	if len(inds) == 0 {
		return nil
	}
	return s.db.Table(family.IndicatorTable()).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "indicator_key"}},
			DoNothing: true,
		}).
		Create(&inds).Error
}

// LatestIndicatorUpdate returns the newest updated_at in the family, or ""
// when the family is empty. It is the sole freshness signal.
func (s *Store) LatestIndicatorUpdate(family model.Family) (string, error) {
	var latest *string
	err := s.db.Table(family.IndicatorTable()).
		Select("MAX(updated_at)").
		Scan(&latest).Error
	if err != nil {
		return "", err
	}
	if latest == nil {
		return "", nil
	}
	return *latest, nil
}

// DeleteIndicatorsBefore removes rows whose updated_at is older than cutoff.
// Timestamps compare lexicographically in the storage format.
func (s *Store) DeleteIndicatorsBefore(family model.Family, cutoff string) (int64, error) {
	res := s.db.Table(family.IndicatorTable()).
		Where("updated_at < ?", cutoff).
		Delete(&model.Indicator{})
	return res.RowsAffected, res.Error
}

// IndicatorsByFamily returns all indicators in the family keyed for the read
// surface.
func (s *Store) IndicatorsByFamily(family model.Family) ([]model.Indicator, error) {
	var inds []model.Indicator
	err := s.db.Table(family.IndicatorTable()).
		Order("indicator_key ASC").
		Find(&inds).Error
	if err != nil {
		return nil, err
	}
	return inds, nil
}

// Indicator returns a single row by key.
func (s *Store) Indicator(family model.Family, key string) (model.Indicator, error) {
	var ind model.Indicator
	err := s.db.Table(family.IndicatorTable()).
		Where("indicator_key = ?", key).
		First(&ind).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Indicator{}, ErrNotFound
	}
	return ind, err
}

// InsertReport adds a situation report unless its URL is already present.
// Returns whether a row was actually inserted.
func (s *Store) InsertReport(r model.SituationReport) (bool, error) {
	res := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		DoNothing: true,
	}).Create(&r)
	return res.RowsAffected > 0, res.Error
}

// DeleteReportsBefore purges a sector's reports published before cutoff.
func (s *Store) DeleteReportsBefore(sector, cutoff string) (int64, error) {
	res := s.db.Where("sector = ? AND date_published < ?", sector, cutoff).
		Delete(&model.SituationReport{})
	return res.RowsAffected, res.Error
}

// ReportsBySector returns the sector's reports newest first.
func (s *Store) ReportsBySector(sector string, limit int) ([]model.SituationReport, error) {
	var reports []model.SituationReport
	q := s.db.Where("sector = ?", sector).Order("date_published DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}
