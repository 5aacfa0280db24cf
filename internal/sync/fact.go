package sync

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/faizalashwel-dev/Yemen-weather-data/internal/model"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/store"
)

// Fact is one validated, typed extraction result ready for the writer.
// Structured sources carry a true History series; text-mined facts carry a
// single Provenance record instead.
type Fact struct {
	Key        string
	Value      float64
	Label      string
	History    []model.HistoryPoint
	Provenance *model.Provenance
}

func (f Fact) historyJSON() string {
	if f.Provenance != nil {
		b, err := json.Marshal([]model.Provenance{*f.Provenance})
		if err != nil {
			return "[]"
		}
		return string(b)
	}
	if len(f.History) == 0 {
		return "[]"
	}
	b, err := json.Marshal(f.History)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// Writer applies one refresh cycle's facts to durable storage. Every
// indicator it touches is stamped with the cycle's start time, which is what
// the touch-or-die cleanup keys on.
type Writer struct {
	store  *store.Store
	family model.Family
	log    *zap.Logger
	runAt  string
}

func (w *Writer) indicator(f Fact) model.Indicator {
	return model.Indicator{
		IndicatorKey: f.Key,
		CurrentValue: f.Value,
		YearUpdated:  f.Label,
		HistoryJSON:  f.historyJSON(),
		UpdatedAt:    w.runAt,
	}
}

// ReplaceFacts commits one provider's facts transactionally: all of them or
// none. A failure here never rolls back facts already committed by an
// earlier provider in the same cycle.
func (w *Writer) ReplaceFacts(facts []Fact) error {
	if len(facts) == 0 {
		return nil
	}
	return w.store.InTx(func(tx *store.Store) error {
		for _, f := range facts {
			if err := tx.ReplaceIndicator(w.family, w.indicator(f)); err != nil {
				return err
			}
		}
		return nil
	})
}

// SeedFacts writes baseline facts with insert-if-absent semantics.
func (w *Writer) SeedFacts(facts []Fact) error {
	inds := make([]model.Indicator, 0, len(facts))
	for _, f := range facts {
		inds = append(inds, w.indicator(f))
	}
	return w.store.SeedIndicators(w.family, inds)
}

// AddReport stores a situation report, deduplicated by URL. Write failures
// are logged per record and never abort the rest of the batch.
func (w *Writer) AddReport(r model.SituationReport) bool {
	inserted, err := w.store.InsertReport(r)
	if err != nil {
		w.log.Warn("report write failed",
			zap.String("sector", r.Sector),
			zap.String("url", r.URL),
			zap.Error(err))
		return false
	}
	return inserted
}
