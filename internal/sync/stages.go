package sync

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/faizalashwel-dev/Yemen-weather-data/internal/common"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/extract"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/model"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/source"
)

// codePair binds an indicator key to its provider-side code. Slices keep the
// fetch order deterministic.
type codePair struct {
	Key  string
	Code string
}

// worldBankStage fetches one series per indicator code. A failure for one
// code skips that key and continues with the rest; the stage itself only
// fails if nothing at all could be fetched usefully.
func worldBankStage(wb *source.WorldBankClient, codes []codePair, log *zap.Logger) Stage {
	return Stage{
		Name: "worldbank",
		Run: func(ctx context.Context, w *Writer) error {
			var facts []Fact
			var lastErr error
			for _, pair := range codes {
				series, err := wb.IndicatorSeries(ctx, pair.Code)
				if err != nil {
					log.Warn("indicator series fetch failed; skipping key",
						zap.String("key", pair.Key),
						zap.String("code", pair.Code),
						zap.String("kind", source.Kind(err).String()))
					lastErr = err
					continue
				}
				if len(series) == 0 {
					continue
				}

				fact := Fact{Key: pair.Key, History: extract.NonNullHistory(series)}
				if latest, ok := extract.LatestNonNull(series); ok {
					fact.Value = *latest.Value
					fact.Label = latest.Period
				} else {
					fact.Label = "N/A"
				}
				facts = append(facts, fact)
			}
			if len(facts) == 0 && lastErr != nil {
				return lastErr
			}
			return w.ReplaceFacts(facts)
		},
	}
}

// ghoStage fetches dimensional series, preferring the combined-sexes
// dimension when a year carries several rows.
func ghoStage(gho *source.GHOClient, codes []codePair, log *zap.Logger) Stage {
	return Stage{
		Name: "who-gho",
		Run: func(ctx context.Context, w *Writer) error {
			var facts []Fact
			var lastErr error
			for _, pair := range codes {
				values, err := gho.IndicatorValues(ctx, pair.Code)
				if err != nil {
					log.Warn("gho fetch failed; skipping key",
						zap.String("key", pair.Key),
						zap.String("code", pair.Code),
						zap.String("kind", source.Kind(err).String()))
					lastErr = err
					continue
				}
				points := extract.PreferDimension(values, source.CombinedSexes)
				latest, ok := extract.LatestNonNull(points)
				if !ok {
					continue
				}
				facts = append(facts, Fact{
					Key:     pair.Key,
					Value:   *latest.Value,
					Label:   latest.Period,
					History: extract.NonNullHistory(points),
				})
			}
			if len(facts) == 0 && lastErr != nil {
				return lastErr
			}
			return w.ReplaceFacts(facts)
		},
	}
}

// feedConfig drives one ReliefWeb mining stage.
type feedConfig struct {
	Themes      []string
	SourceLabel string

	// Relevance keywords prefilter broad feeds; empty accepts everything.
	Relevance []string

	Rules []extract.Rule

	// Label computes year_updated for a mined fact; nil uses the item's
	// publication date verbatim.
	Label func(m extract.Mined, now time.Time) string
}

// feedStage stores every feed item as a situation report and runs the mining
// rule table over it.
func feedStage(rw *source.ReliefWebClient, cfg feedConfig, now func() time.Time) Stage {
	return Stage{
		Name: "reliefweb",
		Run: func(ctx context.Context, w *Writer) error {
			items, err := rw.Updates(ctx, cfg.Themes)
			if err != nil {
				return err
			}

			relevant := items[:0:0]
			for _, item := range items {
				if len(cfg.Relevance) > 0 &&
					!common.HasAny(strings.ToLower(item.Title+" "+item.Description), cfg.Relevance...) {
					continue
				}
				relevant = append(relevant, item)

				published := item.Published
				if published.IsZero() {
					published = now()
				}
				w.AddReport(model.SituationReport{
					Sector:        w.family.Sector(),
					Title:         item.Title,
					Source:        cfg.SourceLabel,
					DatePublished: published.UTC().Format(common.DateLayout),
					URL:           item.Link,
				})
			}

			mined := extract.Mine(cfg.Rules, relevant, now())
			facts := make([]Fact, 0, len(mined))
			for _, m := range mined {
				label := m.Date
				if cfg.Label != nil {
					label = cfg.Label(m, now())
				}
				facts = append(facts, Fact{
					Key:        m.Key,
					Value:      m.Value,
					Label:      label,
					Provenance: &model.Provenance{Source: m.Source, Snippet: m.Snippet},
				})
			}
			return w.ReplaceFacts(facts)
		},
	}
}

// hdxStage records catalog activity: the package count as an indicator and
// the newest packages as reports.
func hdxStage(hdx *source.HDXClient, query, countKey string, topReports int) Stage {
	return Stage{
		Name: "hdx",
		Run: func(ctx context.Context, w *Writer) error {
			res, err := hdx.Search(ctx, query, 10)
			if err != nil {
				return err
			}
			if len(res.Packages) == 0 {
				return nil
			}

			label := trimDate(res.Packages[0].MetadataModified)
			if err := w.ReplaceFacts([]Fact{{
				Key:   countKey,
				Value: float64(res.Count),
				Label: label,
			}}); err != nil {
				return err
			}

			for i, pkg := range res.Packages {
				if i >= topReports {
					break
				}
				org := pkg.Organization.Title
				if org == "" {
					org = "Humanitarian Data Exchange"
				}
				w.AddReport(model.SituationReport{
					Sector:        w.family.Sector(),
					Title:         "HDX: " + pkg.Title,
					Source:        org,
					DatePublished: trimDate(pkg.MetadataModified),
					URL:           pkg.DatasetURL(),
				})
			}
			return nil
		},
	}
}

// seedStage writes baseline facts with insert-if-absent semantics, so the
// family always has something to serve on a dry cycle.
func seedStage(name string, facts []Fact) Stage {
	return Stage{
		Name: name,
		Run: func(ctx context.Context, w *Writer) error {
			return w.SeedFacts(facts)
		},
	}
}

// trimDate reduces an ISO timestamp to its date part.
func trimDate(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
