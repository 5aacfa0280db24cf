package sync

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/faizalashwel-dev/Yemen-weather-data/internal/common"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/model"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/source"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/store"
)

// Policy holds the freshness and retention windows for one indicator family.
type Policy struct {
	// MaxAge is the freshness window: a family whose newest indicator write
	// is older than this is stale and due for a refresh.
	MaxAge time.Duration

	// TouchWindow is the cleanup horizon relative to a run's start.
	// Indicators not rewritten within it are purged after the run.
	TouchWindow time.Duration

	// ReportRetention bounds how old a sector's situation reports may get.
	ReportRetention time.Duration
}

// DefaultPolicy mirrors the monthly refresh / daily touch / yearly report
// windows every family currently uses.
func DefaultPolicy() Policy {
	return Policy{
		MaxAge:          30 * 24 * time.Hour,
		TouchWindow:     24 * time.Hour,
		ReportRetention: 365 * 24 * time.Hour,
	}
}

// Stage is one provider's fetch-extract-commit step within a refresh cycle.
type Stage struct {
	Name string
	Run  func(ctx context.Context, w *Writer) error
}

// FamilyPipeline owns the refresh lifecycle of one indicator family: the
// staleness gate, the ordered provider stages, and the post-run cleanup.
type FamilyPipeline struct {
	family model.Family
	store  *store.Store
	log    *zap.Logger
	policy Policy
	stages []Stage

	// mu makes the check-then-refresh sequence a critical section; two
	// concurrent callers must not both pass the staleness gate.
	mu  sync.Mutex
	now func() time.Time
}

func NewFamilyPipeline(family model.Family, st *store.Store, log *zap.Logger, policy Policy, stages []Stage) *FamilyPipeline {
	return &FamilyPipeline{
		family: family,
		store:  st,
		log:    log,
		policy: policy,
		stages: stages,
		now:    time.Now,
	}
}

func (p *FamilyPipeline) Family() model.Family { return p.family }

// clock exposes the pipeline's time source to its stages, so tests can pin
// the whole pipeline to a fixed instant.
func (p *FamilyPipeline) clock() time.Time { return p.now() }

// Stale reports whether the family is due for a refresh. An empty family is
// always stale; an unreadable freshness signal defaults to refreshing.
func (p *FamilyPipeline) Stale() bool {
	latest, err := p.store.LatestIndicatorUpdate(p.family)
	if err != nil {
		p.log.Warn("freshness check failed; defaulting to refresh",
			zap.String("family", string(p.family)), zap.Error(err))
		return true
	}
	if latest == "" {
		return true
	}
	last, err := common.ParseDBTime(latest)
	if err != nil {
		p.log.Warn("unparseable freshness timestamp; defaulting to refresh",
			zap.String("family", string(p.family)), zap.String("updated_at", latest))
		return true
	}
	return p.now().Sub(last) > p.policy.MaxAge
}

// RefreshIfStale runs a full refresh when the family is stale, otherwise it
// does nothing. Returns whether a refresh ran.
func (p *FamilyPipeline) RefreshIfStale(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.Stale() {
		p.log.Info("family is fresh; skipping refresh", zap.String("family", string(p.family)))
		return false
	}
	p.refresh(ctx)
	return true
}

// ForceRefresh runs a refresh regardless of freshness.
func (p *FamilyPipeline) ForceRefresh(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refresh(ctx)
}

// refresh runs every configured stage in order. A stage failure is logged
// and the cycle moves on to the next provider; the cleanup pass always runs
// once every source has been attempted.
func (p *FamilyPipeline) refresh(ctx context.Context) {
	start := p.now()
	w := &Writer{
		store:  p.store,
		family: p.family,
		log:    p.log,
		runAt:  common.FormatDBTime(start),
	}

	p.log.Info("starting family refresh",
		zap.String("family", string(p.family)),
		zap.Int("stages", len(p.stages)))

	for _, stage := range p.stages {
		if err := stage.Run(ctx, w); err != nil {
			p.log.Warn("provider stage failed; continuing cycle",
				zap.String("family", string(p.family)),
				zap.String("stage", stage.Name),
				zap.String("kind", source.Kind(err).String()),
				zap.Error(err))
		}
	}

	p.cleanup(start)
}

// cleanup purges indicators the run did not touch and over-age reports.
// Anything not rewritten within the touch window is treated as abandoned,
// including indicators whose provider merely failed this cycle.
func (p *FamilyPipeline) cleanup(start time.Time) {
	indicatorCutoff := common.FormatDBTime(start.Add(-p.policy.TouchWindow))
	removedInd, err := p.store.DeleteIndicatorsBefore(p.family, indicatorCutoff)
	if err != nil {
		p.log.Error("indicator cleanup failed",
			zap.String("family", string(p.family)), zap.Error(err))
	}

	reportCutoff := start.Add(-p.policy.ReportRetention).UTC().Format(common.DateLayout)
	removedRep, err := p.store.DeleteReportsBefore(p.family.Sector(), reportCutoff)
	if err != nil {
		p.log.Error("report cleanup failed",
			zap.String("family", string(p.family)), zap.Error(err))
	}

	p.log.Info("family refresh complete",
		zap.String("family", string(p.family)),
		zap.Int64("stale_indicators_removed", removedInd),
		zap.Int64("old_reports_removed", removedRep))
}
