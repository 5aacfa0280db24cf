package sync

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/faizalashwel-dev/Yemen-weather-data/internal/cache"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/model"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/source"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/store"
)

// NameProvider fetches conditions for a single location by its display name.
type NameProvider interface {
	Name() string
	Current(ctx context.Context, city string) (*source.CurrentConditions, error)
}

// LiveService serves on-demand conditions through a TTL cache slot, running
// the full fetch-with-fallback chain on a miss: the free-text provider per
// city, then the batched gridded provider, then simulated values. A chain
// failure leaves the previous payload in the slot.
type LiveService struct {
	store   *store.Store
	byName  NameProvider
	batched BatchProvider
	slot    *cache.Slot
	log     *zap.Logger
	now     func() time.Time
}

func NewLiveService(st *store.Store, byName NameProvider, batched BatchProvider, ttl time.Duration, log *zap.Logger) *LiveService {
	return &LiveService{
		store:   st,
		byName:  byName,
		batched: batched,
		slot:    cache.NewSlot(ttl),
		log:     log,
		now:     time.Now,
	}
}

type liveConditions struct {
	CityName string `json:"city_name"`
	source.CurrentConditions
}

type livePayload struct {
	Status    string           `json:"status"`
	Provider  string           `json:"provider"`
	Current   []liveConditions `json:"current"`
	FetchedAt string           `json:"fetched_at"`
}

// Snapshot returns the cached live payload, refreshing it when the TTL has
// lapsed.
func (s *LiveService) Snapshot(ctx context.Context) ([]byte, error) {
	return s.slot.Get(func() ([]byte, error) {
		return s.fetch(ctx)
	})
}

func (s *LiveService) fetch(ctx context.Context) ([]byte, error) {
	locs, err := s.store.Locations()
	if err != nil {
		return nil, err
	}

	conditions, provider := s.chain(ctx, locs)

	current := make([]liveConditions, len(locs))
	for i, loc := range locs {
		current[i] = liveConditions{CityName: loc.CityName, CurrentConditions: conditions[i]}
	}

	return json.Marshal(livePayload{
		Status:    "success",
		Provider:  provider,
		Current:   current,
		FetchedAt: s.now().UTC().Format("2006-01-02T15:04:05"),
	})
}

// chain walks the fallback order and always produces a full set of
// conditions; simulated data is the terminal fallback and is reported only
// through the provider label and the log.
func (s *LiveService) chain(ctx context.Context, locs []model.Location) ([]source.CurrentConditions, string) {
	byName, err := s.fetchByName(ctx, locs)
	if err == nil {
		return byName, s.byName.Name()
	}
	s.log.Warn("name-keyed provider failed; falling back to batched provider",
		zap.String("provider", s.byName.Name()),
		zap.String("kind", source.Kind(err).String()))

	lats := make([]float64, len(locs))
	lons := make([]float64, len(locs))
	for i, loc := range locs {
		lats[i] = loc.Latitude
		lons[i] = loc.Longitude
	}
	batched, err := s.batched.CurrentBatch(ctx, lats, lons)
	if err == nil {
		return batched, s.batched.Name()
	}
	s.log.Warn("batched provider failed; serving simulated conditions",
		zap.String("provider", s.batched.Name()),
		zap.String("kind", source.Kind(err).String()))

	return SimulatedConditions(len(locs)), "simulated"
}

func (s *LiveService) fetchByName(ctx context.Context, locs []model.Location) ([]source.CurrentConditions, error) {
	out := make([]source.CurrentConditions, len(locs))
	for i, loc := range locs {
		cc, err := s.byName.Current(ctx, loc.CityName)
		if err != nil {
			return nil, err
		}
		out[i] = *cc
	}
	return out, nil
}
