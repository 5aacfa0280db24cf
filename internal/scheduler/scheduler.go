package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/faizalashwel-dev/Yemen-weather-data/internal/sync"
)

// Scheduler drives the two periodic loops: the batched weather cycle and the
// per-family staleness check. The family job runs daily; whether a family
// actually refreshes is decided by its own freshness gate.
type Scheduler struct {
	scheduler *gocron.Scheduler
	weather   *sync.WeatherSync
	families  []*sync.FamilyPipeline
	log       *zap.Logger

	weatherInterval time.Duration
	familyInterval  time.Duration
}

// New creates a new Scheduler.
func New(weather *sync.WeatherSync, families []*sync.FamilyPipeline, weatherInterval, familyInterval time.Duration, log *zap.Logger) *Scheduler {
	return &Scheduler{
		scheduler:       gocron.NewScheduler(time.UTC),
		weather:         weather,
		families:        families,
		log:             log,
		weatherInterval: weatherInterval,
		familyInterval:  familyInterval,
	}
}

// Start schedules both jobs and starts the underlying scheduler. Both jobs
// also fire once immediately so a fresh deployment has data before the first
// tick.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.weatherInterval).StartImmediately().Do(s.runWeather)
	if err != nil {
		return err
	}

	_, err = s.scheduler.Every(s.familyInterval).StartImmediately().Do(s.runFamilies)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) runWeather() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := s.weather.RunCycle(ctx); err != nil {
		s.log.Error("weather sync cycle failed", zap.Error(err))
	}
}

func (s *Scheduler) runFamilies() {
	// Families run sequentially; a single slow provider must not pile up
	// concurrent refreshes of its siblings.
	for _, p := range s.families {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		refreshed := p.RefreshIfStale(ctx)
		cancel()

		s.log.Info("family staleness check complete",
			zap.String("family", string(p.Family())),
			zap.Bool("refreshed", refreshed))
	}
}
