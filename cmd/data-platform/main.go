package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	httpapi "github.com/faizalashwel-dev/Yemen-weather-data/internal/api/http"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/config"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/scheduler"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/source"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/store"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/sync"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zlog.Sync()

	// Durable store: migrations and the tracked-city seed run on every start.
	st, err := store.Open(cfg.DBPath, zlog)
	if err != nil {
		zlog.Fatal("failed to open store", zap.Error(err))
	}
	if err := st.SeedLocations(cfg.Locations); err != nil {
		zlog.Fatal("failed to seed locations", zap.Error(err))
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	wb := source.NewWorldBankClient(httpClient, cfg.CountryISO3)
	gho := source.NewGHOClient(httpClient, cfg.CountryISO3)
	rw := source.NewReliefWebClient(httpClient, cfg.CountryName)
	hdx := source.NewHDXClient(httpClient)
	wttr := source.NewWttrClient(httpClient)
	meteo := source.NewOpenMeteoClient(httpClient)

	policy := sync.Policy{
		MaxAge:          cfg.FreshnessMaxAge,
		TouchWindow:     cfg.TouchWindow,
		ReportRetention: cfg.ReportRetention,
	}
	families := []*sync.FamilyPipeline{
		sync.NewHealthPipeline(st, wb, gho, rw, hdx, policy, zlog),
		sync.NewEducationPipeline(st, wb, rw, policy, zlog),
		sync.NewEconomyPipeline(st, rw, policy, zlog),
	}

	weatherSync := sync.NewWeatherSync(st, meteo, zlog)
	live := sync.NewLiveService(st, wttr, meteo, cfg.CacheTTL, zlog)

	sched := scheduler.New(weatherSync, families, cfg.WeatherInterval, cfg.FamilyInterval, zlog)
	if err := sched.Start(); err != nil {
		zlog.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "yemen-data-platform",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "yemen-data-platform",
		})
	})

	srv := httpapi.NewServer(st, live, zlog)
	srv.RegisterRoutes(app)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Error("fiber server stopped", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Error("error during shutdown", zap.Error(err))
	}
}
