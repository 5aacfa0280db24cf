package httpapi

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/faizalashwel-dev/Yemen-weather-data/internal/common"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/model"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/store"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/sync"
)

var validate = validator.New()

// historyWindow bounds the weather endpoint's recent-history series.
const historyWindow = 3 * time.Hour

// Server holds the read-side dependencies. Every handler serves stored rows;
// nothing here triggers a provider fetch except the live endpoint's cache
// refresh.
type Server struct {
	store *store.Store
	live  *sync.LiveService
	log   *zap.Logger
	now   func() time.Time
}

func NewServer(st *store.Store, live *sync.LiveService, log *zap.Logger) *Server {
	return &Server{store: st, live: live, log: log, now: time.Now}
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func (s *Server) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")

	api.Get("/weather", s.handleWeather)
	api.Get("/weather/live", s.handleWeatherLive)
	api.Get("/reports", s.handleReports)

	for _, family := range []model.Family{model.FamilyHealth, model.FamilyEducation, model.FamilyEconomy} {
		family := family
		api.Get("/"+string(family), func(c *fiber.Ctx) error {
			return s.handleFamily(c, family)
		})
	}
}

func (s *Server) handleWeather(c *fiber.Ctx) error {
	current, err := s.store.CurrentWeatherAll()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to read current weather")
	}
	for i := range current {
		current[i].ObservationTime = common.ToISO(current[i].ObservationTime)
	}

	cutoff := common.FormatDBTime(s.now().Add(-historyWindow))
	history, err := s.store.WeatherHistorySince(cutoff)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to read weather history")
	}
	for i := range history {
		history[i].ObservationTime = common.ToISO(history[i].ObservationTime)
	}

	return c.JSON(fiber.Map{
		"status":      "success",
		"current":     current,
		"history":     history,
		"server_time": s.now().UTC().Format("2006-01-02T15:04:05"),
	})
}

func (s *Server) handleWeatherLive(c *fiber.Ctx) error {
	payload, err := s.live.Snapshot(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "live weather unavailable")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(payload)
}

// kpiEntry is one indicator rendered for the dashboard. History is embedded
// verbatim from storage; it is already JSON.
type kpiEntry struct {
	Value   float64         `json:"value"`
	Year    string          `json:"year"`
	History json.RawMessage `json:"history"`
}

func (s *Server) handleFamily(c *fiber.Ctx, family model.Family) error {
	inds, err := s.store.IndicatorsByFamily(family)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to read indicators")
	}

	kpi := make(map[string]kpiEntry, len(inds))
	for _, ind := range inds {
		history := json.RawMessage(ind.HistoryJSON)
		if !json.Valid(history) {
			history = json.RawMessage("[]")
		}
		kpi[ind.IndicatorKey] = kpiEntry{
			Value:   ind.CurrentValue,
			Year:    ind.YearUpdated,
			History: history,
		}
	}

	reports, err := s.store.ReportsBySector(family.Sector(), 20)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to read reports")
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"kpi":    kpi,
		"nrt":    reports,
		"meta":   s.familyMeta(family, len(inds)),
	})
}

func (s *Server) familyMeta(family model.Family, count int) fiber.Map {
	meta := fiber.Map{
		"generated_at": s.now().UTC().Format("2006-01-02T15:04:05"),
		"count":        count,
	}
	latest, err := s.store.LatestIndicatorUpdate(family)
	if err != nil || latest == "" {
		return meta
	}
	meta["last_updated"] = common.ToISO(latest)
	if last, err := common.ParseDBTime(latest); err == nil {
		meta["age_days"] = int(s.now().Sub(last).Hours() / 24)
	}
	return meta
}

// reportsQuery holds query parameters for the reports endpoint.
type reportsQuery struct {
	Sector string `validate:"required,oneof=health education"`
	Limit  int    `validate:"gte=0,lte=100"`
}

func (s *Server) handleReports(c *fiber.Ctx) error {
	q := reportsQuery{
		Sector: c.Query("sector"),
		Limit:  c.QueryInt("limit", 20),
	}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	reports, err := s.store.ReportsBySector(q.Sector, q.Limit)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "no reports for requested sector")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to read reports")
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"sector":  q.Sector,
		"count":   len(reports),
		"reports": reports,
	})
}

// ErrorHandler is the app-wide fiber error handler: every failure surfaces
// as `{status: "error", message}` with the mapped HTTP code.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"status":  "error",
		"message": err.Error(),
	})
}
