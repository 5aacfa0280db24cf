package sync

import (
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/faizalashwel-dev/Yemen-weather-data/internal/extract"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/model"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/source"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/store"
)

// Market mining rules. Each key carries its own plausible range: the Aden and
// Sanaa rial trade in different bands, and basket/fuel prices sit orders of
// magnitude apart.
var economyRules = []extract.Rule{
	{
		Key:     "live_yer_aden",
		Pattern: regexp.MustCompile(`(?i)(aden|south).*?(\d{1,2},?\d{3}|\d{2,4}).*?(rial|yer)`),
		NumGroup: 2, Min: 1000, Max: 5000, RecencyYears: 1,
	},
	{
		Key:     "live_yer_sanaa",
		Pattern: regexp.MustCompile(`(?i)(sanaa|north).*?(\d{3}).*?(rial|yer)`),
		NumGroup: 2, Min: 400, Max: 800, RecencyYears: 1,
	},
	{
		Key:     "live_food_basket",
		Pattern: regexp.MustCompile(`(?i)(food basket|meb|expenditure).*?(\d{2,3},?\d{3}).*?(yer|rial)`),
		NumGroup: 2, Min: 50000, Max: 500000, RecencyYears: 1,
	},
	{
		Key:     "live_fuel_petrol",
		Pattern: regexp.MustCompile(`(?i)(petrol|gasoline).*?(\d{1,3},?\d{3}).*?(yer|rial)`),
		NumGroup: 2, Min: 5000, Max: 50000, RecencyYears: 1,
	},
	{
		Key:     "live_fuel_diesel",
		Pattern: regexp.MustCompile(`(?i)(diesel).*?(\d{1,3},?\d{3}).*?(yer|rial)`),
		NumGroup: 2, Min: 5000, Max: 50000, RecencyYears: 1,
	},
}

// economySeeds is the strategic baseline set: market-reality estimates that
// guarantee the dashboard has a complete picture even when mining comes up
// empty. Insert-if-absent, so a freshly mined value always wins.
func economySeeds() []Fact {
	return []Fact{
		{Key: "live_yer_aden", Value: 1848.0, Label: "2025 (Dec Est)", History: []model.HistoryPoint{
			{Year: "2023", Value: 1400}, {Year: "2024", Value: 1600}, {Year: "2025", Value: 1848},
		}},
		{Key: "live_yer_sanaa", Value: 535.0, Label: "2025 (Dec Est)", History: []model.HistoryPoint{
			{Year: "2023", Value: 530}, {Year: "2024", Value: 532}, {Year: "2025", Value: 535},
		}},
		{Key: "gdp_nominal", Value: 21.5, Label: "2025 (IMF Est)"},
		{Key: "inflation_rate", Value: 19.3, Label: "2025 (CPI)"},
		{Key: "live_food_basket", Value: 135000, Label: "2025 (WFP)", History: []model.HistoryPoint{
			{Year: "2024-Q1", Value: 105000}, {Year: "2024-Q3", Value: 118000}, {Year: "2025-Q1", Value: 135000},
		}},
		{Key: "purchasing_power_hist", Value: 42.1, Label: "2025", History: []model.HistoryPoint{
			{Year: "2021", Value: 75.0}, {Year: "2022", Value: 62.5}, {Year: "2023", Value: 51.0},
			{Year: "2024", Value: 46.5}, {Year: "2025", Value: 42.1},
		}},
		{Key: "trade_balance", Value: -11.6, Label: "2025 (Est)", History: []model.HistoryPoint{
			{Year: "2023", Value: -10.3}, {Year: "2024", Value: -11.2}, {Year: "2025", Value: -11.6},
		}},
		{Key: "live_fuel_petrol", Value: 28500, Label: "2025 (Aden)"},
		{Key: "live_fuel_diesel", Value: 30000, Label: "2025 (Aden)"},
		{Key: "fx_reserves", Value: 0.7, Label: "2025 (Est)", History: []model.HistoryPoint{
			{Year: "2023", Value: 1.1}, {Year: "2024", Value: 0.9}, {Year: "2025", Value: 0.7},
		}},
		{Key: "public_debt", Value: 84.2, Label: "2025 (Est)", History: []model.HistoryPoint{
			{Year: "2021", Value: 65.0}, {Year: "2023", Value: 78.5}, {Year: "2025", Value: 84.2},
		}},
		{Key: "unemployment_rate_hist", Value: 18.5, Label: "2025 (Est)", History: []model.HistoryPoint{
			{Year: "2021", Value: 13.5}, {Year: "2022", Value: 14.2}, {Year: "2023", Value: 15.8},
			{Year: "2024", Value: 17.1}, {Year: "2025", Value: 18.5},
		}},
	}
}

// NewEconomyPipeline assembles the economy family: live market intel mined
// from economic and logistics reports, backed by the strategic baseline set.
func NewEconomyPipeline(
	st *store.Store,
	rw *source.ReliefWebClient,
	policy Policy,
	log *zap.Logger,
) *FamilyPipeline {
	p := NewFamilyPipeline(model.FamilyEconomy, st, log, policy, nil)
	p.stages = []Stage{
		feedStage(rw, feedConfig{
			Themes:      []string{"Economy", "Logistics", "Food and Nutrition"},
			SourceLabel: "ReliefWeb (Market Intel)",
			Rules:       economyRules,
			Label: func(m extract.Mined, now time.Time) string {
				return fmt.Sprintf("%d (Live)", now.Year())
			},
		}, p.clock),
		seedStage("baselines", economySeeds()),
	}
	return p
}
