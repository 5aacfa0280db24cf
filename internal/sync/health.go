package sync

import (
	"regexp"

	"go.uber.org/zap"

	"github.com/faizalashwel-dev/Yemen-weather-data/internal/extract"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/model"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/source"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/store"
)

// Strategic long-term indicators from the World Bank open data API.
var healthWorldBankCodes = []codePair{
	{"life_expectancy", "SP.DYN.LE00.IN"},
	{"mortality_rate", "SH.DYN.MORT"},
	{"health_expenditure", "SH.XPD.CHEX.GD.ZS"},
	{"measles_immunization", "SH.IMM.MEAS"},
	{"population_total", "SP.POP.TOTL"},
	{"birth_rate", "SP.DYN.CBRT.IN"},
	{"death_rate", "SP.DYN.CDRT.IN"},
	{"hospital_beds", "SH.MED.BEDS.ZS"},
	{"physicians_per_1000", "SH.MED.PHYS.ZS"},
	{"basic_water_access", "SH.H2O.BASW.ZS"},
	{"basic_sanitation_access", "SH.STA.BASS.ZS"},
	{"stunting_prevalence", "SH.STA.STNT.ZS"},
}

// Specialized medical metrics from the WHO Global Health Observatory.
var healthGHOCodes = []codePair{
	{"who_life_expectancy", "WHOSIS_000001"},
	{"who_measles_mcv2", "WHS4_100"},
	{"who_under5_mortality", "MDG_0000000007"},
	{"who_malaria_incidence", "MALARIA_EST_INCIDENCE_1000"},
}

// Case-count mining rules for health field reports. The numeric range keeps
// unrelated numbers (years, percentages, report IDs) out.
var healthRules = []extract.Rule{
	{
		Key:     "live_cholera_cases",
		Pattern: regexp.MustCompile(`(?i)(cholera|awd|acute watery diarrhea).*?(\d{1,3}(?:,\d{3})*).*?cases`),
		NumGroup: 2, Min: 100, Max: 5000000, RecencyYears: 1,
	},
	{
		Key:     "live_malnutrition_cases",
		Pattern: regexp.MustCompile(`(?i)(malnutrition|acute malnutrition|wasting).*?(\d{1,3}(?:,\d{3})*).*?children`),
		NumGroup: 2, Min: 100, Max: 5000000, RecencyYears: 1,
	},
	{
		Key:     "live_dengue_cases",
		Pattern: regexp.MustCompile(`(?i)(dengue).*?(\d{1,3}(?:,\d{3})*).*?cases`),
		NumGroup: 2, Min: 100, Max: 5000000, RecencyYears: 1,
	},
	{
		Key:     "live_measles_cases",
		Pattern: regexp.MustCompile(`(?i)(measles).*?(\d{1,3}(?:,\d{3})*).*?cases`),
		NumGroup: 2, Min: 100, Max: 5000000, RecencyYears: 1,
	},
}

// NewHealthPipeline assembles the health family: World Bank strategic
// indicators, WHO specialized metrics, ReliefWeb field reports with case
// mining, and HDX catalog activity.
func NewHealthPipeline(
	st *store.Store,
	wb *source.WorldBankClient,
	gho *source.GHOClient,
	rw *source.ReliefWebClient,
	hdx *source.HDXClient,
	policy Policy,
	log *zap.Logger,
) *FamilyPipeline {
	p := NewFamilyPipeline(model.FamilyHealth, st, log, policy, nil)
	p.stages = []Stage{
		worldBankStage(wb, healthWorldBankCodes, log),
		ghoStage(gho, healthGHOCodes, log),
		feedStage(rw, feedConfig{
			Themes:      []string{"Health", "Nutrition"},
			SourceLabel: "ReliefWeb (RSS)",
			Rules:       healthRules,
		}, p.clock),
		hdxStage(hdx, "yemen health", "hdx_health_package_count", 3),
	}
	return p
}
