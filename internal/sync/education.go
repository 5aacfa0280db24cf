package sync

import (
	"regexp"

	"go.uber.org/zap"

	"github.com/faizalashwel-dev/Yemen-weather-data/internal/extract"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/model"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/source"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/store"
)

var educationWorldBankCodes = []codePair{
	{"literacy_rate", "SE.ADT.LITR.ZS"},
	{"primary_enrollment", "SE.PRM.ENRR"},
	{"secondary_enrollment", "SE.SEC.ENRR"},
	{"primary_completion", "SE.PRM.CMPT.ZS"},
	{"government_expenditure_edu", "SE.XPD.TOTL.GD.ZS"},
	{"out_of_school_primary", "SE.PRM.UNER"},
	{"pupil_teacher_ratio", "SE.PRM.ENRL.TC.ZS"},
}

// The education feed is scanned broadly (protection and child-focused themes
// included), so items are prefiltered by these keywords before counting.
var educationRelevance = []string{
	"school", "education", "teacher", "student", "classroom", "university", "curriculum", "literacy",
}

// Education mining rules. Accepted values reach back one extra calendar year
// compared to health, matching how slowly sector-wide counts are republished.
// live_students_affected leads with its numeric token, hence NumGroup 1.
var educationRules = []extract.Rule{
	{
		Key:     "live_out_of_school",
		Pattern: regexp.MustCompile(`(?i)(out of school|no access to education).*?(\d{1,3}(?:,\d{3})*).*?children`),
		NumGroup: 2, Min: 10, Max: 10000000, RecencyYears: 2,
	},
	{
		Key:     "live_schools_damaged",
		Pattern: regexp.MustCompile(`(?i)(damaged|destroyed|affected).*?(\d{1,3}(?:,\d{3})*).*?schools`),
		NumGroup: 2, Min: 10, Max: 10000000, RecencyYears: 2,
	},
	{
		Key:     "live_teachers_unpaid",
		Pattern: regexp.MustCompile(`(?i)(teachers|staff).*?(\d{1,3}(?:,\d{3})*).*?(without salaries|unpaid)`),
		NumGroup: 2, Min: 10, Max: 10000000, RecencyYears: 2,
	},
	{
		Key:     "live_students_affected",
		Pattern: regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})*).*?students.*?affected`),
		NumGroup: 1, Min: 10, Max: 10000000, RecencyYears: 2,
	},
	{
		Key:     "live_closure_flood",
		Pattern: regexp.MustCompile(`(?i)(flood|rain).*?(\d{1,3}(?:,\d{3})*).*?schools`),
		NumGroup: 2, Min: 10, Max: 10000000, RecencyYears: 2,
	},
	{
		Key:     "live_closure_conflict",
		Pattern: regexp.MustCompile(`(?i)(conflict|airstrike|shelling).*?(\d{1,3}(?:,\d{3})*).*?schools`),
		NumGroup: 2, Min: 10, Max: 10000000, RecencyYears: 2,
	},
	{
		Key:     "live_teacher_incentives",
		Pattern: regexp.MustCompile(`(?i)(incentive|stipend).*?(\d{1,3}(?:,\d{3})*).*?teachers`),
		NumGroup: 2, Min: 10, Max: 10000000, RecencyYears: 2,
	},
}

// Sector-wide projections serving as fallbacks when a cycle mines nothing.
var educationSeeds = []Fact{
	{Key: "projected_out_of_school", Value: 4500000, Label: "2025"},
	{Key: "projected_schools_damaged", Value: 2500, Label: "2025"},
	{Key: "projected_teachers_unpaid", Value: 190000, Label: "2025"},
}

// NewEducationPipeline assembles the education family: World Bank strategic
// indicators, a broad-scan ReliefWeb feed with keyword prefiltering and stat
// mining, and projected baselines.
func NewEducationPipeline(
	st *store.Store,
	wb *source.WorldBankClient,
	rw *source.ReliefWebClient,
	policy Policy,
	log *zap.Logger,
) *FamilyPipeline {
	p := NewFamilyPipeline(model.FamilyEducation, st, log, policy, nil)
	p.stages = []Stage{
		worldBankStage(wb, educationWorldBankCodes, log),
		feedStage(rw, feedConfig{
			Themes:      []string{"Education", "Protection", "Children"},
			SourceLabel: "ReliefWeb (Broad Scan)",
			Relevance:   educationRelevance,
			Rules:       educationRules,
		}, p.clock),
		seedStage("projections", educationSeeds),
	}
	return p
}
