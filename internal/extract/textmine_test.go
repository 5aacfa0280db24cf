package extract

import (
	"regexp"
	"testing"
	"time"
)

var adenRateRule = Rule{
	Key:          "live_yer_aden",
	Pattern:      regexp.MustCompile(`(?i)(aden|south).*?(\d{1,2},?\d{3}|\d{2,4}).*?(rial|yer)`),
	NumGroup:     2,
	Min:          1000,
	Max:          5000,
	RecencyYears: 1,
}

func TestMineAcceptsPlausibleValue(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	items := []Item{{
		Title:     "Market watch",
		Description: "Aden rial trading at 1,850 yer",
		Published: time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC),
	}}

	mined := Mine([]Rule{adenRateRule}, items, now)
	if len(mined) != 1 {
		t.Fatalf("expected 1 mined fact, got %d", len(mined))
	}
	if mined[0].Key != "live_yer_aden" || mined[0].Value != 1850 {
		t.Fatalf("unexpected fact: %+v", mined[0])
	}
	if mined[0].Date != "2025-05-20" {
		t.Fatalf("expected publication date to be preserved, got %s", mined[0].Date)
	}
	if mined[0].Source != "Market watch" {
		t.Fatalf("expected provenance source, got %q", mined[0].Source)
	}
}

func TestMineRejectsOutOfRangeValue(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	items := []Item{{
		Title:       "Market watch",
		Description: "aden street vendors trading at 50 yer",
		Published:   now,
	}}

	if mined := Mine([]Rule{adenRateRule}, items, now); len(mined) != 0 {
		t.Fatalf("expected out-of-range value to be discarded, got %+v", mined)
	}
}

func TestMineRejectsStalePublication(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	items := []Item{{
		Title:     "Old report",
		Description: "Aden rial trading at 1,850 yer",
		Published: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
	}}

	if mined := Mine([]Rule{adenRateRule}, items, now); len(mined) != 0 {
		t.Fatalf("expected stale item to be discarded, got %+v", mined)
	}
}

// A later item overwrites an earlier fact for the same key regardless of
// which publication date is actually newer; only gross year filtering is
// applied.
func TestMineLastWriteWinsByProcessingOrder(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	items := []Item{
		{Title: "First", Description: "Aden rial trading at 1,850 yer", Published: time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)},
		{Title: "Second", Description: "Aden rate hits 2,100 yer", Published: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
	}

	mined := Mine([]Rule{adenRateRule}, items, now)
	if len(mined) != 1 {
		t.Fatalf("expected 1 fact, got %d", len(mined))
	}
	if mined[0].Value != 2100 || mined[0].Source != "Second" {
		t.Fatalf("expected later item to win, got %+v", mined[0])
	}
}

// One education pattern leads with the numeric token, so its configured
// capture group differs from the rest of the table.
func TestMineHonorsPerRuleNumericGroup(t *testing.T) {
	rule := Rule{
		Key:          "live_students_affected",
		Pattern:      regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})*).*?students.*?affected`),
		NumGroup:     1,
		Min:          10,
		Max:          10000000,
		RecencyYears: 2,
	}
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	items := []Item{{
		Title:     "Flooding update",
		Description: "Some 12,400 students were affected by school closures",
		Published: now,
	}}

	mined := Mine([]Rule{rule}, items, now)
	if len(mined) != 1 || mined[0].Value != 12400 {
		t.Fatalf("expected 12400 from group 1, got %+v", mined)
	}
}

func TestMineSnippetTruncated(t *testing.T) {
	rule := Rule{
		Key:          "live_cholera_cases",
		Pattern:      regexp.MustCompile(`(?i)(cholera|awd|acute watery diarrhea).*?(\d{1,3}(?:,\d{3})*).*?cases`),
		NumGroup:     2,
		Min:          100,
		Max:          5000000,
		RecencyYears: 1,
	}
	long := "cholera outbreak continues to spread across several governorates with humanitarian access heavily constrained and 45,000 suspected cases"
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	mined := Mine([]Rule{rule}, []Item{{Title: "Sitrep", Description: long, Published: now}}, now)
	if len(mined) != 1 {
		t.Fatalf("expected a fact, got %d", len(mined))
	}
	if len(mined[0].Snippet) != 103 {
		t.Fatalf("expected 100-char snippet plus ellipsis, got %d chars", len(mined[0].Snippet))
	}
}
