package sync

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/faizalashwel-dev/Yemen-weather-data/internal/model"
	"github.com/faizalashwel-dev/Yemen-weather-data/internal/store"
)

func testStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	return s
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

func writeIndicator(t *testing.T, st *store.Store, family model.Family, key, updatedAt string) {
	t.Helper()
	err := st.ReplaceIndicator(family, model.Indicator{
		IndicatorKey: key,
		CurrentValue: 1,
		YearUpdated:  "2025",
		HistoryJSON:  "[]",
		UpdatedAt:    updatedAt,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestStaleAt35Days(t *testing.T) {
	st := testStore(t)
	p := NewFamilyPipeline(model.FamilyHealth, st, zap.NewNop(), DefaultPolicy(), nil)
	p.now = fixedNow

	writeIndicator(t, st, model.FamilyHealth, "life_expectancy", "2025-05-11 12:00:00") // 35 days old
	if !p.Stale() {
		t.Fatal("expected family to be stale at 35 days")
	}
}

func TestFreshAt10Days(t *testing.T) {
	st := testStore(t)
	p := NewFamilyPipeline(model.FamilyHealth, st, zap.NewNop(), DefaultPolicy(), nil)
	p.now = fixedNow

	writeIndicator(t, st, model.FamilyHealth, "life_expectancy", "2025-06-05 12:00:00") // 10 days old
	if p.Stale() {
		t.Fatal("expected family to be fresh at 10 days")
	}
}

func TestEmptyFamilyIsStale(t *testing.T) {
	st := testStore(t)
	p := NewFamilyPipeline(model.FamilyHealth, st, zap.NewNop(), DefaultPolicy(), nil)
	if !p.Stale() {
		t.Fatal("expected empty family to be stale")
	}
}

func TestRefreshIfStaleSkipsFreshFamily(t *testing.T) {
	st := testStore(t)
	ran := false
	stages := []Stage{{Name: "probe", Run: func(ctx context.Context, w *Writer) error {
		ran = true
		return nil
	}}}
	p := NewFamilyPipeline(model.FamilyHealth, st, zap.NewNop(), DefaultPolicy(), stages)
	p.now = fixedNow

	writeIndicator(t, st, model.FamilyHealth, "life_expectancy", "2025-06-14 12:00:00")
	if p.RefreshIfStale(context.Background()) {
		t.Fatal("expected refresh to be skipped")
	}
	if ran {
		t.Fatal("stage must not run for a fresh family")
	}
}

// Touch-or-die: after a cycle where provider A succeeds and provider B fails,
// cleanup deletes B's previously written indicators. This is intentional data
// loss on a partial-outage day: the indicator was valid a day earlier and is
// purged anyway. The behavior is preserved deliberately; see DESIGN.md.
func TestCleanupPurgesIndicatorsFromFailedProvider(t *testing.T) {
	st := testStore(t)

	// Provider B's indicator from an earlier run, two days before this one.
	writeIndicator(t, st, model.FamilyHealth, "from_provider_b", "2025-06-13 12:00:00")

	stages := []Stage{
		{Name: "provider-a", Run: func(ctx context.Context, w *Writer) error {
			return w.ReplaceFacts([]Fact{{Key: "from_provider_a", Value: 42, Label: "2025"}})
		}},
		{Name: "provider-b", Run: func(ctx context.Context, w *Writer) error {
			return errors.New("provider down")
		}},
	}
	p := NewFamilyPipeline(model.FamilyHealth, st, zap.NewNop(), DefaultPolicy(), stages)
	p.now = fixedNow

	p.ForceRefresh(context.Background())

	if _, err := st.Indicator(model.FamilyHealth, "from_provider_a"); err != nil {
		t.Fatalf("provider A's indicator should survive: %v", err)
	}
	if _, err := st.Indicator(model.FamilyHealth, "from_provider_b"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("provider B's untouched indicator should be purged, got %v", err)
	}
}

func TestStageFailureDoesNotAbortCycle(t *testing.T) {
	st := testStore(t)
	var order []string
	stages := []Stage{
		{Name: "first", Run: func(ctx context.Context, w *Writer) error {
			order = append(order, "first")
			return errors.New("boom")
		}},
		{Name: "second", Run: func(ctx context.Context, w *Writer) error {
			order = append(order, "second")
			return w.ReplaceFacts([]Fact{{Key: "second_key", Value: 1, Label: "2025"}})
		}},
	}
	p := NewFamilyPipeline(model.FamilyHealth, st, zap.NewNop(), DefaultPolicy(), stages)
	p.now = fixedNow

	p.ForceRefresh(context.Background())

	if len(order) != 2 {
		t.Fatalf("every configured source must be attempted, got %v", order)
	}
	if _, err := st.Indicator(model.FamilyHealth, "second_key"); err != nil {
		t.Fatalf("later provider's facts should be committed: %v", err)
	}
}

func TestCleanupPurgesOldReports(t *testing.T) {
	st := testStore(t)
	old := model.SituationReport{Sector: "health", Title: "ancient", URL: "https://x/old", DatePublished: "2024-01-01"}
	recent := model.SituationReport{Sector: "health", Title: "recent", URL: "https://x/new", DatePublished: "2025-06-01"}
	for _, r := range []model.SituationReport{old, recent} {
		if _, err := st.InsertReport(r); err != nil {
			t.Fatal(err)
		}
	}

	p := NewFamilyPipeline(model.FamilyHealth, st, zap.NewNop(), DefaultPolicy(), nil)
	p.now = fixedNow
	p.ForceRefresh(context.Background())

	reports, err := st.ReportsBySector("health", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 1 || reports[0].Title != "recent" {
		t.Fatalf("expected only the recent report to survive, got %+v", reports)
	}
}

func TestHistoryJSONRoundTrip(t *testing.T) {
	st := testStore(t)
	w := &Writer{store: st, family: model.FamilyEconomy, log: zap.NewNop(), runAt: "2025-06-15 12:00:00"}

	history := []model.HistoryPoint{
		{Year: "2024-Q1", Value: 105000},
		{Year: "2024-Q3", Value: 118000},
		{Year: "2025-Q1", Value: 135000},
	}
	err := w.ReplaceFacts([]Fact{{Key: "live_food_basket", Value: 135000, Label: "2025 (WFP)", History: history}})
	if err != nil {
		t.Fatal(err)
	}

	ind, err := st.Indicator(model.FamilyEconomy, "live_food_basket")
	if err != nil {
		t.Fatal(err)
	}

	var decoded []model.HistoryPoint
	if err := json.Unmarshal([]byte(ind.HistoryJSON), &decoded); err != nil {
		t.Fatalf("history_json does not decode: %v", err)
	}
	if len(decoded) != len(history) {
		t.Fatalf("expected %d points, got %d", len(history), len(decoded))
	}
	for i := range history {
		if decoded[i] != history[i] {
			t.Fatalf("point %d mismatch: %+v != %+v", i, decoded[i], history[i])
		}
	}
}

func TestMinedFactStoresProvenance(t *testing.T) {
	st := testStore(t)
	w := &Writer{store: st, family: model.FamilyHealth, log: zap.NewNop(), runAt: "2025-06-15 12:00:00"}

	prov := &model.Provenance{Source: "Cholera sitrep", Snippet: "cholera cases reached 45,000..."}
	err := w.ReplaceFacts([]Fact{{Key: "live_cholera_cases", Value: 45000, Label: "2025-06-01", Provenance: prov}})
	if err != nil {
		t.Fatal(err)
	}

	ind, err := st.Indicator(model.FamilyHealth, "live_cholera_cases")
	if err != nil {
		t.Fatal(err)
	}

	var decoded []model.Provenance
	if err := json.Unmarshal([]byte(ind.HistoryJSON), &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 1 || decoded[0] != *prov {
		t.Fatalf("expected a single provenance record, got %+v", decoded)
	}
}
