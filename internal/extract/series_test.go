package extract

import (
	"testing"
)

func fp(v float64) *float64 { return &v }

func TestLatestNonNullSkipsTrailingNulls(t *testing.T) {
	points := []SeriesPoint{
		{Period: "2019", Value: fp(61.1)},
		{Period: "2021", Value: fp(63.7)},
		{Period: "2022", Value: nil},
		{Period: "2023", Value: nil},
	}

	latest, ok := LatestNonNull(points)
	if !ok {
		t.Fatal("expected a latest value")
	}
	if latest.Period != "2021" || *latest.Value != 63.7 {
		t.Fatalf("unexpected latest point: %+v", latest)
	}
}

func TestLatestNonNullAllNull(t *testing.T) {
	points := []SeriesPoint{{Period: "2020"}, {Period: "2021"}}
	if _, ok := LatestNonNull(points); ok {
		t.Fatal("expected no latest value for all-null series")
	}
}

func TestNonNullHistoryPreservesOrderAndLabels(t *testing.T) {
	points := []SeriesPoint{
		{Period: "2020", Value: nil},
		{Period: "2021", Value: fp(1.5)},
		{Period: "2024-Q1", Value: fp(2.25)},
	}

	history := NonNullHistory(points)
	if len(history) != 2 {
		t.Fatalf("expected 2 history points, got %d", len(history))
	}
	if history[0].Year != "2021" || history[1].Year != "2024-Q1" {
		t.Fatalf("labels not preserved verbatim: %+v", history)
	}
}

func TestSortByPeriod(t *testing.T) {
	points := []SeriesPoint{
		{Period: "2023", Value: fp(3)},
		{Period: "2019", Value: fp(1)},
		{Period: "2021", Value: fp(2)},
	}
	SortByPeriod(points)
	if points[0].Period != "2019" || points[2].Period != "2023" {
		t.Fatalf("series not sorted: %+v", points)
	}
}

func TestPreferDimensionPrefersCombined(t *testing.T) {
	values := []DimValue{
		{Period: "2020", Dim: "MLE", Value: fp(58.0)},
		{Period: "2020", Dim: "BTSX", Value: fp(60.5)},
		{Period: "2021", Dim: "FMLE", Value: fp(64.0)},
	}

	points := PreferDimension(values, "BTSX")
	if len(points) != 2 {
		t.Fatalf("expected one point per period, got %d", len(points))
	}
	if *points[0].Value != 60.5 {
		t.Fatalf("expected combined dimension to win for 2020, got %v", *points[0].Value)
	}
	// Any value is acceptable when the combined dimension is absent.
	if *points[1].Value != 64.0 {
		t.Fatalf("expected fallback value for 2021, got %v", *points[1].Value)
	}
}
