package extract

import (
	"sort"

	"github.com/faizalashwel-dev/Yemen-weather-data/internal/model"
)

// SeriesPoint is one raw period/value pair from a structured source. A nil
// Value marks a period the provider reported without data.
type SeriesPoint struct {
	Period string
	Value  *float64
}

// SortByPeriod orders points chronologically by their verbatim period label.
// Labels compare as strings, which is correct for year and year-quarter forms.
func SortByPeriod(points []SeriesPoint) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Period < points[j].Period
	})
}

// LatestNonNull returns the most recent point carrying a value. The input is
// expected to be chronologically sorted.
func LatestNonNull(points []SeriesPoint) (SeriesPoint, bool) {
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].Value != nil {
			return points[i], true
		}
	}
	return SeriesPoint{}, false
}

// NonNullHistory converts the series into charting history, dropping null
// entries and preserving order and verbatim period labels.
func NonNullHistory(points []SeriesPoint) []model.HistoryPoint {
	history := make([]model.HistoryPoint, 0, len(points))
	for _, p := range points {
		if p.Value == nil {
			continue
		}
		history = append(history, model.HistoryPoint{Year: p.Period, Value: *p.Value})
	}
	return history
}

// DimValue is one row of a dimensional statistics response: a period, the
// sub-dimension it was measured for, and the value.
type DimValue struct {
	Period string
	Dim    string
	Value  *float64
}

// PreferDimension reduces dimensional rows to one point per period. The first
// value seen for a period wins unless a row with the preferred dimension
// (typically the "combined" one) arrives later, in which case it replaces it.
// The result is chronologically sorted.
func PreferDimension(values []DimValue, preferred string) []SeriesPoint {
	sort.SliceStable(values, func(i, j int) bool {
		return values[i].Period < values[j].Period
	})

	var points []SeriesPoint
	index := make(map[string]int)
	for _, v := range values {
		if v.Period == "" || v.Value == nil {
			continue
		}
		if i, seen := index[v.Period]; seen {
			if v.Dim == preferred {
				points[i].Value = v.Value
			}
			continue
		}
		index[v.Period] = len(points)
		points = append(points, SeriesPoint{Period: v.Period, Value: v.Value})
	}
	return points
}
