package common

import (
	"strings"
	"time"
)

// DBTimeLayout is the space-separated timestamp format used in every storage
// column. Lexicographic order matches chronological order, which the cleanup
// queries rely on.
const DBTimeLayout = "2006-01-02 15:04:05"

// DateLayout is the day-granularity format used for publication dates.
const DateLayout = "2006-01-02"

// HasAny returns true if s contains any of the substrings.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// FormatDBTime renders t in the storage timestamp format (UTC).
func FormatDBTime(t time.Time) string {
	return t.UTC().Format(DBTimeLayout)
}

// ParseDBTime parses a storage timestamp. Day-granularity values are accepted
// too, since publication dates share the same column conventions.
func ParseDBTime(s string) (time.Time, error) {
	if t, err := time.Parse(DBTimeLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// ToISO converts a storage timestamp to its ISO-8601 wire form. Values that do
// not parse are passed through unchanged so a single odd row cannot break a
// whole response.
func ToISO(s string) string {
	t, err := ParseDBTime(s)
	if err != nil {
		return s
	}
	if len(s) == len(DateLayout) {
		return t.Format(DateLayout)
	}
	return t.Format("2006-01-02T15:04:05")
}
