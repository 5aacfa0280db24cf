package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Rule is one entry of the declarative mining table: a named pattern, the
// capture group holding the numeric token, the plausible value range, and how
// far back a source item's publication year may lie.
type Rule struct {
	Key     string
	Pattern *regexp.Regexp

	// NumGroup is the capture group containing the numeric token. Most
	// patterns put the keyword in group 1 and the number in group 2, but at
	// least one education pattern leads with the number.
	NumGroup int

	// Accepted values must satisfy Min < v < Max. This is the primary
	// defense against unrelated numbers in the text.
	Min, Max float64

	// RecencyYears is how many calendar years back an item may have been
	// published. 1 accepts the current and prior year.
	RecencyYears int
}

// Item is a single feed entry to mine. Title and Description are concatenated
// before matching.
type Item struct {
	Title       string
	Description string
	Link        string
	Published   time.Time
}

// Mined is one accepted fact: the rule key, the parsed value, the item's
// publication date and the provenance of the match.
type Mined struct {
	Key     string
	Value   float64
	Date    string // YYYY-MM-DD
	Source  string
	Snippet string
}

// Mine runs the rule table over the items in order. Per item, only the first
// match of each rule is considered; out-of-range values and items published
// outside the rule's recency window are discarded silently. A later item
// matching the same key overwrites the earlier fact (last-write-wins by
// processing order). Results come back in rule-table order.
func Mine(rules []Rule, items []Item, now time.Time) []Mined {
	found := make(map[string]Mined)

	for _, item := range items {
		text := item.Title + " " + item.Description
		date := item.Published
		if date.IsZero() {
			date = now
		}

		for _, r := range rules {
			m := r.Pattern.FindStringSubmatch(text)
			if m == nil || r.NumGroup >= len(m) {
				continue
			}
			val, err := parseNumber(m[r.NumGroup])
			if err != nil {
				continue
			}
			if !(val > r.Min && val < r.Max) {
				continue
			}
			if date.Year() < now.Year()-r.RecencyYears {
				continue
			}
			found[r.Key] = Mined{
				Key:     r.Key,
				Value:   val,
				Date:    date.Format("2006-01-02"),
				Source:  item.Title,
				Snippet: snippet(m[0]),
			}
		}
	}

	mined := make([]Mined, 0, len(found))
	for _, r := range rules {
		if f, ok := found[r.Key]; ok {
			mined = append(mined, f)
			delete(found, r.Key)
		}
	}
	return mined
}

// parseNumber parses a numeric token, stripping thousands separators.
func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

func snippet(match string) string {
	if len(match) > 100 {
		match = match[:100]
	}
	return match + "..."
}
