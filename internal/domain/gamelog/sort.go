package gamelog

import (
	"slices"
	"strings"
)

// SortMostRecentFirst orders records by date descending. Records sharing a
// date keep their relative order.
func SortMostRecentFirst(records []GameRecord) {
	slices.SortStableFunc(records, func(a, b GameRecord) int {
		return b.Date.Compare(a.Date)
	})
}

// Clone returns an independent copy of records.
func Clone(records []GameRecord) []GameRecord {
	if records == nil {
		return nil
	}
	return slices.Clone(records)
}

// NormalizeTeam upper-cases and trims a team abbreviation.
func NormalizeTeam(team string) string {
	return strings.ToUpper(strings.TrimSpace(team))
}
