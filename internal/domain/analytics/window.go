package analytics

import (
	"slices"

	"github.com/riskibarqy/propstats/internal/domain/gamelog"
)

// Window returns the min(n, len(records)) most recent records, most recent
// first. Records sharing a date keep their input order. The input slice is
// not modified.
func Window(records []gamelog.GameRecord, n int) []gamelog.GameRecord {
	if n <= 0 || len(records) == 0 {
		return []gamelog.GameRecord{}
	}
	sorted := slices.Clone(records)
	gamelog.SortMostRecentFirst(sorted)
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// Split partitions records into home and away games, preserving order.
func Split(records []gamelog.GameRecord) (home, away []gamelog.GameRecord) {
	home = make([]gamelog.GameRecord, 0, len(records))
	away = make([]gamelog.GameRecord, 0, len(records))
	for _, r := range records {
		if r.IsHome {
			home = append(home, r)
		} else {
			away = append(away, r)
		}
	}
	return home, away
}
