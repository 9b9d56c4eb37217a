package nbastats

import (
	"testing"
	"time"
)

func TestParseMatchup(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw      string
		opponent string
		home     bool
	}{
		{raw: "LAL vs. BOS", opponent: "BOS", home: true},
		{raw: "LAL @ DEN", opponent: "DEN", home: false},
		{raw: "lal vs. gsw", opponent: "GSW", home: true},
		{raw: "", opponent: "", home: false},
	}
	for _, tc := range cases {
		opponent, home := parseMatchup(tc.raw)
		if opponent != tc.opponent || home != tc.home {
			t.Fatalf("parseMatchup(%q)=(%q,%v), want (%q,%v)", tc.raw, opponent, home, tc.opponent, tc.home)
		}
	}
}

func TestParseMinutes(t *testing.T) {
	t.Parallel()

	cases := map[any]float64{
		"34:30": 34.5,
		"36":    36,
		36.0:    36,
		"DNP":   0,
		"x:30":  0,
	}
	for raw, want := range cases {
		if got := parseMinutes(raw); got != want {
			t.Fatalf("parseMinutes(%v)=%v, want %v", raw, got, want)
		}
	}
	if got := parseMinutes(nil); got != 0 {
		t.Fatalf("nil minutes should be 0, got %v", got)
	}
}

func TestParseGameDate(t *testing.T) {
	t.Parallel()

	want := time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)
	for _, raw := range []string{"JAN 02, 2026", "Jan 02, 2026", "2026-01-02T00:00:00", "2026-01-02"} {
		if got := parseGameDate(raw); !got.Equal(want) {
			t.Fatalf("parseGameDate(%q)=%s", raw, got)
		}
	}
	if !parseGameDate("yesterday").IsZero() {
		t.Fatalf("expected zero time for unknown layout")
	}
}

func TestEnvelopeTable_FallsBackToSingleSet(t *testing.T) {
	t.Parallel()

	env := envelope{ResultSet: &resultSet{Name: "Other", Headers: []string{"pts"}, RowSet: [][]any{{12.0}}}}
	tbl, ok := env.table("PlayerGameLog")
	if !ok {
		t.Fatalf("expected table")
	}
	if got := tbl.intAt(tbl.rows[0], "PTS"); got != 12 {
		t.Fatalf("expected case-insensitive header lookup, got %d", got)
	}
	if missing := tbl.missing("PTS", "REB"); len(missing) != 1 || missing[0] != "REB" {
		t.Fatalf("unexpected missing columns %v", missing)
	}
	if _, ok := (envelope{}).table("x"); ok {
		t.Fatalf("empty envelope must not yield a table")
	}
}

func TestRankByRating_TiesUseAbbreviation(t *testing.T) {
	t.Parallel()

	ranks := rankByRating([]teamRating{{abbr: "NYK", rating: 110}, {abbr: "BOS", rating: 110}, {abbr: "ATL", rating: 115}})
	if ranks["BOS"] != 1 || ranks["NYK"] != 2 || ranks["ATL"] != 3 {
		t.Fatalf("unexpected ranks %v", ranks)
	}
}
