package app

import (
	"strings"
	"testing"
)

func TestFormatDBQueryForTrace(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "flattens whitespace",
			in:   " SELECT   *\nFROM player_game_logs \t WHERE player_id = $1 ",
			want: "SELECT * FROM player_game_logs WHERE player_id = $1",
		},
		{
			name: "folds multi-row values",
			in:   "INSERT INTO player_game_logs (a, b) VALUES ($1, $2), ($3, $4),\n ($5, $6) ON CONFLICT DO NOTHING",
			want: "INSERT INTO player_game_logs (a, b) VALUES ($1, $2) /* +2 rows */ ON CONFLICT DO NOTHING",
		},
		{
			name: "single row untouched",
			in:   "INSERT INTO player_cache_entries (a) VALUES ($1) RETURNING a",
			want: "INSERT INTO player_cache_entries (a) VALUES ($1) RETURNING a",
		},
		{name: "empty", in: " \n ", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := formatDBQueryForTrace(tc.in); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}

	long := formatDBQueryForTrace("SELECT " + strings.Repeat("player_id, ", 100) + "season FROM player_game_logs")
	if len(long) != maxTracedQueryLength+3 || !strings.HasSuffix(long, "...") {
		t.Fatalf("expected truncated query, got %d bytes", len(long))
	}
}
