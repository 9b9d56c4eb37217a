package querybuilder

import (
	"strings"
	"testing"
	"time"
)

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("player_id", "last_fetched_at").
		From("player_cache_entries").
		Where(Eq("player_id", "2544"), Eq("season", "2025-26")).
		OrderBy("position").
		Limit(1).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT player_id, last_fetched_at FROM player_cache_entries WHERE player_id = $1 AND season = $2 ORDER BY position LIMIT 1"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "2544" || args[1] != "2025-26" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_RequiresColumnsAndTable(t *testing.T) {
	if _, _, err := Select().From("t").ToSQL(); err == nil {
		t.Fatalf("expected error without columns")
	}
	if _, _, err := Select("a").ToSQL(); err == nil {
		t.Fatalf("expected error without table")
	}
}

func TestInsertBuilder_MultiRow(t *testing.T) {
	b := InsertInto("player_game_logs").Columns("player_id", "game_id")
	b.Values("2544", "g1")
	b.Values("2544", "g2")
	query, args, err := b.Suffix("ON CONFLICT DO NOTHING").ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO player_game_logs (player_id, game_id) VALUES ($1, $2), ($3, $4) ON CONFLICT DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[3] != "g2" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder_RowWidthMismatch(t *testing.T) {
	_, _, err := InsertInto("t").Columns("a", "b").Values(1).ToSQL()
	if err == nil || !strings.Contains(err.Error(), "expected 2") {
		t.Fatalf("expected row width error, got %v", err)
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("player_cache_entries").Where(Eq("player_id", "2544")).ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}
	if query != "DELETE FROM player_cache_entries WHERE player_id = $1" || len(args) != 1 {
		t.Fatalf("unexpected delete: %s %+v", query, args)
	}

	query, args, err = DeleteFrom("player_cache_entries").ToSQL()
	if err != nil || query != "DELETE FROM player_cache_entries" || len(args) != 0 {
		t.Fatalf("unexpected unconditional delete: %s %+v %v", query, args, err)
	}
}

func TestInsertModel(t *testing.T) {
	type row struct {
		PlayerID  string    `db:"player_id"`
		FetchedAt time.Time `db:"last_fetched_at"`
		Ignored   string    `db:"-"`
		internal  string
	}
	fetched := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	query, args, err := InsertModel("player_cache_entries", &row{PlayerID: "2544", FetchedAt: fetched, internal: "x"}, "RETURNING last_fetched_at")
	if err != nil {
		t.Fatalf("insert model: %v", err)
	}
	want := "INSERT INTO player_cache_entries (player_id, last_fetched_at) VALUES ($1, $2) RETURNING last_fetched_at"
	if query != want || len(args) != 2 || args[1] != fetched {
		t.Fatalf("unexpected insert model: %s %+v", query, args)
	}

	if _, _, err := InsertModel("t", (*row)(nil), ""); err == nil {
		t.Fatalf("expected nil model error")
	}
	if _, _, err := InsertModel("t", 42, ""); err == nil {
		t.Fatalf("expected non-struct error")
	}
}
