package postgres

import (
	"time"

	qb "github.com/riskibarqy/propstats/internal/platform/querybuilder"
)

type cacheEntryTableModel struct {
	PlayerID      string    `db:"player_id"`
	Season        string    `db:"season"`
	LastFetchedAt time.Time `db:"last_fetched_at"`
	RecordCount   int       `db:"record_count"`
}

type gameLogTableModel struct {
	PlayerID        string    `db:"player_id"`
	Season          string    `db:"season"`
	Position        int       `db:"position"`
	GameID          string    `db:"game_id"`
	GameDate        time.Time `db:"game_date"`
	Opponent        string    `db:"opponent"`
	IsHome          bool      `db:"is_home"`
	Result          string    `db:"result"`
	Minutes         float64   `db:"minutes"`
	Points          int       `db:"points"`
	Rebounds        int       `db:"rebounds"`
	Assists         int       `db:"assists"`
	Threes          int       `db:"threes"`
	ThreesAttempted int       `db:"threes_attempted"`
	Steals          int       `db:"steals"`
	Blocks          int       `db:"blocks"`
	Turnovers       int       `db:"turnovers"`
}

type cacheStatsRow struct {
	Entries int `db:"entries"`
	Records int `db:"records"`
	Players int `db:"players"`
}

// gameLogColumns follows the field order of gameLogTableModel.
var gameLogColumns = func() []string {
	cols, err := qb.ModelColumns(gameLogTableModel{})
	if err != nil {
		panic(err)
	}
	return cols
}()
