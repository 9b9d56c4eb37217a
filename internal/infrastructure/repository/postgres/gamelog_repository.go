package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/propstats/internal/domain/gamelog"
	qb "github.com/riskibarqy/propstats/internal/platform/querybuilder"
)

const (
	cacheEntriesTable = "player_cache_entries"
	gameLogsTable     = "player_game_logs"

	// 17 columns per row keeps a full chunk well under the 65535 bind limit.
	gameLogInsertChunk = 500
)

// GameLogRepository persists cached game logs so a restart does not cost a
// full re-fetch. An entry row and its log rows change in one transaction.
type GameLogRepository struct {
	db *sqlx.DB
}

var _ gamelog.Repository = (*GameLogRepository)(nil)

func NewGameLogRepository(db *sqlx.DB) *GameLogRepository {
	return &GameLogRepository{db: db}
}

func (r *GameLogRepository) Get(ctx context.Context, key gamelog.Key) (gamelog.Entry, bool, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return gamelog.Entry{}, false, fmt.Errorf("begin tx get game log: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.Select("player_id", "season", "last_fetched_at", "record_count").
		From(cacheEntriesTable).
		Where(
			qb.Eq("player_id", key.PlayerID),
			qb.Eq("season", key.Season),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return gamelog.Entry{}, false, fmt.Errorf("build get cache entry query: %w", err)
	}

	var row cacheEntryTableModel
	if err := tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return gamelog.Entry{}, false, nil
		}
		return gamelog.Entry{}, false, fmt.Errorf("get cache entry key=%s: %w", key, err)
	}

	query, args, err = qb.Select(gameLogColumns...).
		From(gameLogsTable).
		Where(
			qb.Eq("player_id", key.PlayerID),
			qb.Eq("season", key.Season),
		).
		OrderBy("position").
		ToSQL()
	if err != nil {
		return gamelog.Entry{}, false, fmt.Errorf("build list game logs query: %w", err)
	}

	rows := make([]gameLogTableModel, 0, row.RecordCount)
	if err := tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return gamelog.Entry{}, false, fmt.Errorf("list game logs key=%s: %w", key, err)
	}

	return gamelog.Entry{
		PlayerID:      row.PlayerID,
		Season:        row.Season,
		LastFetchedAt: row.LastFetchedAt.UTC(),
		Records:       recordsFromRows(rows),
	}, true, nil
}

func (r *GameLogRepository) Replace(ctx context.Context, entry gamelog.Entry) (gamelog.Entry, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return gamelog.Entry{}, fmt.Errorf("begin tx replace game log: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// The upsert takes the row lock, so concurrent replaces of one key
	// serialize here and last_fetched_at never moves backwards.
	query, args, err := qb.InsertModel(cacheEntriesTable, cacheEntryTableModel{
		PlayerID:      entry.PlayerID,
		Season:        entry.Season,
		LastFetchedAt: entry.LastFetchedAt.UTC(),
		RecordCount:   len(entry.Records),
	}, `ON CONFLICT (player_id, season)
DO UPDATE SET
    last_fetched_at = GREATEST(player_cache_entries.last_fetched_at, EXCLUDED.last_fetched_at),
    record_count = EXCLUDED.record_count,
    updated_at = NOW()
RETURNING last_fetched_at`)
	if err != nil {
		return gamelog.Entry{}, fmt.Errorf("build upsert cache entry query: %w", err)
	}

	var fetchedAt sql.NullTime
	if err := tx.GetContext(ctx, &fetchedAt, query, args...); err != nil {
		return gamelog.Entry{}, fmt.Errorf("upsert cache entry key=%s: %w", entry.Key(), err)
	}

	deleteQuery, deleteArgs, err := qb.DeleteFrom(gameLogsTable).
		Where(qb.Eq("player_id", entry.PlayerID), qb.Eq("season", entry.Season)).
		ToSQL()
	if err != nil {
		return gamelog.Entry{}, fmt.Errorf("build delete game logs query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return gamelog.Entry{}, fmt.Errorf("delete previous game logs key=%s: %w", entry.Key(), err)
	}

	for _, chunk := range chunkRecords(entry.Records, gameLogInsertChunk) {
		query, args, err := buildInsertGameLogsQuery(entry.Key(), chunk.offset, chunk.records)
		if err != nil {
			return gamelog.Entry{}, err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return gamelog.Entry{}, fmt.Errorf("insert game logs key=%s offset=%d: %w", entry.Key(), chunk.offset, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return gamelog.Entry{}, fmt.Errorf("commit replace game log tx: %w", err)
	}

	out := entry
	out.Records = gamelog.Clone(entry.Records)
	if out.Records == nil {
		out.Records = []gamelog.GameRecord{}
	}
	if fetchedAt.Valid {
		out.LastFetchedAt = fetchedAt.Time.UTC()
	}
	return out, nil
}

func (r *GameLogRepository) DeletePlayer(ctx context.Context, playerID string) (int, error) {
	query, args, err := qb.DeleteFrom(cacheEntriesTable).Where(qb.Eq("player_id", playerID)).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete cache entries query: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete cache entries player=%s: %w", playerID, err)
	}
	return rowsAffected(res)
}

func (r *GameLogRepository) DeleteAll(ctx context.Context) (int, error) {
	query, args, err := qb.DeleteFrom(cacheEntriesTable).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete cache entries query: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete cache entries: %w", err)
	}
	return rowsAffected(res)
}

func (r *GameLogRepository) Stats(ctx context.Context) (gamelog.Stats, error) {
	query, args, err := qb.Select(
		"COUNT(1) AS entries",
		"COALESCE(SUM(record_count), 0) AS records",
		"COUNT(DISTINCT player_id) AS players",
	).From(cacheEntriesTable).ToSQL()
	if err != nil {
		return gamelog.Stats{}, fmt.Errorf("build cache stats query: %w", err)
	}

	var row cacheStatsRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return gamelog.Stats{}, fmt.Errorf("get cache stats: %w", err)
	}
	return gamelog.Stats{Entries: row.Entries, Records: row.Records, Players: row.Players}, nil
}

func buildInsertGameLogsQuery(key gamelog.Key, offset int, records []gamelog.GameRecord) (string, []any, error) {
	rows := make([]gameLogTableModel, len(records))
	for i, record := range records {
		rows[i] = gameLogTableModel{
			PlayerID:        key.PlayerID,
			Season:          key.Season,
			Position:        offset + i,
			GameID:          record.GameID,
			GameDate:        record.Date.UTC(),
			Opponent:        record.Opponent,
			IsHome:          record.IsHome,
			Result:          record.Result,
			Minutes:         record.Minutes,
			Points:          record.Points,
			Rebounds:        record.Rebounds,
			Assists:         record.Assists,
			Threes:          record.Threes,
			ThreesAttempted: record.ThreesAttempted,
			Steals:          record.Steals,
			Blocks:          record.Blocks,
			Turnovers:       record.Turnovers,
		}
	}
	query, args, err := qb.InsertModels(gameLogsTable, rows, "")
	if err != nil {
		return "", nil, fmt.Errorf("build insert game logs query: %w", err)
	}
	return query, args, nil
}

func recordsFromRows(rows []gameLogTableModel) []gamelog.GameRecord {
	out := make([]gamelog.GameRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, gamelog.GameRecord{
			PlayerID:        row.PlayerID,
			GameID:          row.GameID,
			Season:          row.Season,
			Date:            row.GameDate.UTC(),
			Opponent:        row.Opponent,
			IsHome:          row.IsHome,
			Result:          row.Result,
			Minutes:         row.Minutes,
			Points:          row.Points,
			Rebounds:        row.Rebounds,
			Assists:         row.Assists,
			Threes:          row.Threes,
			ThreesAttempted: row.ThreesAttempted,
			Steals:          row.Steals,
			Blocks:          row.Blocks,
			Turnovers:       row.Turnovers,
		})
	}
	return out
}
