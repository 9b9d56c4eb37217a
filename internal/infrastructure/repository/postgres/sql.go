package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/riskibarqy/propstats/internal/domain/gamelog"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func rowsAffected(res sql.Result) (int, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read rows affected: %w", err)
	}
	return int(n), nil
}

type recordChunk struct {
	offset  int
	records []gamelog.GameRecord
}

func chunkRecords(records []gamelog.GameRecord, size int) []recordChunk {
	if size <= 0 {
		size = len(records)
	}
	out := make([]recordChunk, 0, (len(records)+size-1)/max(size, 1))
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		out = append(out, recordChunk{offset: start, records: records[start:end]})
	}
	return out
}
