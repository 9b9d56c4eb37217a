package memory

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/propstats/internal/domain/gamelog"
)

func sampleEntry(playerID string, fetchedAt time.Time, games int) gamelog.Entry {
	records := make([]gamelog.GameRecord, games)
	for i := range records {
		records[i] = gamelog.GameRecord{
			PlayerID: playerID,
			GameID:   "g" + strconv.Itoa(i),
			Date:     fetchedAt.AddDate(0, 0, -i),
			Points:   20 + i,
		}
	}
	return gamelog.Entry{PlayerID: playerID, Season: "2025-26", LastFetchedAt: fetchedAt, Records: records}
}

func TestGameLogRepository_ReplaceAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewGameLogRepository()
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	if _, ok, _ := repo.Get(ctx, gamelog.Key{PlayerID: "2544", Season: "2025-26"}); ok {
		t.Fatalf("expected absent entry")
	}

	stored, err := repo.Replace(ctx, sampleEntry("2544", now, 3))
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if len(stored.Records) != 3 {
		t.Fatalf("unexpected stored records: %d", len(stored.Records))
	}

	got, ok, err := repo.Get(ctx, gamelog.Key{PlayerID: "2544", Season: "2025-26"})
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	got.Records[0].Points = 99
	again, _, _ := repo.Get(ctx, gamelog.Key{PlayerID: "2544", Season: "2025-26"})
	if again.Records[0].Points == 99 {
		t.Fatalf("callers must not be able to mutate cached records")
	}
}

func TestGameLogRepository_LastFetchedAtNeverDecreases(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewGameLogRepository()
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	if _, err := repo.Replace(ctx, sampleEntry("2544", now, 2)); err != nil {
		t.Fatalf("replace: %v", err)
	}
	stored, err := repo.Replace(ctx, sampleEntry("2544", now.Add(-time.Hour), 4))
	if err != nil {
		t.Fatalf("replace older: %v", err)
	}
	if !stored.LastFetchedAt.Equal(now) {
		t.Fatalf("LastFetchedAt moved backwards: %s", stored.LastFetchedAt)
	}
	if len(stored.Records) != 4 {
		t.Fatalf("records must still be replaced, got %d", len(stored.Records))
	}
}

func TestGameLogRepository_ConcurrentReplaceIsAtomic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewGameLogRepository()
	key := gamelog.Key{PlayerID: "201939", Season: "2025-26"}
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 1; i <= 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = repo.Replace(ctx, sampleEntry("201939", base.Add(time.Duration(i)*time.Minute), i))
		}()
		go func() {
			defer wg.Done()
			entry, ok, _ := repo.Get(ctx, key)
			if !ok {
				return
			}
			// each writer stores i records for timestamp offset i; a torn read
			// would mix the two
			if len(entry.Records) == 0 {
				t.Errorf("observed empty entry")
			}
		}()
	}
	wg.Wait()

	entry, ok, _ := repo.Get(ctx, key)
	if !ok {
		t.Fatalf("expected entry after concurrent writes")
	}
	if !entry.LastFetchedAt.Equal(base.Add(16 * time.Minute)) {
		t.Fatalf("expected newest timestamp to win, got %s", entry.LastFetchedAt)
	}
}

func TestGameLogRepository_DeleteAndStats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewGameLogRepository()
	now := time.Now().UTC()

	for _, e := range []gamelog.Entry{
		sampleEntry("2544", now, 3),
		{PlayerID: "2544", Season: "2024-25", LastFetchedAt: now, Records: sampleEntry("2544", now, 2).Records},
		sampleEntry("201939", now, 5),
	} {
		if _, err := repo.Replace(ctx, e); err != nil {
			t.Fatalf("replace: %v", err)
		}
	}

	stats, _ := repo.Stats(ctx)
	if stats.Entries != 3 || stats.Records != 10 || stats.Players != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	removed, _ := repo.DeletePlayer(ctx, "2544")
	if removed != 2 {
		t.Fatalf("expected 2 entries removed, got %d", removed)
	}
	removed, _ = repo.DeleteAll(ctx)
	if removed != 1 {
		t.Fatalf("expected 1 entry removed, got %d", removed)
	}
}
