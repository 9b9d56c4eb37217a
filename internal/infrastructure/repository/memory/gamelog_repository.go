package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/propstats/internal/domain/gamelog"
)

// GameLogRepository keeps cached game logs in process memory. Entries are
// immutable once stored; Replace swaps the pointer for a key, so readers
// never see a partially written log and different keys never contend.
type GameLogRepository struct {
	entries sync.Map // gamelog.Key -> *gamelog.Entry
}

func NewGameLogRepository() *GameLogRepository {
	return &GameLogRepository{}
}

func (r *GameLogRepository) Get(_ context.Context, key gamelog.Key) (gamelog.Entry, bool, error) {
	value, ok := r.entries.Load(key)
	if !ok {
		return gamelog.Entry{}, false, nil
	}
	entry := value.(*gamelog.Entry)
	out := *entry
	out.Records = gamelog.Clone(entry.Records)
	return out, true, nil
}

func (r *GameLogRepository) Replace(_ context.Context, entry gamelog.Entry) (gamelog.Entry, error) {
	key := entry.Key()
	next := entry
	next.Records = gamelog.Clone(entry.Records)
	if next.Records == nil {
		next.Records = []gamelog.GameRecord{}
	}

	for {
		current, loaded := r.entries.Load(key)
		if !loaded {
			if _, raced := r.entries.LoadOrStore(key, &next); !raced {
				return cloneEntry(&next), nil
			}
			continue
		}

		prev := current.(*gamelog.Entry)
		candidate := next
		if prev.LastFetchedAt.After(candidate.LastFetchedAt) {
			candidate.LastFetchedAt = prev.LastFetchedAt
		}
		if r.entries.CompareAndSwap(key, current, &candidate) {
			return cloneEntry(&candidate), nil
		}
	}
}

func (r *GameLogRepository) DeletePlayer(_ context.Context, playerID string) (int, error) {
	removed := 0
	r.entries.Range(func(k, _ any) bool {
		key := k.(gamelog.Key)
		if key.PlayerID == playerID {
			if _, ok := r.entries.LoadAndDelete(key); ok {
				removed++
			}
		}
		return true
	})
	return removed, nil
}

func (r *GameLogRepository) DeleteAll(_ context.Context) (int, error) {
	removed := 0
	r.entries.Range(func(k, _ any) bool {
		if _, ok := r.entries.LoadAndDelete(k); ok {
			removed++
		}
		return true
	})
	return removed, nil
}

func (r *GameLogRepository) Stats(_ context.Context) (gamelog.Stats, error) {
	var stats gamelog.Stats
	players := make(map[string]struct{})
	r.entries.Range(func(_, v any) bool {
		entry := v.(*gamelog.Entry)
		stats.Entries++
		stats.Records += len(entry.Records)
		players[entry.PlayerID] = struct{}{}
		return true
	})
	stats.Players = len(players)
	return stats, nil
}

func cloneEntry(entry *gamelog.Entry) gamelog.Entry {
	out := *entry
	out.Records = gamelog.Clone(entry.Records)
	return out
}
