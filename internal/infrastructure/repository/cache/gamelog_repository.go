package cache

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/propstats/internal/domain/gamelog"
	basecache "github.com/riskibarqy/propstats/internal/platform/cache"
)

const keyPrefix = "gamelog:"

type cachedEntry struct {
	value  gamelog.Entry
	exists bool
}

// GameLogRepository is a write-through read cache in front of a slower
// repository. A cached entry is only ever replaced by one with a later or
// equal LastFetchedAt, so a slow read cannot shadow a newer write.
type GameLogRepository struct {
	next  gamelog.Repository
	cache *basecache.Store[cachedEntry]

	mu         sync.Mutex
	generation uint64
}

func NewGameLogRepository(next gamelog.Repository, ttl time.Duration) *GameLogRepository {
	return &GameLogRepository{
		next:  next,
		cache: basecache.NewStore[cachedEntry](ttl),
	}
}

func (r *GameLogRepository) Get(ctx context.Context, key gamelog.Key) (gamelog.Entry, bool, error) {
	cacheKey := entryKey(key)
	if cached, ok := r.cache.Get(ctx, cacheKey); ok {
		return cloneEntry(cached.value), cached.exists, nil
	}

	gen := r.currentGeneration()
	entry, exists, err := r.next.Get(ctx, key)
	if err != nil {
		return gamelog.Entry{}, false, err
	}
	r.remember(ctx, cacheKey, cachedEntry{value: entry, exists: exists}, gen)
	return cloneEntry(entry), exists, nil
}

func (r *GameLogRepository) Replace(ctx context.Context, entry gamelog.Entry) (gamelog.Entry, error) {
	gen := r.currentGeneration()
	stored, err := r.next.Replace(ctx, entry)
	if err != nil {
		return gamelog.Entry{}, err
	}
	key := gamelog.Key{PlayerID: stored.PlayerID, Season: stored.Season}
	r.remember(ctx, entryKey(key), cachedEntry{value: cloneEntry(stored), exists: true}, gen)
	return stored, nil
}

// DeletePlayer invalidates before and after the delete, so a read that
// races the delete cannot keep the removed rows cached.
func (r *GameLogRepository) DeletePlayer(ctx context.Context, playerID string) (int, error) {
	drop := func() { r.cache.DeletePrefix(ctx, keyPrefix+playerID+":") }
	r.invalidate(drop)
	defer r.invalidate(drop)
	return r.next.DeletePlayer(ctx, playerID)
}

func (r *GameLogRepository) DeleteAll(ctx context.Context) (int, error) {
	drop := func() { r.cache.Flush(ctx) }
	r.invalidate(drop)
	defer r.invalidate(drop)
	return r.next.DeleteAll(ctx)
}

func (r *GameLogRepository) Stats(ctx context.Context) (gamelog.Stats, error) {
	return r.next.Stats(ctx)
}

func (r *GameLogRepository) currentGeneration() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

func (r *GameLogRepository) invalidate(drop func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	drop()
}

// remember stores item unless a delete happened since gen was read or the
// cache already holds a fresher entry.
func (r *GameLogRepository) remember(ctx context.Context, key string, item cachedEntry, gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.generation {
		return
	}
	if current, ok := r.cache.Get(ctx, key); ok && current.exists &&
		current.value.LastFetchedAt.After(item.value.LastFetchedAt) {
		return
	}
	r.cache.Set(ctx, key, item)
}

func entryKey(key gamelog.Key) string {
	return keyPrefix + key.String()
}

func cloneEntry(entry gamelog.Entry) gamelog.Entry {
	entry.Records = append([]gamelog.GameRecord(nil), entry.Records...)
	return entry
}
