package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/propstats/internal/domain/gamelog"
)

// DefaultRefreshInterval is how old a cached game log may get before a read
// triggers a refresh.
const DefaultRefreshInterval = 6 * time.Hour

// CachedLog is a cache hit together with its age.
type CachedLog struct {
	Entry gamelog.Entry
	Age   time.Duration
	Stale bool
}

// GameLogCache applies the freshness policy on top of a game log repository.
type GameLogCache struct {
	repo   gamelog.Repository
	maxAge time.Duration
	now    func() time.Time
}

func NewGameLogCache(repo gamelog.Repository, maxAge time.Duration) *GameLogCache {
	if maxAge <= 0 {
		maxAge = DefaultRefreshInterval
	}
	return &GameLogCache{
		repo:   repo,
		maxAge: maxAge,
		now:    time.Now,
	}
}

func (c *GameLogCache) MaxAge() time.Duration {
	return c.maxAge
}

// Get returns the cached log for (playerID, season). ok is false when the
// key was never cached.
func (c *GameLogCache) Get(ctx context.Context, playerID, season string) (CachedLog, bool, error) {
	entry, ok, err := c.repo.Get(ctx, gamelog.Key{PlayerID: playerID, Season: season})
	if err != nil {
		return CachedLog{}, false, fmt.Errorf("get cached game log: %w", err)
	}
	if !ok {
		return CachedLog{}, false, nil
	}
	age := entry.Age(c.now())
	return CachedLog{
		Entry: entry,
		Age:   age,
		Stale: age > c.maxAge,
	}, true, nil
}

// IsStale is true for absent entries and entries older than the refresh
// interval.
func (c *GameLogCache) IsStale(cached CachedLog, ok bool) bool {
	return !ok || cached.Age > c.maxAge
}

// Replace atomically swaps the cached log for a key. Records are stored most
// recent first; LastFetchedAt never moves backwards.
func (c *GameLogCache) Replace(ctx context.Context, playerID, season string, records []gamelog.GameRecord) (gamelog.Entry, error) {
	sorted := gamelog.Clone(records)
	if sorted == nil {
		sorted = []gamelog.GameRecord{}
	}
	gamelog.SortMostRecentFirst(sorted)

	entry, err := c.repo.Replace(ctx, gamelog.Entry{
		PlayerID:      playerID,
		Season:        season,
		LastFetchedAt: c.now().UTC(),
		Records:       sorted,
	})
	if err != nil {
		return gamelog.Entry{}, fmt.Errorf("replace cached game log: %w", err)
	}
	return entry, nil
}

// Clear drops one player's cached logs across seasons, or everything when
// playerID is empty.
func (c *GameLogCache) Clear(ctx context.Context, playerID string) (int, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		n, err := c.repo.DeleteAll(ctx)
		if err != nil {
			return 0, fmt.Errorf("clear game log cache: %w", err)
		}
		return n, nil
	}
	n, err := c.repo.DeletePlayer(ctx, playerID)
	if err != nil {
		return 0, fmt.Errorf("clear game log cache for player=%s: %w", playerID, err)
	}
	return n, nil
}

func (c *GameLogCache) Stats(ctx context.Context) (gamelog.Stats, error) {
	stats, err := c.repo.Stats(ctx)
	if err != nil {
		return gamelog.Stats{}, fmt.Errorf("game log cache stats: %w", err)
	}
	return stats, nil
}
