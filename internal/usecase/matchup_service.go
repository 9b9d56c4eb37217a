package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/propstats/internal/domain/gamelog"
	"github.com/riskibarqy/propstats/internal/platform/cache"
)

const rankCachePrefix = "ranks:"

// MatchupService resolves an opponent's defensive rank from a cached copy of
// the league table.
type MatchupService struct {
	source DefenseRankSource
	cache  *cache.Store[map[string]int]
}

func NewMatchupService(source DefenseRankSource, ttl time.Duration) *MatchupService {
	return &MatchupService{
		source: source,
		cache:  cache.NewStore[map[string]int](ttl),
	}
}

// Rank returns the opponent's defensive rank, or 0 when the team is unknown.
func (s *MatchupService) Rank(ctx context.Context, season, team string) (int, error) {
	team = gamelog.NormalizeTeam(team)
	if team == "" {
		return 0, nil
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.MatchupService.Rank")
	defer span.End()

	ranks, err := s.cache.GetOrLoad(ctx, rankCachePrefix+season, func(ctx context.Context) (map[string]int, error) {
		return s.source.FetchDefenseRanks(ctx, season)
	})
	if err != nil {
		return 0, fmt.Errorf("load defense ranks: %w", err)
	}
	return ranks[team], nil
}

func (s *MatchupService) Invalidate(ctx context.Context) int {
	return s.cache.Flush(ctx)
}

func (s *MatchupService) CachedSeasons() int {
	return s.cache.Len()
}
