package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/propstats/internal/domain/player"
	"github.com/riskibarqy/propstats/internal/platform/cache"
)

const (
	defaultSearchLimit = 15
	maxSearchLimit     = 50
	playerCachePrefix  = "players:"
)

// PlayerService answers directory lookups from a cached copy of the
// provider's active player list.
type PlayerService struct {
	directory     player.Directory
	cache         *cache.Store[[]player.Player]
	defaultSeason string
}

func NewPlayerService(directory player.Directory, ttl time.Duration, defaultSeason string) *PlayerService {
	return &PlayerService{
		directory:     directory,
		cache:         cache.NewStore[[]player.Player](ttl),
		defaultSeason: defaultSeason,
	}
}

// Search returns players whose name contains query, ordered by name.
func (s *PlayerService) Search(ctx context.Context, query, season string, limit int) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Search")
	defer span.End()

	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return nil, fmt.Errorf("%w: search query must be at least 2 characters", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	limit = min(limit, maxSearchLimit)

	players, err := s.list(ctx, season)
	if err != nil {
		return nil, err
	}

	out := make([]player.Player, 0, limit)
	for _, p := range players {
		if p.Matches(query) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Get returns one player. ErrPlayerNotFound means the directory loaded but
// does not list the id; any other error means the directory is unavailable.
func (s *PlayerService) Get(ctx context.Context, playerID, season string) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Get")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return player.Player{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	players, err := s.list(ctx, season)
	if err != nil {
		return player.Player{}, err
	}
	if len(players) == 0 {
		return player.Player{}, fmt.Errorf("%w: player directory is empty", ErrDependencyUnavailable)
	}
	for _, p := range players {
		if p.ID == playerID {
			return p, nil
		}
	}
	return player.Player{}, fmt.Errorf("%w: player=%s", ErrPlayerNotFound, playerID)
}

// Invalidate drops the cached directory for every season.
func (s *PlayerService) Invalidate(ctx context.Context) int {
	return s.cache.DeletePrefix(ctx, playerCachePrefix)
}

func (s *PlayerService) CachedSeasons() int {
	return s.cache.Len()
}

func (s *PlayerService) list(ctx context.Context, season string) ([]player.Player, error) {
	season = strings.TrimSpace(season)
	if season == "" {
		season = s.defaultSeason
	}
	players, err := s.cache.GetOrLoad(ctx, playerCachePrefix+season, func(ctx context.Context) ([]player.Player, error) {
		return s.directory.FetchPlayers(ctx, season)
	})
	if err != nil {
		return nil, fmt.Errorf("load player directory: %w", err)
	}
	return players, nil
}
