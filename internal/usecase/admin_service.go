package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/propstats/internal/platform/logging"
)

const (
	defaultWarmWorkers = 2
	maxWarmPlayers     = 200

	warmStatusSuccess = "success"
	warmStatusFailed  = "failed"
	warmStatusSkipped = "skipped"
)

type RefreshResult struct {
	PlayerID  string    `json:"player_id"`
	Season    string    `json:"season"`
	Records   int       `json:"records"`
	FetchedAt time.Time `json:"fetched_at"`
}

type WarmInput struct {
	PlayerIDs  []string
	Season     string
	MaxWorkers int
	// Force refetches players whose cached log is still fresh.
	Force bool
}

type WarmResult struct {
	Season       string           `json:"season"`
	WorkerCount  int              `json:"worker_count"`
	SuccessCount int              `json:"success_count"`
	FailedCount  int              `json:"failed_count"`
	SkippedCount int              `json:"skipped_count"`
	Players      []WarmPlayerItem `json:"players"`
}

type WarmPlayerItem struct {
	PlayerID   string `json:"player_id"`
	Status     string `json:"status"`
	Records    int    `json:"records"`
	DurationMs int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

type ClearResult struct {
	PlayerID         string `json:"player_id,omitempty"`
	Entries          int    `json:"entries"`
	DirectorySeasons int    `json:"directory_seasons"`
	RankSeasons      int    `json:"rank_seasons"`
}

type CacheStats struct {
	Entries          int            `json:"entries"`
	Records          int            `json:"records"`
	Players          int            `json:"players"`
	RefreshInterval  string         `json:"refresh_interval"`
	DirectorySeasons int            `json:"directory_seasons"`
	RankSeasons      int            `json:"rank_seasons"`
	Upstream         *UpstreamStats `json:"upstream,omitempty"`
}

type AdminServiceConfig struct {
	DefaultSeason string
	WarmWorkers   int
}

// AdminService holds operator actions on the cache.
// warmPool is the part of an ants pool warm-up uses.
type warmPool interface {
	Submit(task func()) error
	Release()
}

func newAntsWarmPool(size int) (warmPool, error) {
	return ants.NewPool(size)
}

type AdminService struct {
	newPool   func(size int) (warmPool, error)
	refresher *RefreshController
	cache     *GameLogCache
	players   *PlayerService
	matchups  *MatchupService
	upstream  UpstreamStatsReporter
	cfg       AdminServiceConfig
	logger    *logging.Logger
}

func NewAdminService(
	refresher *RefreshController,
	cache *GameLogCache,
	players *PlayerService,
	matchups *MatchupService,
	upstream UpstreamStatsReporter,
	cfg AdminServiceConfig,
	logger *logging.Logger,
) *AdminService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.WarmWorkers <= 0 {
		cfg.WarmWorkers = defaultWarmWorkers
	}
	return &AdminService{
		newPool:   newAntsWarmPool,
		refresher: refresher,
		cache:     cache,
		players:   players,
		matchups:  matchups,
		upstream:  upstream,
		cfg:       cfg,
		logger:    logger.Named("admin"),
	}
}

// RefreshPlayer refetches one player's log regardless of age.
func (s *AdminService) RefreshPlayer(ctx context.Context, playerID, season string) (RefreshResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AdminService.RefreshPlayer")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if !playerIDPattern.MatchString(playerID) {
		return RefreshResult{}, fmt.Errorf("%w: player id must be numeric", ErrInvalidInput)
	}
	season, err := NormalizeSeason(season, s.cfg.DefaultSeason)
	if err != nil {
		return RefreshResult{}, err
	}

	entry, err := s.refresher.ForceRefresh(ctx, playerID, season)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("force refresh player=%s: %w", playerID, err)
	}

	return RefreshResult{
		PlayerID:  playerID,
		Season:    season,
		Records:   len(entry.Records),
		FetchedAt: entry.LastFetchedAt,
	}, nil
}

// WarmPlayers refreshes a batch of players on a small worker pool. Every
// fetch still passes the provider's global gate, so extra workers only help
// overlap local work.
func (s *AdminService) WarmPlayers(ctx context.Context, input WarmInput) (WarmResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AdminService.WarmPlayers")
	defer span.End()

	season, err := NormalizeSeason(input.Season, s.cfg.DefaultSeason)
	if err != nil {
		return WarmResult{}, err
	}
	ids := dedupePlayerIDs(input.PlayerIDs)
	if len(ids) == 0 {
		return WarmResult{}, fmt.Errorf("%w: at least one player id is required", ErrInvalidInput)
	}
	if len(ids) > maxWarmPlayers {
		return WarmResult{}, fmt.Errorf("%w: at most %d players per warm-up", ErrInvalidInput, maxWarmPlayers)
	}
	for _, id := range ids {
		if !playerIDPattern.MatchString(id) {
			return WarmResult{}, fmt.Errorf("%w: player id %q must be numeric", ErrInvalidInput, id)
		}
	}

	workerCount := input.MaxWorkers
	if workerCount <= 0 {
		workerCount = s.cfg.WarmWorkers
	}
	workerCount = min(workerCount, len(ids))

	result := WarmResult{
		Season:      season,
		WorkerCount: workerCount,
		Players:     make([]WarmPlayerItem, 0, len(ids)),
	}

	workerPool, err := s.newPool(workerCount)
	if err != nil {
		return WarmResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer workerPool.Release()

	rows := make(chan WarmPlayerItem, len(ids))
	var successCount, failedCount, skippedCount atomic.Int32
	var workers sync.WaitGroup
	for _, id := range ids {
		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()

			row := s.warmOne(ctx, id, season, input.Force)
			switch row.Status {
			case warmStatusSuccess:
				successCount.Add(1)
			case warmStatusSkipped:
				skippedCount.Add(1)
			default:
				failedCount.Add(1)
			}
			rows <- row
		}); err != nil {
			workers.Done()
			// tasks already accepted still use ctx and the cache
			workers.Wait()
			return WarmResult{}, fmt.Errorf("submit warm task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(rows)
	for row := range rows {
		result.Players = append(result.Players, row)
	}
	sort.SliceStable(result.Players, func(i, j int) bool {
		return result.Players[i].PlayerID < result.Players[j].PlayerID
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())
	result.SkippedCount = int(skippedCount.Load())

	s.logger.InfoContext(ctx, "warm-up finished",
		"season", season,
		"players", len(ids),
		"success", result.SuccessCount,
		"failed", result.FailedCount,
		"skipped", result.SkippedCount,
	)
	return result, nil
}

func (s *AdminService) warmOne(ctx context.Context, playerID, season string, force bool) WarmPlayerItem {
	start := time.Now()
	row := WarmPlayerItem{PlayerID: playerID}

	if force {
		entry, err := s.refresher.ForceRefresh(ctx, playerID, season)
		row.DurationMs = time.Since(start).Milliseconds()
		if err != nil {
			row.Status = warmStatusFailed
			row.Message = err.Error()
			return row
		}
		row.Status = warmStatusSuccess
		row.Records = len(entry.Records)
		return row
	}

	fresh, err := s.refresher.EnsureFresh(ctx, playerID, season)
	row.DurationMs = time.Since(start).Milliseconds()
	switch {
	case err != nil:
		row.Status = warmStatusFailed
		row.Message = err.Error()
	case fresh.Stale:
		row.Status = warmStatusFailed
		row.Records = len(fresh.Entry.Records)
		row.Message = fresh.RefreshErr.Error()
	case !fresh.Refreshed:
		row.Status = warmStatusSkipped
		row.Records = len(fresh.Entry.Records)
		row.Message = "cached log is fresh"
	default:
		row.Status = warmStatusSuccess
		row.Records = len(fresh.Entry.Records)
	}
	return row
}

// ClearCache drops cached game logs for one player, or everything when
// playerID is empty. A full clear also drops the cached directory and
// defense ranks.
func (s *AdminService) ClearCache(ctx context.Context, playerID string) (ClearResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AdminService.ClearCache")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID != "" && !playerIDPattern.MatchString(playerID) {
		return ClearResult{}, fmt.Errorf("%w: player id must be numeric", ErrInvalidInput)
	}

	n, err := s.refresher.Clear(ctx, playerID)
	if err != nil {
		return ClearResult{}, err
	}
	result := ClearResult{PlayerID: playerID, Entries: n}
	if playerID == "" {
		if s.players != nil {
			result.DirectorySeasons = s.players.Invalidate(ctx)
		}
		if s.matchups != nil {
			result.RankSeasons = s.matchups.Invalidate(ctx)
		}
	}

	s.logger.InfoContext(ctx, "cache cleared",
		"player_id", playerID,
		"entries", result.Entries,
		"directory_seasons", result.DirectorySeasons,
		"rank_seasons", result.RankSeasons,
	)
	return result, nil
}

func (s *AdminService) CacheStats(ctx context.Context) (CacheStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AdminService.CacheStats")
	defer span.End()

	stats, err := s.cache.Stats(ctx)
	if err != nil {
		return CacheStats{}, err
	}
	out := CacheStats{
		Entries:         stats.Entries,
		Records:         stats.Records,
		Players:         stats.Players,
		RefreshInterval: s.cache.MaxAge().String(),
	}
	if s.players != nil {
		out.DirectorySeasons = s.players.CachedSeasons()
	}
	if s.matchups != nil {
		out.RankSeasons = s.matchups.CachedSeasons()
	}
	if s.upstream != nil {
		upstream := s.upstream.UpstreamStats()
		out.Upstream = &upstream
	}
	return out, nil
}

func dedupePlayerIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
