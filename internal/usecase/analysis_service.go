package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/propstats/internal/domain/analytics"
	"github.com/riskibarqy/propstats/internal/domain/gamelog"
	"github.com/riskibarqy/propstats/internal/domain/player"
	"github.com/riskibarqy/propstats/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

const defaultBoardConcurrency = 4

var (
	seasonPattern   = regexp.MustCompile(`^\d{4}-\d{2}$`)
	playerIDPattern = regexp.MustCompile(`^\d{1,12}$`)
)

type AnalysisRequest struct {
	PlayerID string
	Stat     analytics.StatType
	Line     float64
	Season   string
	Opponent string
}

type AnalysisResult struct {
	Player    player.Player
	Season    string
	Opponent  string
	Report    analytics.Report
	FetchedAt time.Time
	DataAge   time.Duration
	// Stale marks a result computed from an entry older than the refresh
	// interval because the refresh failed.
	Stale     bool
	Refreshed bool
}

// BoardItem is the outcome of one request of a board.
type BoardItem struct {
	Index   int
	Request AnalysisRequest
	Result  AnalysisResult
	Err     error
}

type AnalysisServiceConfig struct {
	DefaultSeason    string
	BoardConcurrency int
}

type AnalysisService struct {
	refresher *RefreshController
	players   *PlayerService
	matchups  *MatchupService
	cfg       AnalysisServiceConfig
	logger    *logging.Logger
	now       func() time.Time
}

func NewAnalysisService(
	refresher *RefreshController,
	players *PlayerService,
	matchups *MatchupService,
	cfg AnalysisServiceConfig,
	logger *logging.Logger,
) *AnalysisService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.BoardConcurrency <= 0 {
		cfg.BoardConcurrency = defaultBoardConcurrency
	}
	return &AnalysisService{
		refresher: refresher,
		players:   players,
		matchups:  matchups,
		cfg:       cfg,
		logger:    logger.Named("analysis"),
		now:       time.Now,
	}
}

// Analyze grades a player's season against a line for one stat. It never
// computes a result over zero games: an empty log is ErrNoDataAvailable.
func (s *AnalysisService) Analyze(ctx context.Context, req AnalysisRequest) (AnalysisResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalysisService.Analyze",
		attribute.String("player.id", req.PlayerID), attribute.String("stat", string(req.Stat)))
	defer span.End()

	req, err := s.normalize(req)
	if err != nil {
		return AnalysisResult{}, err
	}

	info, err := s.lookupPlayer(ctx, req)
	if err != nil {
		return AnalysisResult{}, err
	}

	fresh, err := s.refresher.EnsureFresh(ctx, req.PlayerID, req.Season)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("ensure fresh game log: %w", err)
	}
	if len(fresh.Entry.Records) == 0 {
		return AnalysisResult{}, fmt.Errorf("%w: player=%s season=%s has no games", ErrNoDataAvailable, req.PlayerID, req.Season)
	}

	rank := 0
	if req.Opponent != "" && s.matchups != nil {
		rank, err = s.matchups.Rank(ctx, req.Season, req.Opponent)
		if err != nil {
			s.logger.WarnContext(ctx, "defense ranks unavailable, using neutral matchup",
				"opponent", req.Opponent,
				"season", req.Season,
				"error", err,
			)
			rank = 0
		}
	}

	report := analytics.Evaluate(fresh.Entry.Records, req.Stat, req.Line, rank)
	span.SetAttributes(
		attribute.Int("prop.score", report.Score.Score),
		attribute.String("prop.verdict", string(report.Verdict)),
		attribute.Bool("cache.stale", fresh.Stale),
	)
	return AnalysisResult{
		Player:    info,
		Season:    req.Season,
		Opponent:  req.Opponent,
		Report:    report,
		FetchedAt: fresh.Entry.LastFetchedAt,
		DataAge:   fresh.Entry.Age(s.now()),
		Stale:     fresh.Stale,
		Refreshed: fresh.Refreshed,
	}, nil
}

// AnalyzeBoard analyzes many props concurrently. Failures are reported per
// item; the board itself only fails when ctx does.
func (s *AnalysisService) AnalyzeBoard(ctx context.Context, reqs []AnalysisRequest) ([]BoardItem, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalysisService.AnalyzeBoard",
		attribute.Int("board.size", len(reqs)))
	defer span.End()

	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: board must contain at least one prop", ErrInvalidInput)
	}

	workers := pool.NewWithResults[BoardItem]().WithMaxGoroutines(min(s.cfg.BoardConcurrency, len(reqs)))
	for i, req := range reqs {
		workers.Go(func() BoardItem {
			res, err := s.Analyze(ctx, req)
			return BoardItem{Index: i, Request: req, Result: res, Err: err}
		})
	}
	items := workers.Wait()
	sort.Slice(items, func(i, j int) bool { return items[i].Index < items[j].Index })

	if err := ctx.Err(); err != nil {
		return items, err
	}
	return items, nil
}

func (s *AnalysisService) normalize(req AnalysisRequest) (AnalysisRequest, error) {
	req.PlayerID = strings.TrimSpace(req.PlayerID)
	if req.PlayerID == "" {
		return req, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	if !playerIDPattern.MatchString(req.PlayerID) {
		return req, fmt.Errorf("%w: player id must be numeric", ErrInvalidInput)
	}

	stat, err := analytics.ParseStat(string(req.Stat))
	if err != nil {
		return req, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	req.Stat = stat

	if math.IsNaN(req.Line) || math.IsInf(req.Line, 0) || req.Line < 0 {
		return req, fmt.Errorf("%w: line must be a non-negative number", ErrInvalidInput)
	}

	season, err := NormalizeSeason(req.Season, s.cfg.DefaultSeason)
	if err != nil {
		return req, err
	}
	req.Season = season
	req.Opponent = gamelog.NormalizeTeam(req.Opponent)
	return req, nil
}

func (s *AnalysisService) lookupPlayer(ctx context.Context, req AnalysisRequest) (player.Player, error) {
	fallback := player.Player{ID: req.PlayerID}
	if s.players == nil {
		return fallback, nil
	}
	info, err := s.players.Get(ctx, req.PlayerID, req.Season)
	switch {
	case err == nil:
		return info, nil
	case errors.Is(err, ErrPlayerNotFound):
		return player.Player{}, err
	default:
		s.logger.WarnContext(ctx, "player directory unavailable, skipping lookup",
			"player_id", req.PlayerID,
			"error", err,
		)
		return fallback, nil
	}
}

// NormalizeSeason validates a season label such as "2025-26", falling back
// to def when raw is empty.
func NormalizeSeason(raw, def string) (string, error) {
	season := strings.TrimSpace(raw)
	if season == "" {
		season = strings.TrimSpace(def)
	}
	if !seasonPattern.MatchString(season) {
		return "", fmt.Errorf("%w: season must look like 2025-26, got %q", ErrInvalidInput, season)
	}
	return season, nil
}
