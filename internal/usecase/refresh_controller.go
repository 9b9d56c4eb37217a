package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/propstats/internal/domain/gamelog"
	"github.com/riskibarqy/propstats/internal/platform/logging"
	"github.com/riskibarqy/propstats/internal/platform/resilience"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Freshness is the outcome of EnsureFresh.
type Freshness struct {
	Entry gamelog.Entry
	// Refreshed is set when the entry came from an upstream fetch made for
	// this call or one it joined.
	Refreshed bool
	// Stale is set when a refresh was due but failed and the previous entry
	// is served instead. RefreshErr holds the failure.
	Stale      bool
	RefreshErr error
}

// RefreshController keeps cached game logs fresh. At most one upstream fetch
// per (player, season) runs at a time; concurrent callers for the same key
// wait for it and share its outcome.
type RefreshController struct {
	cache   *GameLogCache
	fetcher GameLogFetcher
	flight  resilience.Group[gamelog.Entry]
	logger  *logging.Logger
}

func NewRefreshController(cache *GameLogCache, fetcher GameLogFetcher, logger *logging.Logger) *RefreshController {
	if logger == nil {
		logger = logging.Default()
	}
	return &RefreshController{
		cache:   cache,
		fetcher: fetcher,
		logger:  logger.Named("refresh"),
	}
}

// EnsureFresh returns a cache entry no older than the refresh interval when
// the provider cooperates. When a refresh fails, the previous entry is
// served as-is; with no previous entry the call fails with
// ErrNoDataAvailable, or ErrPlayerNotFound when the provider does not know
// the player.
func (c *RefreshController) EnsureFresh(ctx context.Context, playerID, season string) (Freshness, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RefreshController.EnsureFresh",
		attribute.String("player.id", playerID), attribute.String("season", season))
	defer span.End()

	cached, ok, err := c.cache.Get(ctx, playerID, season)
	if err != nil {
		return Freshness{}, err
	}
	if !c.cache.IsStale(cached, ok) {
		return Freshness{Entry: cached.Entry}, nil
	}

	entry, err := c.refresh(ctx, playerID, season, false)
	if err == nil {
		return Freshness{Entry: entry, Refreshed: true}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Freshness{}, fmt.Errorf("ensure fresh game log: %w", ctxErr)
	}

	if ok {
		c.logger.WarnContext(ctx, "refresh failed, serving cached game log",
			"player_id", playerID,
			"season", season,
			"age", cached.Age.String(),
			"records", len(cached.Entry.Records),
			"error", err,
		)
		span.AddEvent("served stale game log", trace.WithAttributes(attribute.String("error", err.Error())))
		return Freshness{Entry: cached.Entry, Stale: true, RefreshErr: err}, nil
	}

	if errors.Is(err, ErrPlayerNotFound) {
		return Freshness{}, failSpan(span, fmt.Errorf("%w: player=%s", ErrPlayerNotFound, playerID))
	}
	c.logger.WarnContext(ctx, "refresh failed with nothing cached",
		"player_id", playerID,
		"season", season,
		"error", err,
	)
	return Freshness{}, failSpan(span, fmt.Errorf("%w: player=%s season=%s: %w", ErrNoDataAvailable, playerID, season, err))
}

// ForceRefresh fetches from upstream regardless of the entry's age. It
// shares the single-flight slot with EnsureFresh.
func (c *RefreshController) ForceRefresh(ctx context.Context, playerID, season string) (gamelog.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RefreshController.ForceRefresh",
		attribute.String("player.id", playerID), attribute.String("season", season))
	defer span.End()

	entry, err := c.refresh(ctx, playerID, season, true)
	return entry, failSpan(span, err)
}

func (c *RefreshController) refresh(ctx context.Context, playerID, season string, force bool) (gamelog.Entry, error) {
	key := gamelog.Key{PlayerID: playerID, Season: season}.String()

	entry, shared, err := c.flight.Do(ctx, key, func(ctx context.Context) (gamelog.Entry, error) {
		previous, hadPrevious, err := c.cache.Get(ctx, playerID, season)
		if err != nil {
			return gamelog.Entry{}, err
		}
		// a flight that finished just before this one started may already
		// have refreshed the key
		if !force && !c.cache.IsStale(previous, hadPrevious) {
			return previous.Entry, nil
		}

		records, err := c.fetcher.FetchGameLog(ctx, playerID, season)
		if err != nil {
			return gamelog.Entry{}, err
		}
		if len(records) == 0 && hadPrevious && len(previous.Entry.Records) > 0 {
			c.logger.WarnContext(ctx, "upstream returned an empty game log, keeping cached records",
				"player_id", playerID,
				"season", season,
				"cached_records", len(previous.Entry.Records),
			)
			records = previous.Entry.Records
		}

		stored, err := c.cache.Replace(ctx, playerID, season, records)
		if err != nil {
			return gamelog.Entry{}, err
		}
		c.logger.InfoContext(ctx, "game log refreshed",
			"player_id", playerID,
			"season", season,
			"records", len(stored.Records),
			"forced", force,
		)
		return stored, nil
	})
	if shared {
		c.logger.DebugContext(ctx, "joined in-flight refresh", "player_id", playerID, "season", season)
	}
	if err != nil {
		return gamelog.Entry{}, err
	}
	return entry, nil
}

// Clear drops cached logs for a player, or all players when playerID is
// empty.
func (c *RefreshController) Clear(ctx context.Context, playerID string) (int, error) {
	return c.cache.Clear(ctx, strings.TrimSpace(playerID))
}
