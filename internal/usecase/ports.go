package usecase

import (
	"context"

	"github.com/riskibarqy/propstats/internal/domain/gamelog"
	"github.com/riskibarqy/propstats/internal/domain/player"
)

// GameLogFetcher retrieves a player's full game log for a season. It is
// stateless: every call returns the complete log.
type GameLogFetcher interface {
	FetchGameLog(ctx context.Context, playerID, season string) ([]gamelog.GameRecord, error)
}

// DefenseRankSource returns team abbreviation -> defensive rank, 1 = best.
type DefenseRankSource interface {
	FetchDefenseRanks(ctx context.Context, season string) (map[string]int, error)
}

// StatsProvider is everything the service needs from the upstream provider.
type StatsProvider interface {
	GameLogFetcher
	DefenseRankSource
	player.Directory
}

// UpstreamStats describes the provider client's health.
type UpstreamStats struct {
	Requests      int64  `json:"requests"`
	Failures      int64  `json:"failures"`
	SchemaDrifts  int64  `json:"schema_drifts"`
	CircuitState  string `json:"circuit_state"`
	CircuitTrips  int    `json:"circuit_trips"`
	MinIntervalMs int64  `json:"min_interval_ms"`
	GatePassed    int64  `json:"gate_passed"`
}

// UpstreamStatsReporter is implemented by provider clients that expose
// diagnostics.
type UpstreamStatsReporter interface {
	UpstreamStats() UpstreamStats
}
