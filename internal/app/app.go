package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/propstats/external/nbastats"
	"github.com/riskibarqy/propstats/internal/config"
	"github.com/riskibarqy/propstats/internal/domain/gamelog"
	gamelogcache "github.com/riskibarqy/propstats/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/propstats/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/propstats/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/propstats/internal/interfaces/httpapi"
	"github.com/riskibarqy/propstats/internal/platform/logging"
	"github.com/riskibarqy/propstats/internal/platform/resilience"
	"github.com/riskibarqy/propstats/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const (
	dbPingTimeout   = 5 * time.Second
	dbMaxOpenConns  = 10
	dbMaxIdleConns  = 5
	dbConnMaxIdle   = 5 * time.Minute
	dbConnMaxLife   = 30 * time.Minute
	postgresDialect = "postgres"
)

// Services is the wired application core shared by the API and the CLI.
type Services struct {
	Analysis *usecase.AnalysisService
	Players  *usecase.PlayerService
	Admin    *usecase.AdminService
	Upstream *nbastats.Client

	closers []func() error
}

// Close releases the cache backend.
func (s *Services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func NewServices(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Services, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repo, closeRepo, err := openGameLogRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	client := nbastats.NewClient(nbastats.ClientConfig{
		BaseURL:    cfg.StatsBaseURL,
		Timeout:    cfg.StatsTimeout,
		MaxRetries: cfg.StatsMaxRetries,
		Logger:     logger,
		Gate:       resilience.NewGate(cfg.StatsMinInterval),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.StatsCircuitEnabled,
			FailureThreshold: cfg.StatsCircuitFailureCount,
			OpenTimeout:      cfg.StatsCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.StatsCircuitHalfOpenMaxReq,
		},
	})

	gameCache := usecase.NewGameLogCache(repo, cfg.RefreshInterval)
	refresher := usecase.NewRefreshController(gameCache, client, logger)
	players := usecase.NewPlayerService(client, cfg.PlayerDirectoryTTL, cfg.CurrentSeason)
	matchups := usecase.NewMatchupService(client, cfg.DefenseRankTTL)

	analysis := usecase.NewAnalysisService(refresher, players, matchups, usecase.AnalysisServiceConfig{
		DefaultSeason:    cfg.CurrentSeason,
		BoardConcurrency: cfg.BoardMaxConcurrency,
	}, logger)
	admin := usecase.NewAdminService(refresher, gameCache, players, matchups, client, usecase.AdminServiceConfig{
		DefaultSeason: cfg.CurrentSeason,
		WarmWorkers:   cfg.WarmWorkers,
	}, logger)

	logger.Info("services wired",
		"cache_backend", cfg.CacheBackend,
		"season", cfg.CurrentSeason,
		"refresh_interval", cfg.RefreshInterval.String(),
		"stats_min_interval", cfg.StatsMinInterval.String(),
		"stats_circuit_enabled", cfg.StatsCircuitEnabled,
	)

	return &Services{
		Analysis: analysis,
		Players:  players,
		Admin:    admin,
		Upstream: client,
		closers:  []func() error{closeRepo},
	}, nil
}

// NewHTTPServer wires the API server. The returned Services must be closed
// after the server has shut down.
func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*http.Server, *Services, error) {
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	services, err := NewServices(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	handler := httpapi.NewHandler(services.Analysis, services.Players, services.Admin, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.AdminToken)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
	return server, services, nil
}

func openGameLogRepository(ctx context.Context, cfg config.Config, logger *logging.Logger) (gamelog.Repository, func() error, error) {
	switch cfg.CacheBackend {
	case config.CacheBackendPostgres:
		db, err := openPostgres(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("game log cache backed by postgres",
			"db_name", config.DBName(cfg.DBURL),
			"read_cache_ttl", cfg.DBReadCacheTTL.String(),
		)
		var repo gamelog.Repository = postgres.NewGameLogRepository(db)
		if cfg.DBReadCacheTTL > 0 {
			repo = gamelogcache.NewGameLogRepository(repo, cfg.DBReadCacheTTL)
		}
		return repo, db.Close, nil
	default:
		logger.Info("game log cache held in memory")
		return memory.NewGameLogRepository(), func() error { return nil }, nil
	}
}

func openPostgres(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := cfg.PostgresDSN()
	db, err := otelsqlx.Open(postgresDialect, dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(config.DBName(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(dbMaxOpenConns)
	db.SetMaxIdleConns(dbMaxIdleConns)
	db.SetConnMaxIdleTime(dbConnMaxIdle)
	db.SetConnMaxLifetime(dbConnMaxLife)

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
