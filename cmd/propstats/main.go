package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/riskibarqy/propstats/internal/app"
	"github.com/riskibarqy/propstats/internal/config"
	"github.com/riskibarqy/propstats/internal/platform/logging"
)

// globals is shared by every command. Service wiring happens lazily so that
// --help never touches the cache backend.
type globals struct {
	Verbose bool `short:"v" help:"Log at debug level to stderr."`
	JSON    bool `help:"Print results as JSON instead of tables."`

	ctx context.Context
}

func (g *globals) open() (*app.Services, *logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	level := cfg.LogLevel
	if g.Verbose {
		level = logging.LevelDebug
	} else if level < logging.LevelWarn {
		level = logging.LevelWarn
	}
	logger := logging.NewConsole(os.Stderr, level)

	services, err := app.NewServices(g.ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return services, logger, nil
}

var cli struct {
	globals

	Analyze analyzeCmd `cmd:"" help:"Grade a player's season against a prop line."`
	Refresh refreshCmd `cmd:"" help:"Force a game log refresh for one or more players."`
	Search  searchCmd  `cmd:"" help:"Search the player directory by name."`
	Stats   statsCmd   `cmd:"" help:"List supported stat types."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kctx := kong.Parse(&cli,
		kong.Name("propstats"),
		kong.Description("Player prop hit rates and scores from cached NBA game logs."),
		kong.UsageOnError(),
	)
	cli.globals.ctx = ctx
	err := kctx.Run(&cli.globals)
	kctx.FatalIfErrorf(err)
}
