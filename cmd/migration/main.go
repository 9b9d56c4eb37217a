package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/riskibarqy/propstats/internal/config"
	"github.com/riskibarqy/propstats/internal/platform/logging"
)

type globals struct {
	DBURL            string `name:"db-url" help:"Postgres connection URL." env:"DB_URL" required:""`
	Dir              string `help:"Migrations directory. Defaults to ./db/migrations or /app/db/migrations." env:"MIGRATIONS_DIR"`
	BinaryParameters bool   `help:"Append binary_parameters=yes to the connection URL." env:"DB_BINARY_PARAMETERS" default:"true" negatable:""`
	LogLevel         string `help:"Log level." env:"APP_LOG_LEVEL" default:"info"`

	logger *logging.Logger
}

type upCmd struct{}

func (c *upCmd) Run(g *globals) error {
	return g.withMigrator(func(m *migrate.Migrate) error {
		if err := ignoreNoChange(g.logger, m.Up()); err != nil {
			return err
		}
		g.logVersion(m)
		return nil
	})
}

type downCmd struct {
	Steps int `arg:"" optional:"" default:"1" help:"Number of migrations to roll back."`
}

func (c *downCmd) Run(g *globals) error {
	if c.Steps <= 0 {
		return fmt.Errorf("down steps must be > 0, got %d", c.Steps)
	}
	return g.withMigrator(func(m *migrate.Migrate) error {
		if err := ignoreNoChange(g.logger, m.Steps(-c.Steps)); err != nil {
			return err
		}
		g.logVersion(m)
		return nil
	})
}

type versionCmd struct{}

func (c *versionCmd) Run(g *globals) error {
	return g.withMigrator(func(m *migrate.Migrate) error {
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			g.logger.Info("no migrations applied")
			return nil
		}
		if err != nil {
			return err
		}
		g.logger.Info("migration version", "version", version, "dirty", dirty)
		return nil
	})
}

type forceCmd struct {
	Version int `arg:"" help:"Version to mark as applied without running it."`
}

func (c *forceCmd) Run(g *globals) error {
	if c.Version < 0 {
		return fmt.Errorf("version must be >= 0, got %d", c.Version)
	}
	return g.withMigrator(func(m *migrate.Migrate) error {
		if err := m.Force(c.Version); err != nil {
			return err
		}
		g.logger.Info("forced migration version", "version", c.Version)
		return nil
	})
}

type gotoCmd struct {
	Version uint `arg:"" help:"Target version."`
}

func (c *gotoCmd) Run(g *globals) error {
	return g.withMigrator(func(m *migrate.Migrate) error {
		if err := ignoreNoChange(g.logger, m.Migrate(c.Version)); err != nil {
			return err
		}
		g.logger.Info("migrated", "version", c.Version)
		return nil
	})
}

var cli struct {
	globals

	Up      upCmd      `cmd:"" help:"Apply all pending migrations."`
	Down    downCmd    `cmd:"" help:"Roll back migrations."`
	Version versionCmd `cmd:"" help:"Print the applied migration version."`
	Force   forceCmd   `cmd:"" help:"Set the migration version without running migrations."`
	Goto    gotoCmd    `cmd:"" help:"Migrate up or down to a version."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("migration"),
		kong.Description("Manage the propstats player cache schema."),
	)
	cli.globals.logger = logging.NewConsole(os.Stderr, logging.ParseLevel(cli.LogLevel))
	err := ctx.Run(&cli.globals)
	ctx.FatalIfErrorf(err)
}

func (g *globals) withMigrator(fn func(*migrate.Migrate) error) error {
	dir, err := resolveMigrationsDir(g.Dir)
	if err != nil {
		return err
	}

	m, err := migrate.New("file://"+filepath.ToSlash(dir), config.PostgresDSN(g.DBURL, g.BinaryParameters))
	if err != nil {
		return fmt.Errorf("init migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			g.logger.Warn("close migration source", "error", srcErr)
		}
		if dbErr != nil {
			g.logger.Warn("close migration db", "error", dbErr)
		}
	}()

	g.logger.Debug("migrator ready", "dir", dir)
	return fn(m)
}

func (g *globals) logVersion(m *migrate.Migrate) {
	version, dirty, err := m.Version()
	if err != nil {
		return
	}
	g.logger.Info("migration version", "version", version, "dirty", dirty)
}

func ignoreNoChange(logger *logging.Logger, err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migration changes")
		return nil
	}
	return err
}

func resolveMigrationsDir(explicit string) (string, error) {
	candidates := []string{
		strings.TrimSpace(explicit),
		"./db/migrations",
		"/app/db/migrations",
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs, nil
		}
	}

	return "", fmt.Errorf("migration directory not found (checked --dir, ./db/migrations, /app/db/migrations)")
}
