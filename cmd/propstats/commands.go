package main

import (
	"fmt"
	"os"

	"github.com/riskibarqy/propstats/internal/domain/analytics"
	"github.com/riskibarqy/propstats/internal/usecase"
)

type analyzeCmd struct {
	PlayerID string  `arg:"" help:"Numeric player id."`
	Stat     string  `short:"s" required:"" help:"Stat type, e.g. points, pra, double_double."`
	Line     float64 `short:"l" default:"-1" help:"Prop line. Required except for double_double."`
	Season   string  `help:"Season in YYYY-YY form. Defaults to the current season."`
	Opponent string  `short:"o" help:"Opponent abbreviation for matchup difficulty."`
	Games    int     `short:"n" default:"10" help:"Recent games to list."`
}

func (c *analyzeCmd) Run(g *globals) error {
	stat, err := analytics.ParseStat(c.Stat)
	if err != nil {
		return err
	}
	line, err := cliLine(stat, c.Line)
	if err != nil {
		return err
	}

	services, _, err := g.open()
	if err != nil {
		return err
	}
	defer services.Close()

	res, err := services.Analysis.Analyze(g.ctx, usecase.AnalysisRequest{
		PlayerID: c.PlayerID,
		Stat:     stat,
		Line:     line,
		Season:   c.Season,
		Opponent: c.Opponent,
	})
	if err != nil {
		return err
	}
	if g.JSON {
		return writeJSON(os.Stdout, res)
	}
	renderAnalysis(os.Stdout, res, c.Games)
	return nil
}

type refreshCmd struct {
	PlayerIDs []string `arg:"" name:"player-id" help:"Player ids to refresh."`
	Season    string   `help:"Season in YYYY-YY form. Defaults to the current season."`
}

func (c *refreshCmd) Run(g *globals) error {
	services, logger, err := g.open()
	if err != nil {
		return err
	}
	defer services.Close()

	results := make([]usecase.RefreshResult, 0, len(c.PlayerIDs))
	var failed int
	for _, id := range c.PlayerIDs {
		res, err := services.Admin.RefreshPlayer(g.ctx, id, c.Season)
		if err != nil {
			failed++
			logger.Error("refresh failed", "player_id", id, "error", err)
			continue
		}
		results = append(results, res)
	}

	if g.JSON {
		if err := writeJSON(os.Stdout, results); err != nil {
			return err
		}
	} else {
		renderRefresh(os.Stdout, results)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d refreshes failed", failed, len(c.PlayerIDs))
	}
	return nil
}

type searchCmd struct {
	Query  string `arg:"" help:"Name fragment, at least two characters."`
	Season string `help:"Season in YYYY-YY form. Defaults to the current season."`
	Limit  int    `default:"10" help:"Maximum players to list."`
}

func (c *searchCmd) Run(g *globals) error {
	services, _, err := g.open()
	if err != nil {
		return err
	}
	defer services.Close()

	players, err := services.Players.Search(g.ctx, c.Query, c.Season, c.Limit)
	if err != nil {
		return err
	}
	if g.JSON {
		return writeJSON(os.Stdout, players)
	}
	renderPlayers(os.Stdout, players)
	return nil
}

type statsCmd struct{}

func (c *statsCmd) Run(g *globals) error {
	stats := analytics.AllStats()
	if g.JSON {
		return writeJSON(os.Stdout, stats)
	}
	renderStats(os.Stdout, stats)
	return nil
}

// cliLine applies the double-double fixed line; every other stat needs an
// explicit non-negative --line.
func cliLine(stat analytics.StatType, line float64) (float64, error) {
	if stat == analytics.StatDoubleDouble {
		return analytics.DoubleDoubleLine, nil
	}
	if line < 0 {
		return 0, fmt.Errorf("--line is required for %s", stat)
	}
	return line, nil
}
