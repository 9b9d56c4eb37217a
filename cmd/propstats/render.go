package main

import (
	"fmt"
	"io"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/riskibarqy/propstats/internal/domain/analytics"
	"github.com/riskibarqy/propstats/internal/domain/player"
	"github.com/riskibarqy/propstats/internal/usecase"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	// footers carry counts like "12 players"; keep their case
	t.Style().Format.Footer = text.FormatDefault
	return t
}

func renderAnalysis(w io.Writer, res usecase.AnalysisResult, games int) {
	r := res.Report

	header := fmt.Sprintf("%s (%s) %s %s %.1f", res.Player.Name, res.Player.TeamAbbr, res.Season, r.Stat, r.Line)
	if res.Opponent != "" {
		header += " vs " + res.Opponent
	}
	fmt.Fprintln(w, header)

	summary := newTable(w)
	summary.AppendHeader(table.Row{"Window", "Hits", "Total", "Hit %"})
	for _, row := range []struct {
		name string
		rate analytics.HitRate
	}{
		{"L5", r.HitRates.L5},
		{"L10", r.HitRates.L10},
		{"L20", r.HitRates.L20},
		{"Season", r.HitRates.Season},
		{"Home", r.HitRates.Home},
		{"Away", r.HitRates.Away},
	} {
		summary.AppendRow(table.Row{row.name, row.rate.Hits, row.rate.Total, fmt.Sprintf("%d%%", row.rate.Pct)})
	}
	summary.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	summary.Render()

	score := newTable(w)
	score.AppendRow(table.Row{"Season avg", fmt.Sprintf("%.1f", analytics.Round1(r.Averages.Season))})
	score.AppendRow(table.Row{"L5 avg", fmt.Sprintf("%.1f", analytics.Round1(r.Averages.L5))})
	score.AppendRow(table.Row{"L10 avg", fmt.Sprintf("%.1f", analytics.Round1(r.Averages.L10))})
	score.AppendRow(table.Row{"Consistency", fmt.Sprintf("%.0f", r.Consistency)})
	score.AppendRow(table.Row{"Trend", r.Trend})
	score.AppendRow(table.Row{"Matchup", matchupLabel(r)})
	score.AppendSeparator()
	score.AppendRow(table.Row{"PropScore", r.Score.Score})
	score.AppendRow(table.Row{"Verdict", r.Verdict})
	score.Render()

	if games > 0 && len(r.Games) > 0 {
		log := newTable(w)
		log.AppendHeader(table.Row{"Date", "Opp", "H/A", "W/L", "Min", "Value", "Hit"})
		for i, g := range r.Games {
			if i >= games {
				break
			}
			log.AppendRow(table.Row{
				g.Date.Format(time.DateOnly),
				g.Opponent,
				homeAway(g.IsHome),
				g.Result,
				fmt.Sprintf("%.0f", g.Minutes),
				fmt.Sprintf("%g", g.Value),
				hitMark(g.Hit),
			})
		}
		log.Render()
	}

	fmt.Fprintln(w, freshnessLine(res))
}

func renderRefresh(w io.Writer, results []usecase.RefreshResult) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Player", "Season", "Records", "Fetched"})
	for _, res := range results {
		t.AppendRow(table.Row{res.PlayerID, res.Season, res.Records, res.FetchedAt.UTC().Format(time.RFC3339)})
	}
	t.Render()
}

func renderPlayers(w io.Writer, players []player.Player) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Name", "Team"})
	for _, p := range players {
		t.AppendRow(table.Row{p.ID, p.Name, p.TeamAbbr})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d players", len(players)), ""})
	t.Render()
}

func renderStats(w io.Writer, stats []analytics.StatType) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Stat", "Fixed line"})
	for _, s := range stats {
		fixed := ""
		if s == analytics.StatDoubleDouble {
			fixed = fmt.Sprintf("%.1f", analytics.DoubleDoubleLine)
		}
		t.AppendRow(table.Row{s, fixed})
	}
	t.Render()
}

func writeJSON(w io.Writer, v any) error {
	enc := sonic.ConfigStd.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func matchupLabel(r analytics.Report) string {
	if r.OpponentRank > 0 {
		return fmt.Sprintf("%s (rank %d)", r.Difficulty, r.OpponentRank)
	}
	return string(r.Difficulty)
}

func freshnessLine(res usecase.AnalysisResult) string {
	line := fmt.Sprintf("data fetched %s (%s old)",
		res.FetchedAt.UTC().Format(time.RFC3339), res.DataAge.Truncate(time.Second))
	switch {
	case res.Stale:
		line += ", stale: refresh failed"
	case res.Refreshed:
		line += ", refreshed"
	}
	return line
}

func homeAway(home bool) string {
	if home {
		return "H"
	}
	return "A"
}

func hitMark(hit bool) string {
	if hit {
		return "x"
	}
	return ""
}
