package analytics

import (
	"time"

	"github.com/riskibarqy/propstats/internal/domain/gamelog"
)

const (
	splitWindow = 15
	recentGames = 30
	scoreWindow = 10
	shortWindow = 5
	longWindow  = 20
)

// HitRates holds the per-window hit-rate tuples.
type HitRates struct {
	L5     HitRate
	L10    HitRate
	L20    HitRate
	Season HitRate
	Home   HitRate
	Away   HitRate
}

// Averages holds the stat means over the standard windows.
type Averages struct {
	Season float64
	L5     float64
	L10    float64
}

// GameOutcome is one graded game.
type GameOutcome struct {
	GameID   string
	Date     time.Time
	Opponent string
	IsHome   bool
	Result   string
	Minutes  float64
	Value    float64
	Hit      bool
}

// Report is everything derived from one player's records for one prop.
type Report struct {
	Stat         StatType
	Line         float64
	GamesPlayed  int
	HitRates     HitRates
	Averages     Averages
	Consistency  float64
	Trend        Trend
	Difficulty   Difficulty
	OpponentRank int
	Score        ScoreBreakdown
	Verdict      Verdict
	Games        []GameOutcome
}

// Evaluate grades records against a line. opponentRank is the opponent's
// defensive rank, or 0 when unknown. Callers must not pass an empty record
// set; the result would describe zero games.
func Evaluate(records []gamelog.GameRecord, stat StatType, line float64, opponentRank int) Report {
	line = stat.EffectiveLine(line)
	all := Window(records, len(records))
	values := stat.Values(all)

	l5 := values[:min(shortWindow, len(values))]
	l10 := values[:min(scoreWindow, len(values))]
	l20 := values[:min(longWindow, len(values))]

	home, away := Split(all)
	homeValues := stat.Values(home[:min(splitWindow, len(home))])
	awayValues := stat.Values(away[:min(splitWindow, len(away))])

	report := Report{
		Stat:        stat,
		Line:        line,
		GamesPlayed: len(all),
		HitRates: HitRates{
			L5:     ComputeHitRate(l5, line),
			L10:    ComputeHitRate(l10, line),
			L20:    ComputeHitRate(l20, line),
			Season: ComputeHitRate(values, line),
			Home:   ComputeHitRate(homeValues, line),
			Away:   ComputeHitRate(awayValues, line),
		},
		Averages: Averages{
			Season: Average(values),
			L5:     Average(l5),
			L10:    Average(l10),
		},
		Consistency:  Consistency(l10),
		Difficulty:   ClassifyMatchup(opponentRank),
		OpponentRank: max(opponentRank, 0),
	}
	report.Trend = TrendOf(report.Averages.L5, report.Averages.L10)
	report.Score = PropScore(ScoreInput{
		L10Pct:      report.HitRates.L10.Pct,
		SeasonAvg:   report.Averages.Season,
		Line:        line,
		Consistency: report.Consistency,
		Difficulty:  report.Difficulty,
	})
	report.Verdict = VerdictFor(report.Score.Score)

	shown := all[:min(recentGames, len(all))]
	report.Games = make([]GameOutcome, 0, len(shown))
	for i, r := range shown {
		report.Games = append(report.Games, GameOutcome{
			GameID:   r.GameID,
			Date:     r.Date,
			Opponent: r.Opponent,
			IsHome:   r.IsHome,
			Result:   r.Result,
			Minutes:  r.Minutes,
			Value:    values[i],
			Hit:      values[i] > line,
		})
	}

	return report
}
