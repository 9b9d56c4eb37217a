package analytics

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/propstats/internal/domain/gamelog"
)

// StatType names the per-game quantity a line is set on.
type StatType string

const (
	StatPoints       StatType = "points"
	StatRebounds     StatType = "rebounds"
	StatAssists      StatType = "assists"
	StatThrees       StatType = "threes"
	StatSteals       StatType = "steals"
	StatBlocks       StatType = "blocks"
	StatTurnovers    StatType = "turnovers"
	StatPRA          StatType = "pra"
	StatPR           StatType = "pr"
	StatPA           StatType = "pa"
	StatRA           StatType = "ra"
	StatDoubleDouble StatType = "double_double"
)

// DoubleDoubleLine is the implied line of a double-double prop: a game hits
// when at least two categories reach ten.
const DoubleDoubleLine = 1.5

var allStats = []StatType{
	StatPoints, StatRebounds, StatAssists, StatThrees, StatSteals, StatBlocks, StatTurnovers,
	StatPRA, StatPR, StatPA, StatRA, StatDoubleDouble,
}

var statAliases = map[string]StatType{
	"pts":      StatPoints,
	"reb":      StatRebounds,
	"ast":      StatAssists,
	"3pm":      StatThrees,
	"fg3m":     StatThrees,
	"stl":      StatSteals,
	"blk":      StatBlocks,
	"tov":      StatTurnovers,
	"p+r+a":    StatPRA,
	"p+r":      StatPR,
	"p+a":      StatPA,
	"r+a":      StatRA,
	"dd":       StatDoubleDouble,
	"doubledd": StatDoubleDouble,
}

// AllStats lists the supported stat types in display order.
func AllStats() []StatType {
	out := make([]StatType, len(allStats))
	copy(out, allStats)
	return out
}

// ParseStat resolves a stat name or its common abbreviation.
func ParseStat(raw string) (StatType, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	for _, stat := range allStats {
		if string(stat) == value {
			return stat, nil
		}
	}
	if stat, ok := statAliases[value]; ok {
		return stat, nil
	}
	return "", fmt.Errorf("unsupported stat %q", raw)
}

// EffectiveLine returns the line a stat is graded against. Double-double
// props ignore the requested line.
func (s StatType) EffectiveLine(line float64) float64 {
	if s == StatDoubleDouble {
		return DoubleDoubleLine
	}
	return line
}

// Value extracts the stat from one game.
func (s StatType) Value(r gamelog.GameRecord) float64 {
	switch s {
	case StatPoints:
		return float64(r.Points)
	case StatRebounds:
		return float64(r.Rebounds)
	case StatAssists:
		return float64(r.Assists)
	case StatThrees:
		return float64(r.Threes)
	case StatSteals:
		return float64(r.Steals)
	case StatBlocks:
		return float64(r.Blocks)
	case StatTurnovers:
		return float64(r.Turnovers)
	case StatPRA:
		return float64(r.Points + r.Rebounds + r.Assists)
	case StatPR:
		return float64(r.Points + r.Rebounds)
	case StatPA:
		return float64(r.Points + r.Assists)
	case StatRA:
		return float64(r.Rebounds + r.Assists)
	case StatDoubleDouble:
		count := 0
		for _, v := range []int{r.Points, r.Rebounds, r.Assists, r.Steals, r.Blocks} {
			if v >= 10 {
				count++
			}
		}
		return float64(count)
	default:
		return 0
	}
}

// Values extracts the stat from every record, keeping order.
func (s StatType) Values(records []gamelog.GameRecord) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = s.Value(r)
	}
	return out
}
