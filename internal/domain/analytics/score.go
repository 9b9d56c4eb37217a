package analytics

import "math"

// Verdict is the recommendation bucket of a PropScore.
type Verdict string

const (
	VerdictStrongOver  Verdict = "STRONG_OVER"
	VerdictLeanOver    Verdict = "LEAN_OVER"
	VerdictTossUp      Verdict = "TOSS_UP"
	VerdictLeanUnder   Verdict = "LEAN_UNDER"
	VerdictStrongUnder Verdict = "STRONG_UNDER"
)

const (
	hitWeight          = 40.0
	marginCap          = 30.0
	marginWeight       = 3.0
	marginOffset       = 30.0
	consistencyDivisor = 5.0
)

// ScoreInput carries the signals PropScore combines.
type ScoreInput struct {
	L10Pct      int
	SeasonAvg   float64
	Line        float64
	Consistency float64
	Difficulty  Difficulty
}

// ScoreBreakdown is a PropScore with its components.
type ScoreBreakdown struct {
	Hit         float64
	Margin      float64
	MarginPct   float64
	Consistency float64
	Difficulty  float64
	Score       int
}

// PropScore is a heuristic 0..100 confidence that the over hits. It is not a
// probability.
//
//	hit         = L10% / 100 * 40           (0..40)
//	margin      = clamp(margin%, -30, 30)*3+30 (0..60)
//	consistency = consistency / 5            (0..20)
//	difficulty  = +10 easy, 0 medium, -10 hard
//
// margin% is (season avg - line) / line * 100, or 0 for a zero line.
func PropScore(in ScoreInput) ScoreBreakdown {
	marginPct := 0.0
	if in.Line > 0 {
		marginPct = (in.SeasonAvg - in.Line) / in.Line * 100
	}
	marginPct = clamp(marginPct, -marginCap, marginCap)

	out := ScoreBreakdown{
		Hit:         float64(in.L10Pct) / 100 * hitWeight,
		MarginPct:   marginPct,
		Margin:      marginPct*marginWeight + marginOffset,
		Consistency: clamp(in.Consistency, 0, 100) / consistencyDivisor,
		Difficulty:  in.Difficulty.adjustment(),
	}
	total := out.Hit + out.Margin + out.Consistency + out.Difficulty
	out.Score = int(math.Round(clamp(total, 0, 100)))
	return out
}

// VerdictFor buckets a score: >=70 strong over, 55-69 lean over, 45-54 toss
// up, 31-44 lean under, <=30 strong under.
func VerdictFor(score int) Verdict {
	switch {
	case score >= 70:
		return VerdictStrongOver
	case score >= 55:
		return VerdictLeanOver
	case score >= 45:
		return VerdictTossUp
	case score >= 31:
		return VerdictLeanUnder
	default:
		return VerdictStrongUnder
	}
}
