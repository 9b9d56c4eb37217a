package analytics

import (
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/riskibarqy/propstats/internal/domain/gamelog"
)

var exampleValues = []int{30, 25, 28, 22, 35, 19, 27, 31, 24, 26}

// pointsLog builds a game log whose first element is the most recent game.
func pointsLog(points []int) []gamelog.GameRecord {
	start := time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)
	out := make([]gamelog.GameRecord, len(points))
	for i, p := range points {
		out[i] = gamelog.GameRecord{
			PlayerID: "2544",
			GameID:   "g" + strconv.Itoa(i),
			Date:     start.AddDate(0, 0, -2*i),
			IsHome:   i%2 == 0,
			Opponent: "BOS",
			Points:   p,
		}
	}
	return out
}

func TestWindow(t *testing.T) {
	t.Parallel()

	records := pointsLog(exampleValues)
	reversed := make([]gamelog.GameRecord, len(records))
	for i := range records {
		reversed[len(records)-1-i] = records[i]
	}

	tests := []struct {
		name string
		n    int
		want int
	}{
		{name: "smaller than log", n: 5, want: 5},
		{name: "equal to log", n: 10, want: 10},
		{name: "larger than log", n: 20, want: 10},
		{name: "zero", n: 0, want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Window(reversed, tc.n)
			if len(got) != tc.want {
				t.Fatalf("len=%d, want %d", len(got), tc.want)
			}
			for i := range got {
				if got[i].GameID != records[i].GameID {
					t.Fatalf("position %d: got %s, want %s", i, got[i].GameID, records[i].GameID)
				}
			}
		})
	}

	if reversed[0].GameID != "g9" {
		t.Fatalf("Window must not reorder its input")
	}
}

func TestComputeHitRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []float64
		line   float64
		want   HitRate
	}{
		{name: "empty", values: nil, line: 10, want: HitRate{}},
		{name: "equal is a miss", values: []float64{10, 10, 11}, line: 10, want: HitRate{Hits: 1, Total: 3, Pct: 33}},
		{name: "rounds half up", values: []float64{1, 0, 0, 0, 0, 0, 0, 0}, line: 0.5, want: HitRate{Hits: 1, Total: 8, Pct: 13}},
		{name: "all hits", values: []float64{5, 6}, line: 4.5, want: HitRate{Hits: 2, Total: 2, Pct: 100}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeHitRate(tc.values, tc.line)
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
			if got.Hits+got.Misses() != got.Total {
				t.Fatalf("hits+misses != total: %+v", got)
			}
		})
	}
}

func TestConsistency(t *testing.T) {
	t.Parallel()

	if got := Consistency([]float64{1, 2, 3}); got != NeutralConsistency {
		t.Fatalf("small sample: got %v, want neutral", got)
	}
	if got := Consistency([]float64{0, 0, 0, 0, 0}); got != 100 {
		t.Fatalf("all zero: got %v, want 100", got)
	}
	if got := Consistency([]float64{20, 20, 20, 20, 20}); got != 100 {
		t.Fatalf("constant: got %v, want 100", got)
	}
	if got := Consistency([]float64{0, 0, 0, 0, 9}); got != 0 {
		t.Fatalf("wild spread: got %v, want 0", got)
	}

	got := Consistency([]float64{30, 25, 28, 22, 35, 19, 27, 31, 24, 26})
	if got < 82 || got > 83.5 {
		t.Fatalf("example log consistency: got %v", got)
	}
}

func TestClassifyMatchup(t *testing.T) {
	t.Parallel()

	cases := map[int]Difficulty{
		0:  DifficultyMedium,
		1:  DifficultyHard,
		14: DifficultyHard,
		15: DifficultyMedium,
		24: DifficultyMedium,
		25: DifficultyEasy,
		30: DifficultyEasy,
	}
	for rank, want := range cases {
		if got := ClassifyMatchup(rank); got != want {
			t.Fatalf("rank %d: got %s, want %s", rank, got, want)
		}
	}
}

func TestVerdictFor_Boundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		score int
		want  Verdict
	}{
		{0, VerdictStrongUnder},
		{30, VerdictStrongUnder},
		{31, VerdictLeanUnder},
		{44, VerdictLeanUnder},
		{45, VerdictTossUp},
		{54, VerdictTossUp},
		{55, VerdictLeanOver},
		{69, VerdictLeanOver},
		{70, VerdictStrongOver},
		{100, VerdictStrongOver},
	}
	for _, tc := range cases {
		if got := VerdictFor(tc.score); got != tc.want {
			t.Fatalf("score %d: got %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestPropScore_Bounds(t *testing.T) {
	t.Parallel()

	best := PropScore(ScoreInput{L10Pct: 100, SeasonAvg: 50, Line: 10, Consistency: 100, Difficulty: DifficultyEasy})
	if best.Score != 100 {
		t.Fatalf("best case: got %d, want 100", best.Score)
	}
	worst := PropScore(ScoreInput{L10Pct: 0, SeasonAvg: 0, Line: 10, Consistency: 0, Difficulty: DifficultyHard})
	if worst.Score != 0 {
		t.Fatalf("worst case: got %d, want 0", worst.Score)
	}
	zeroLine := PropScore(ScoreInput{L10Pct: 50, SeasonAvg: 3, Line: 0, Consistency: 50})
	if zeroLine.MarginPct != 0 || zeroLine.Margin != 30 {
		t.Fatalf("zero line margin: %+v", zeroLine)
	}
}

func TestPropScore_StaysInRange(t *testing.T) {
	t.Parallel()

	pcts := []int{0, 10, 40, 60, 90, 100}
	avgs := []float64{0, 0.5, 12, 25, 48.7, 300}
	lines := []float64{0.5, 1.5, 6.5, 24.5, 60}
	consistencies := []float64{0, 25, 50, 87.3, 100}
	difficulties := []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard, ""}

	for _, pct := range pcts {
		for _, avg := range avgs {
			for _, line := range lines {
				for _, cons := range consistencies {
					for _, diff := range difficulties {
						in := ScoreInput{L10Pct: pct, SeasonAvg: avg, Line: line, Consistency: cons, Difficulty: diff}
						got := PropScore(in)
						if got.Score < 0 || got.Score > 100 {
							t.Fatalf("%+v: score %d out of [0,100]", in, got.Score)
						}
						if got.MarginPct < -30 || got.MarginPct > 30 {
							t.Fatalf("%+v: margin pct %v not clamped", in, got.MarginPct)
						}
						if v := VerdictFor(got.Score); v == "" {
							t.Fatalf("%+v: no verdict for score %d", in, got.Score)
						}
					}
				}
			}
		}
	}
}

func TestEndToEndExample(t *testing.T) {
	t.Parallel()

	records := pointsLog(exampleValues)
	values := StatPoints.Values(Window(records, 5))
	l5 := ComputeHitRate(values, 25)
	if l5.Hits != 3 || l5.Total != 5 || l5.Pct != 60 {
		t.Fatalf("L5: got %+v", l5)
	}

	all := StatPoints.Values(records)
	seasonAvg := Average(all)
	if Round1(seasonAvg) != 26.7 {
		t.Fatalf("season avg: got %v", seasonAvg)
	}
	l10 := ComputeHitRate(all, 25)
	if l10.Pct != 60 {
		t.Fatalf("L10: got %+v", l10)
	}

	score := PropScore(ScoreInput{
		L10Pct:      l10.Pct,
		SeasonAvg:   seasonAvg,
		Line:        25,
		Consistency: NeutralConsistency,
		Difficulty:  DifficultyMedium,
	})
	if math.Abs(score.Hit-24) > 1e-9 {
		t.Fatalf("hit component: %v", score.Hit)
	}
	if math.Abs(score.Margin-50.4) > 1e-9 {
		t.Fatalf("margin component: %v", score.Margin)
	}
	if score.Consistency != 10 || score.Difficulty != 0 {
		t.Fatalf("neutral components: %+v", score)
	}
	if score.Score != 84 {
		t.Fatalf("score: got %d, want 84", score.Score)
	}
	if VerdictFor(score.Score) != VerdictStrongOver {
		t.Fatalf("verdict: got %s", VerdictFor(score.Score))
	}
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	report := Evaluate(pointsLog(exampleValues), StatPoints, 25, 27)

	if report.GamesPlayed != 10 {
		t.Fatalf("games played: %d", report.GamesPlayed)
	}
	if report.HitRates.L5.Pct != 60 || report.HitRates.L10.Hits != 6 || report.HitRates.L20.Total != 10 {
		t.Fatalf("hit rates: %+v", report.HitRates)
	}
	if report.HitRates.Home.Total != 5 || report.HitRates.Away.Total != 5 {
		t.Fatalf("splits: %+v / %+v", report.HitRates.Home, report.HitRates.Away)
	}
	if report.HitRates.Home.Hits != 4 {
		t.Fatalf("home hits: %+v", report.HitRates.Home)
	}
	if report.Difficulty != DifficultyEasy || report.OpponentRank != 27 {
		t.Fatalf("matchup: %s rank %d", report.Difficulty, report.OpponentRank)
	}
	if report.Score.Score < 0 || report.Score.Score > 100 {
		t.Fatalf("score out of range: %d", report.Score.Score)
	}
	if report.Verdict != VerdictFor(report.Score.Score) {
		t.Fatalf("verdict mismatch")
	}
	if len(report.Games) != 10 || report.Games[0].Value != 30 || !report.Games[0].Hit || report.Games[1].Hit {
		t.Fatalf("games: %+v", report.Games[:2])
	}
	if report.Trend != TrendUp {
		t.Fatalf("trend: got %s (l5 %.1f l10 %.1f)", report.Trend, report.Averages.L5, report.Averages.L10)
	}
}

func TestStatValues(t *testing.T) {
	t.Parallel()

	r := gamelog.GameRecord{Points: 25, Rebounds: 11, Assists: 9, Threes: 3, Steals: 2, Blocks: 1, Turnovers: 4}
	cases := map[StatType]float64{
		StatPoints:       25,
		StatRebounds:     11,
		StatAssists:      9,
		StatThrees:       3,
		StatSteals:       2,
		StatBlocks:       1,
		StatTurnovers:    4,
		StatPRA:          45,
		StatPR:           36,
		StatPA:           34,
		StatRA:           20,
		StatDoubleDouble: 2,
	}
	for stat, want := range cases {
		if got := stat.Value(r); got != want {
			t.Fatalf("%s: got %v, want %v", stat, got, want)
		}
	}

	if StatDoubleDouble.EffectiveLine(30) != DoubleDoubleLine {
		t.Fatalf("double double must use its fixed line")
	}
	if StatPoints.EffectiveLine(24.5) != 24.5 {
		t.Fatalf("points must keep requested line")
	}
}

func TestParseStat(t *testing.T) {
	t.Parallel()

	for raw, want := range map[string]StatType{"Points": StatPoints, "3pm": StatThrees, " PRA ": StatPRA, "dd": StatDoubleDouble} {
		got, err := ParseStat(raw)
		if err != nil || got != want {
			t.Fatalf("ParseStat(%q)=%s,%v want %s", raw, got, err, want)
		}
	}
	if _, err := ParseStat("goals"); err == nil {
		t.Fatalf("expected error for unsupported stat")
	}
}

func TestTrendOf(t *testing.T) {
	t.Parallel()

	if TrendOf(20.04, 20.01) != TrendStable {
		t.Fatalf("expected stable after rounding")
	}
	if TrendOf(22, 20) != TrendUp || TrendOf(18, 20) != TrendDown {
		t.Fatalf("unexpected trend direction")
	}
}
