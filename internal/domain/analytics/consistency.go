package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	// NeutralConsistency is reported when the sample is too small to judge.
	NeutralConsistency   = 50.0
	minConsistencySample = 5
)

// Consistency scores how tightly values cluster around their mean on a
// 0..100 scale: 100 - (sample stddev / mean * 100), clamped. A zero mean is
// treated as a denominator of one.
func Consistency(values []float64) float64 {
	if len(values) < minConsistencySample {
		return NeutralConsistency
	}
	mean, stddev := stat.MeanStdDev(values, nil)
	denominator := mean
	if denominator == 0 {
		denominator = 1
	}
	score := 100 - math.Abs(stddev/denominator)*100
	return clamp(score, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
