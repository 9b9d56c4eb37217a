package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// HitRate counts games strictly over a line.
type HitRate struct {
	Hits  int
	Total int
	Pct   int
}

// Misses is the number of games at or under the line.
func (h HitRate) Misses() int {
	return h.Total - h.Hits
}

// ComputeHitRate grades values against line. A value equal to the line is a
// miss. An empty input yields the zero HitRate.
func ComputeHitRate(values []float64, line float64) HitRate {
	if len(values) == 0 {
		return HitRate{}
	}
	hits := 0
	for _, v := range values {
		if v > line {
			hits++
		}
	}
	return HitRate{
		Hits:  hits,
		Total: len(values),
		Pct:   int(math.Round(float64(hits) / float64(len(values)) * 100)),
	}
}

// Average is the arithmetic mean of values, 0 when empty.
func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Round1 rounds to one decimal place for presentation.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
