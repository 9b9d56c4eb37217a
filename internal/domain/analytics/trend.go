package analytics

// Trend compares short and medium term form.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// TrendOf compares the last-5 and last-10 averages after rounding both to
// one decimal.
func TrendOf(l5Avg, l10Avg float64) Trend {
	l5, l10 := Round1(l5Avg), Round1(l10Avg)
	switch {
	case l5 > l10:
		return TrendUp
	case l5 < l10:
		return TrendDown
	default:
		return TrendStable
	}
}
