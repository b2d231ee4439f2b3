package stream

import "coinwatch/internal/market"

// ClassifyTrend compares price with the previously applied price. Without a
// previous price the sign of the 24h change decides; a flat 24h change counts
// as up.
func ClassifyTrend(prev float64, hasPrev bool, price, change24h float64) market.Trend {
	if !hasPrev {
		if change24h >= 0 {
			return market.TrendUp
		}
		return market.TrendDown
	}
	switch {
	case price > prev:
		return market.TrendUp
	case price < prev:
		return market.TrendDown
	default:
		return market.TrendNeutral
	}
}
