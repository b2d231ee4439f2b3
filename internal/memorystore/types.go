package memorystore

import "coinwatch/internal/market"

// UpdateKind classifies how a live bar changed a kline series.
type UpdateKind string

const (
	// KindUpdate replaced the last bar (same bucket).
	KindUpdate UpdateKind = "update"
	// KindNew appended a bar for a newer bucket.
	KindNew UpdateKind = "new"
	// KindIgnored left the series unchanged (bucket older than the last one).
	KindIgnored UpdateKind = ""
)

// PriceState is the ticker view of one watched pair: the latest sample plus
// the rolling trend line drawn beside it.
type PriceState struct {
	Sample    market.PriceSample
	TrendLine []float64
}
