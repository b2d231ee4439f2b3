// Package market holds the widget's domain model: tradable pairs, the pairs a
// user watches, and the price and candlestick values streamed for them.
package market

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPairID = errors.New("invalid pair id")
	ErrUnknownMarket = errors.New("unknown market type")
)

// MarketType selects the exchange endpoint family a pair trades on.
type MarketType string

const (
	Spot    MarketType = "spot"
	Futures MarketType = "futures"
	Alpha   MarketType = "alpha"
)

// marketOrder is the display order of market types in the catalog.
var marketOrder = map[MarketType]int{
	Spot:    0,
	Futures: 1,
	Alpha:   2,
}

// ParseMarketType parses "spot", "futures" or "alpha" (case-insensitive).
func ParseMarketType(s string) (MarketType, error) {
	m := MarketType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := marketOrder[m]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMarket, s)
	}
	return m, nil
}

// Pair is a tradable instrument as listed by the exchange.
type Pair struct {
	Symbol       string     `json:"symbol"`       // display symbol, e.g. "BTC/USDT"
	Name         string     `json:"name"`         // e.g. "Bitcoin"
	BaseAsset    string     `json:"baseAsset"`    // e.g. "BTC"
	QuoteAsset   string     `json:"quoteAsset"`   // always "USDT" after filtering
	Market       MarketType `json:"type"`         // spot, futures or alpha
	StreamSymbol string     `json:"streamSymbol"` // exchange symbol, e.g. "BTCUSDT" or "ALPHA_105"
	ContractType string     `json:"contractType,omitempty"`

	// Alpha listings carry a price snapshot.
	Volume    float64 `json:"volume"`
	Price     float64 `json:"price,omitempty"`
	Change24h float64 `json:"change24h,omitempty"`
	MarketCap float64 `json:"marketCap,omitempty"`
	TokenID   string  `json:"tokenId,omitempty"`
}

// Key returns the uniqueness key of the pair.
func (p Pair) Key() PairKey {
	return PairKey{Symbol: p.Symbol, Market: p.Market}
}

// PairKey identifies a watched pair. A symbol may be watched on several
// markets at once.
type PairKey struct {
	Symbol string
	Market MarketType
}

// ID renders the key as a persisted identifier. Spot pairs keep the bare
// symbol, other markets use "SYMBOL:market".
func (k PairKey) ID() string {
	if k.Market == Spot || k.Market == "" {
		return k.Symbol
	}
	return k.Symbol + ":" + string(k.Market)
}

func (k PairKey) String() string { return k.ID() }

// ParsePairID parses "BTC/USDT" or "BTC/USDT:futures". The symbol must be
// BASE/QUOTE with both sides non-empty.
func ParsePairID(id string) (PairKey, error) {
	id = strings.TrimSpace(id)
	symbol, marketPart, hasMarket := strings.Cut(id, ":")
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	base, quote, ok := strings.Cut(symbol, "/")
	if !ok || base == "" || quote == "" || strings.Contains(quote, "/") {
		return PairKey{}, fmt.Errorf("%w: %q", ErrInvalidPairID, id)
	}
	if !hasMarket {
		return PairKey{Symbol: symbol, Market: Spot}, nil
	}
	m, err := ParseMarketType(marketPart)
	if err != nil {
		return PairKey{}, fmt.Errorf("%w: %q: %v", ErrInvalidPairID, id, err)
	}
	return PairKey{Symbol: symbol, Market: m}, nil
}

// WatchedPair is a pair on the user's watchlist with whatever catalog
// metadata was known when it was resolved.
type WatchedPair struct {
	PairKey
	Meta *Pair
}

// StreamSymbol returns the exchange symbol used on the wire. Alpha pairs use
// their listing id when the catalog provided one and fall back to the plain
// symbol form otherwise.
func (w WatchedPair) StreamSymbol() string {
	if w.Meta != nil && w.Meta.StreamSymbol != "" {
		return w.Meta.StreamSymbol
	}
	return strings.ReplaceAll(w.Symbol, "/", "")
}

// Trend is the short-term price direction shown next to a price.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// PriceSample is the latest ticker state for one watched pair.
type PriceSample struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	ChangePercent float64   `json:"change"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Volume        float64   `json:"volume"`
	Trend         Trend     `json:"trend"`
	Timestamp     time.Time `json:"timestamp"`
}

// ChangeText renders the 24h change with two decimals and an explicit plus
// sign for gains, e.g. "+2.50" or "-0.13".
func (s PriceSample) ChangeText() string {
	txt := decimal.NewFromFloat(s.ChangePercent).StringFixed(2)
	if s.ChangePercent > 0 {
		return "+" + txt
	}
	return txt
}

// RoundedVolume returns the volume rounded to the nearest whole unit.
func (s PriceSample) RoundedVolume() int64 {
	return decimal.NewFromFloat(s.Volume).Round(0).IntPart()
}

// KlineBar is one candlestick. Time is the bucket open time in seconds.
type KlineBar struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}
