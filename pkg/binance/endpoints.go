package binance

import (
	"strings"

	"coinwatch/internal/market"
)

// Endpoints builds per-symbol raw stream URLs, e.g.
// wss://stream.binance.com:9443/ws/btcusdt@ticker.
type Endpoints struct {
	SpotURL    string
	FuturesURL string
}

func NewEndpoints(spotURL, futuresURL string) Endpoints {
	return Endpoints{
		SpotURL:    strings.TrimSuffix(spotURL, "/"),
		FuturesURL: strings.TrimSuffix(futuresURL, "/"),
	}
}

func (e Endpoints) base(m market.MarketType) string {
	if m == market.Futures {
		return e.FuturesURL
	}
	// alpha tokens stream from the spot endpoint
	return e.SpotURL
}

// TickerURL returns the 24h ticker stream of p.
func (e Endpoints) TickerURL(p market.WatchedPair) string {
	return e.base(p.Market) + "/" + strings.ToLower(p.StreamSymbol()) + "@ticker"
}

// KlineURL returns the kline stream of p for interval.
func (e Endpoints) KlineURL(p market.WatchedPair, interval string) string {
	return e.base(p.Market) + "/" + strings.ToLower(p.StreamSymbol()) + "@kline_" + interval
}
