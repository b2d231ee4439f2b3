package binance

import (
	"testing"

	"coinwatch/internal/market"

	"github.com/stretchr/testify/assert"
)

func TestEndpoints(t *testing.T) {
	e := NewEndpoints("wss://stream.binance.com:9443/ws/", "wss://fstream.binance.com/ws")

	spot := market.WatchedPair{PairKey: market.PairKey{Symbol: "BTC/USDT", Market: market.Spot}}
	futures := market.WatchedPair{PairKey: market.PairKey{Symbol: "ETH/USDT", Market: market.Futures}}
	alpha := market.WatchedPair{
		PairKey: market.PairKey{Symbol: "KOGE/USDT", Market: market.Alpha},
		Meta:    &market.Pair{StreamSymbol: "ALPHA_105"},
	}

	assert.Equal(t, "wss://stream.binance.com:9443/ws/btcusdt@ticker", e.TickerURL(spot))
	assert.Equal(t, "wss://fstream.binance.com/ws/ethusdt@ticker", e.TickerURL(futures))
	assert.Equal(t, "wss://stream.binance.com:9443/ws/alpha_105@ticker", e.TickerURL(alpha))

	assert.Equal(t, "wss://stream.binance.com:9443/ws/btcusdt@kline_1m", e.KlineURL(spot, "1m"))
	assert.Equal(t, "wss://fstream.binance.com/ws/ethusdt@kline_5m", e.KlineURL(futures, "5m"))
}
