package stream

import (
	"context"

	"coinwatch/internal/market"
)

// Channel names the kind of stream opened for a pair.
type Channel string

const (
	ChannelTicker Channel = "ticker"
	ChannelKline  Channel = "kline"
)

// ConnState is the lifecycle state of one stream connection.
type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
	StateError        ConnState = "error"
)

// TickerMessage is the 24h rolling ticker payload. Numeric fields arrive as
// strings.
type TickerMessage struct {
	Event         string `json:"e"` // "24hrTicker"
	Symbol        string `json:"s"` // e.g. "BTCUSDT"
	Close         string `json:"c"` // last price
	ChangePercent string `json:"P"` // 24h change in percent
	High          string `json:"h"` // 24h high
	Low           string `json:"l"` // 24h low
	Volume        string `json:"v"` // 24h base volume
}

// KlineMessage wraps one candlestick update.
type KlineMessage struct {
	Event  string        `json:"e"` // "kline"
	Symbol string        `json:"s"`
	Kline  *KlinePayload `json:"k"`
}

// KlinePayload is the bar carried by a KlineMessage.
type KlinePayload struct {
	Start    int64  `json:"t"` // bucket open time (ms)
	Interval string `json:"i"`
	Open     string `json:"o"`
	High     string `json:"h"`
	Low      string `json:"l"`
	Close    string `json:"c"`
	Volume   string `json:"v"`
	Closed   bool   `json:"x"` // bucket is final
}

// Handler receives socket lifecycle events. A Transport may call it from any
// goroutine.
type Handler interface {
	OnOpen()
	OnMessage(msg []byte)
	OnError(err error)
	// OnClose fires once per connection, after a failed dial too.
	OnClose()
}

// Conn is one open (or opening) socket.
type Conn interface {
	// Close tears the socket down. A callback already racing with Close may
	// still arrive; the manager drops it by generation.
	Close() error
}

// Transport opens sockets. Open never blocks on the network; dial failures
// surface as OnError followed by OnClose.
type Transport interface {
	Open(url string, h Handler) Conn
}

// Endpoints maps a watched pair to its stream URLs.
type Endpoints interface {
	TickerURL(p market.WatchedPair) string
	KlineURL(p market.WatchedPair, interval string) string
}

// HistoryFetcher loads the bars shown before the live kline stream opens.
type HistoryFetcher interface {
	FetchKlines(ctx context.Context, p market.WatchedPair, interval string, limit int) ([]market.KlineBar, error)
}

// Update is published after a pair's stored state changed.
type Update struct {
	Key     market.PairKey
	Channel Channel
	Kind    string // "ticker", "update", "new", "history" or a ConnState
}
