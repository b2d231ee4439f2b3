package binance

import "encoding/json"

// ExchangeInfoResponse is the subset of /exchangeInfo used to build the
// catalog. Spot and futures share the shape; ContractType is futures only.
type ExchangeInfoResponse struct {
	Symbols []SymbolInfo `json:"symbols"`
}

type SymbolInfo struct {
	Symbol       string `json:"symbol"`       // e.g. "BTCUSDT"
	Status       string `json:"status"`       // "TRADING" when listed
	BaseAsset    string `json:"baseAsset"`    // e.g. "BTC"
	QuoteAsset   string `json:"quoteAsset"`   // e.g. "USDT"
	ContractType string `json:"contractType"` // e.g. "PERPETUAL" (futures)
}

// AlphaTokenListResponse is the envelope of the alpha token list.
type AlphaTokenListResponse struct {
	Code    string       `json:"code"` // "000000" on success
	Message string       `json:"message"`
	Data    []AlphaToken `json:"data"`
}

type AlphaToken struct {
	TokenID          string `json:"tokenId"`
	AlphaID          string `json:"alphaId"` // stream symbol, e.g. "ALPHA_105"
	Symbol           string `json:"symbol"`
	Name             string `json:"name"`
	Price            string `json:"price"`
	PercentChange24h string `json:"percentChange24h"`
	Volume24h        string `json:"volume24h"`
	MarketCap        string `json:"marketCap"`
}

// KlineRow is one REST kline: [openTime, open, high, low, close, volume, ...].
// Only indices 0-5 are read.
type KlineRow []json.RawMessage
