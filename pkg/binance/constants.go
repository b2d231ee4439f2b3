package binance

import "fmt"

// KlineInterval is the interval type used for API requests
type KlineInterval string

// KlineIntervalMeta holds the API value of a kline interval.
type KlineIntervalMeta struct {
	APIValue string
}

const (
	Interval1Min    KlineInterval = "1m"
	Interval3Min    KlineInterval = "3m"
	Interval5Min    KlineInterval = "5m"
	Interval15Min   KlineInterval = "15m"
	Interval30Min   KlineInterval = "30m"
	Interval1Hour   KlineInterval = "1h"
	Interval2Hour   KlineInterval = "2h"
	Interval4Hour   KlineInterval = "4h"
	Interval6Hour   KlineInterval = "6h"
	Interval12Hour  KlineInterval = "12h"
	IntervalDaily   KlineInterval = "1d"
	IntervalWeekly  KlineInterval = "1w"
	IntervalMonthly KlineInterval = "1M"
)

var validKlineIntervals = map[KlineInterval]KlineIntervalMeta{
	Interval1Min:    {APIValue: "1m"},
	Interval3Min:    {APIValue: "3m"},
	Interval5Min:    {APIValue: "5m"},
	Interval15Min:   {APIValue: "15m"},
	Interval30Min:   {APIValue: "30m"},
	Interval1Hour:   {APIValue: "1h"},
	Interval2Hour:   {APIValue: "2h"},
	Interval4Hour:   {APIValue: "4h"},
	Interval6Hour:   {APIValue: "6h"},
	Interval12Hour:  {APIValue: "12h"},
	IntervalDaily:   {APIValue: "1d"},
	IntervalWeekly:  {APIValue: "1w"},
	IntervalMonthly: {APIValue: "1M"},
}

// ParseKlineInterval parses a string into a valid KlineIntervalMeta
func ParseKlineInterval(s string) (KlineIntervalMeta, error) {
	meta, ok := validKlineIntervals[KlineInterval(s)]
	if !ok {
		return KlineIntervalMeta{}, fmt.Errorf("invalid KlineInterval: %s", s)
	}
	return meta, nil
}

const (
	statusTrading     = "TRADING"
	quoteUSDT         = "USDT"
	contractPerpetual = "PERPETUAL"
	alphaSuccessCode  = "000000"

	spotExchangeInfoPath    = "/api/v3/exchangeInfo"
	futuresExchangeInfoPath = "/fapi/v1/exchangeInfo"
	spotKlinesPath          = "/api/v3/klines"
	futuresKlinesPath       = "/fapi/v1/klines"
	alphaTokenListPath      = "/bapi/defi/v1/public/wallet-direct/buw/wallet/cex/alpha/all/token/list"
)
