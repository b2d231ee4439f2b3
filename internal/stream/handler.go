package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"coinwatch/internal/market"
)

var errNoKline = errors.New("message carries no kline")

// decodeTicker parses a ticker payload into a sample without a trend.
func decodeTicker(msg []byte, now time.Time) (market.PriceSample, error) {
	var parsed TickerMessage
	if err := json.Unmarshal(msg, &parsed); err != nil {
		return market.PriceSample{}, fmt.Errorf("parse ticker payload: %w", err)
	}

	price, err := strconv.ParseFloat(parsed.Close, 64)
	if err != nil {
		return market.PriceSample{}, fmt.Errorf("parse ticker price %q: %w", parsed.Close, err)
	}

	return market.PriceSample{
		Symbol:        parsed.Symbol,
		Price:         price,
		ChangePercent: parseOrZero(parsed.ChangePercent),
		High:          parseOrZero(parsed.High),
		Low:           parseOrZero(parsed.Low),
		Volume:        parseOrZero(parsed.Volume),
		Timestamp:     now,
	}, nil
}

// decodeKline parses a kline payload. Messages without a "k" object return
// errNoKline.
func decodeKline(msg []byte) (market.KlineBar, error) {
	var parsed KlineMessage
	if err := json.Unmarshal(msg, &parsed); err != nil {
		return market.KlineBar{}, fmt.Errorf("parse kline payload: %w", err)
	}
	if parsed.Kline == nil {
		return market.KlineBar{}, errNoKline
	}
	k := parsed.Kline

	values := make([]float64, 5)
	for i, s := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return market.KlineBar{}, fmt.Errorf("parse kline field %q: %w", s, err)
		}
		values[i] = v
	}

	return market.KlineBar{
		Time:   k.Start / 1000, // ms -> s
		Open:   values[0],
		High:   values[1],
		Low:    values[2],
		Close:  values[3],
		Volume: values[4],
	}, nil
}

func parseOrZero(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
