package binance

import (
	"encoding/json"
	"fmt"
	"strconv"

	"coinwatch/internal/market"
)

// ParseKlineRows converts REST kline rows into bars, open time in seconds.
// Incomplete or unparsable rows are skipped.
func ParseKlineRows(raw []KlineRow) []market.KlineBar {
	out := make([]market.KlineBar, 0, len(raw))

	for _, row := range raw {
		if len(row) < 6 {
			continue // skip incomplete row
		}

		var openMs int64
		if err := json.Unmarshal(row[0], &openMs); err != nil {
			continue
		}

		values := make([]float64, 5)
		ok := true
		for i := 1; i <= 5; i++ {
			v, err := rawFloat(row[i])
			if err != nil {
				ok = false
				break
			}
			values[i-1] = v
		}
		if !ok {
			continue
		}

		out = append(out, market.KlineBar{
			Time:   openMs / 1000,
			Open:   values[0],
			High:   values[1],
			Low:    values[2],
			Close:  values[3],
			Volume: values[4],
		})
	}
	return out
}

// rawFloat reads a number the API encodes either as a JSON string or a bare
// number.
func rawFloat(raw json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.ParseFloat(s, 64)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("not a number: %s", raw)
	}
	return f, nil
}
