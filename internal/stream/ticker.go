package stream

import (
	"coinwatch/internal/market"
	"coinwatch/internal/metrics"

	"go.uber.org/zap"
)

// tickerStream feeds one pair's 24h ticker into the price store, at most once
// per throttle window.
type tickerStream struct {
	pair     market.WatchedPair
	link     *link
	throttle *Throttle[market.PriceSample]
}

func (m *Manager) startTicker(p market.WatchedPair) *tickerStream {
	ts := &tickerStream{pair: p}
	ts.throttle = NewThrottle(m.clock, m.throttle, m.dispatcher.Post, func(s market.PriceSample) {
		m.applyTicker(p.PairKey, s)
	})
	ts.link = newLink(m, p.PairKey, ChannelTicker, m.endpoints.TickerURL(p), func(msg []byte) {
		m.handleTicker(ts, msg)
	})
	ts.link.open()
	return ts
}

func (m *Manager) stopTicker(ts *tickerStream) {
	ts.throttle.Stop()
	ts.link.close()
	m.prices.Delete(ts.pair.PairKey)
}

func (m *Manager) handleTicker(ts *tickerStream, msg []byte) {
	sample, err := decodeTicker(msg, m.clock.Now())
	if err != nil {
		metrics.DroppedTotal.WithLabelValues(string(ChannelTicker)).Inc()
		ts.link.logger.Warn("dropping ticker message", zap.Error(err))
		return
	}
	ts.throttle.Submit(sample)
}

// applyTicker stores s with a trend derived from the last applied price.
func (m *Manager) applyTicker(key market.PairKey, s market.PriceSample) {
	prev, ok := m.prices.LastPrice(key)
	s.Trend = ClassifyTrend(prev, ok, s.Price, s.ChangePercent)
	s.Timestamp = m.clock.Now()
	m.prices.Put(key, s)

	metrics.AppliedTotal.WithLabelValues(string(ChannelTicker)).Inc()
	m.publish(key, ChannelTicker, string(ChannelTicker))
}
