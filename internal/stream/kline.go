package stream

import (
	"context"
	"errors"

	"coinwatch/internal/market"
	"coinwatch/internal/memorystore"
	"coinwatch/internal/metrics"

	"go.uber.org/zap"
)

// klineStream seeds a pair's chart from REST history and then follows the
// live kline stream. The socket is only opened once the history request has
// finished, successfully or not.
type klineStream struct {
	pair   market.WatchedPair
	link   *link
	loaded bool
	cancel context.CancelFunc
	closed bool
}

func (m *Manager) startKline(p market.WatchedPair) *klineStream {
	ks := &klineStream{pair: p}
	ks.link = newLink(m, p.PairKey, ChannelKline, m.endpoints.KlineURL(p, m.interval), func(msg []byte) {
		m.handleKline(ks, msg)
	})

	ctx, cancel := context.WithTimeout(context.Background(), m.historyTimeout)
	ks.cancel = cancel
	m.spawn(func() {
		bars, err := m.history.FetchKlines(ctx, p, m.interval, m.historyLimit)
		m.dispatcher.Post(func() {
			cancel()
			m.finishHistory(ks, bars, err)
		})
	})
	return ks
}

func (m *Manager) finishHistory(ks *klineStream, bars []market.KlineBar, err error) {
	if ks.closed {
		return
	}
	if err != nil {
		// fail open: an empty chart still gets live bars
		ks.link.logger.Warn("kline history unavailable", zap.Error(err))
	} else {
		m.klines.Seed(ks.pair.PairKey, bars)
		ks.link.logger.Debug("kline history loaded", zap.Int("bars", len(bars)))
	}
	ks.loaded = true
	m.publish(ks.pair.PairKey, ChannelKline, "history")
	ks.link.open()
}

func (m *Manager) stopKline(ks *klineStream) {
	ks.closed = true
	ks.cancel()
	ks.link.close()
	m.klines.Delete(ks.pair.PairKey)
}

func (m *Manager) handleKline(ks *klineStream, msg []byte) {
	bar, err := decodeKline(msg)
	if errors.Is(err, errNoKline) {
		return
	}
	if err != nil {
		metrics.DroppedTotal.WithLabelValues(string(ChannelKline)).Inc()
		ks.link.logger.Warn("dropping kline message", zap.Error(err))
		return
	}

	kind := m.klines.Apply(ks.pair.PairKey, bar)
	if kind == memorystore.KindIgnored {
		// out-of-order bucket, defined no-op
		return
	}
	metrics.AppliedTotal.WithLabelValues(string(ChannelKline)).Inc()
	m.publish(ks.pair.PairKey, ChannelKline, string(kind))
}
