package stream

import (
	"coinwatch/internal/clock"
	"coinwatch/internal/market"
	"coinwatch/internal/metrics"

	"go.uber.org/zap"
)

// link owns the socket of one stream and walks it through
// disconnected -> connecting -> connected -> disconnected/error, reconnecting
// with backoff. Every socket and retry timer is tagged with gen; callbacks
// carrying an older gen belong to a replaced connection and are dropped.
type link struct {
	m         *Manager
	key       market.PairKey
	channel   Channel
	url       string
	onMessage func(msg []byte)
	logger    *zap.Logger

	state    ConnState
	attempts int
	conn     Conn
	retry    clock.Timer
	gen      int
	closed   bool
}

func newLink(m *Manager, key market.PairKey, ch Channel, url string, onMessage func([]byte)) *link {
	return &link{
		m:         m,
		key:       key,
		channel:   ch,
		url:       url,
		onMessage: onMessage,
		state:     StateDisconnected,
		logger: m.logger.With(
			zap.String("symbol", key.Symbol),
			zap.String("market", string(key.Market)),
			zap.String("channel", string(ch)),
		),
	}
}

func (l *link) open() {
	if l.closed {
		return
	}
	if l.conn != nil {
		_ = l.conn.Close()
		l.conn = nil
	}
	l.gen++
	l.state = StateConnecting
	l.logger.Debug("opening stream", zap.String("url", l.url), zap.Int("attempt", l.attempts))
	l.conn = l.m.transport.Open(l.url, &linkHandler{l: l, gen: l.gen})
	l.m.publish(l.key, l.channel, string(l.state))
}

// close stops the stream for good: the socket, the retry timer, and any
// callback still queued for it.
func (l *link) close() {
	if l.closed {
		return
	}
	l.closed = true
	l.gen++
	if l.retry != nil {
		l.retry.Stop()
		l.retry = nil
	}
	if l.conn != nil {
		_ = l.conn.Close()
		l.conn = nil
	}
	if l.state == StateConnected {
		metrics.OpenConnections.WithLabelValues(string(l.channel)).Dec()
	}
	l.state = StateDisconnected
}

func (l *link) live(gen int) bool {
	return !l.closed && gen == l.gen
}

func (l *link) handleOpen() {
	l.state = StateConnected
	l.attempts = 0
	metrics.OpenConnections.WithLabelValues(string(l.channel)).Inc()
	l.logger.Info("stream connected")
	l.m.publish(l.key, l.channel, string(l.state))
}

func (l *link) handleError(err error) {
	if l.state == StateConnected {
		metrics.OpenConnections.WithLabelValues(string(l.channel)).Dec()
	}
	l.state = StateError
	l.logger.Warn("stream error", zap.Error(err))
	l.m.publish(l.key, l.channel, string(l.state))
}

func (l *link) handleClose() {
	if l.state == StateConnected {
		metrics.OpenConnections.WithLabelValues(string(l.channel)).Dec()
	}
	l.state = StateDisconnected
	l.conn = nil
	l.m.publish(l.key, l.channel, string(l.state))

	delay, ok := l.m.backoff.Next(l.attempts)
	if !ok {
		l.logger.Warn("stream left disconnected", zap.Int("attempts", l.attempts))
		return
	}

	gen := l.gen
	metrics.ReconnectsTotal.WithLabelValues(string(l.channel)).Inc()
	l.logger.Info("stream closed, reconnecting", zap.Duration("delay", delay), zap.Int("attempt", l.attempts+1))
	l.retry = l.m.clock.AfterFunc(delay, func() {
		l.m.dispatcher.Post(func() {
			if !l.live(gen) {
				return
			}
			l.retry = nil
			l.attempts++
			l.open()
		})
	})
}

// linkHandler adapts transport callbacks onto the dispatcher.
type linkHandler struct {
	l   *link
	gen int
}

func (h *linkHandler) OnOpen() {
	h.l.m.dispatcher.Post(func() {
		if h.l.live(h.gen) {
			h.l.handleOpen()
		}
	})
}

func (h *linkHandler) OnMessage(msg []byte) {
	h.l.m.dispatcher.Post(func() {
		if h.l.live(h.gen) {
			metrics.MessagesTotal.WithLabelValues(string(h.l.channel)).Inc()
			h.l.onMessage(msg)
		}
	})
}

func (h *linkHandler) OnError(err error) {
	h.l.m.dispatcher.Post(func() {
		if h.l.live(h.gen) {
			h.l.handleError(err)
		}
	})
}

func (h *linkHandler) OnClose() {
	h.l.m.dispatcher.Post(func() {
		if h.l.live(h.gen) {
			h.l.handleClose()
		}
	})
}
