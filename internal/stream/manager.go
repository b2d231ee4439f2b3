// Package stream keeps one ticker socket (and, for charts, one kline socket)
// open per watched pair, reconnecting with backoff and tearing sockets down
// as the watchlist changes.
//
// All state is owned by a single execution context, the Dispatcher.
// Manager methods must be called from it; transport and timer callbacks are
// posted back onto it.
package stream

import (
	"sort"
	"time"

	"coinwatch/internal/clock"
	"coinwatch/internal/market"
	"coinwatch/internal/memorystore"

	"go.uber.org/zap"
)

const (
	DefaultThrottle       = 200 * time.Millisecond
	DefaultInterval       = "1m"
	DefaultHistoryLimit   = 30
	DefaultHistoryTimeout = 10 * time.Second
)

// Options configures a Manager. Transport, Endpoints and History are
// required; everything else has a default.
type Options struct {
	Transport  Transport
	Endpoints  Endpoints
	History    HistoryFetcher
	Clock      clock.Clock
	Dispatcher Dispatcher
	Logger     *zap.Logger

	Prices *memorystore.MemoryPriceStore
	Klines *memorystore.MemoryKlineStore

	Backoff        Backoff
	Throttle       time.Duration
	Interval       string
	HistoryLimit   int
	HistoryTimeout time.Duration

	// Spawn runs blocking work (history requests) off the execution
	// context. Defaults to a new goroutine.
	Spawn func(func())
	// OnUpdate, if set, is called on the execution context after every
	// state change.
	OnUpdate func(Update)
}

// Manager is the registry of live streams, keyed by watched pair.
type Manager struct {
	transport  Transport
	endpoints  Endpoints
	history    HistoryFetcher
	clock      clock.Clock
	dispatcher Dispatcher
	logger     *zap.Logger
	prices     *memorystore.MemoryPriceStore
	klines     *memorystore.MemoryKlineStore

	backoff        Backoff
	throttle       time.Duration
	interval       string
	historyLimit   int
	historyTimeout time.Duration
	spawn          func(func())
	onUpdate       func(Update)

	tickers map[market.PairKey]*tickerStream
	charts  map[market.PairKey]*klineStream
}

// ReconcileResult counts the streams a Reconcile call opened and closed.
type ReconcileResult struct {
	Opened int
	Closed int
}

func NewManager(opts Options) *Manager {
	m := &Manager{
		transport:      opts.Transport,
		endpoints:      opts.Endpoints,
		history:        opts.History,
		clock:          opts.Clock,
		dispatcher:     opts.Dispatcher,
		logger:         opts.Logger,
		prices:         opts.Prices,
		klines:         opts.Klines,
		backoff:        opts.Backoff,
		throttle:       opts.Throttle,
		interval:       opts.Interval,
		historyLimit:   opts.HistoryLimit,
		historyTimeout: opts.HistoryTimeout,
		spawn:          opts.Spawn,
		onUpdate:       opts.OnUpdate,
		tickers:        make(map[market.PairKey]*tickerStream),
		charts:         make(map[market.PairKey]*klineStream),
	}
	if m.clock == nil {
		m.clock = clock.Real()
	}
	if m.dispatcher == nil {
		m.dispatcher = Inline{}
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if m.prices == nil {
		m.prices = memorystore.NewPriceStore(memorystore.DefaultTrendPoints)
	}
	if m.klines == nil {
		m.klines = memorystore.NewKlineStore(memorystore.DefaultKlineCap)
	}
	if m.backoff.Base <= 0 {
		m.backoff.Base = DefaultBackoffBase
	}
	if m.backoff.MaxAttempts <= 0 {
		m.backoff.MaxAttempts = DefaultMaxAttempts
	}
	if m.throttle <= 0 {
		m.throttle = DefaultThrottle
	}
	if m.interval == "" {
		m.interval = DefaultInterval
	}
	if m.historyLimit <= 0 {
		m.historyLimit = DefaultHistoryLimit
	}
	if m.historyTimeout <= 0 {
		m.historyTimeout = DefaultHistoryTimeout
	}
	if m.spawn == nil {
		m.spawn = func(f func()) { go f() }
	}
	return m
}

// Reconcile brings the open streams in line with the desired watchlist: a
// ticker stream per pair, plus a kline stream per pair when charts is set.
// Streams for pairs that left the list are closed and their cached state
// discarded. A pair whose endpoint changed (e.g. catalog metadata arrived)
// is restarted. Calling it again with the same input is a no-op.
func (m *Manager) Reconcile(pairs []market.WatchedPair, charts bool) ReconcileResult {
	desired := make(map[market.PairKey]market.WatchedPair, len(pairs))
	for _, p := range pairs {
		if _, dup := desired[p.PairKey]; !dup {
			desired[p.PairKey] = p
		}
	}
	var res ReconcileResult

	for key, ts := range m.tickers {
		p, ok := desired[key]
		if ok && m.endpoints.TickerURL(p) == ts.link.url {
			continue
		}
		m.stopTicker(ts)
		delete(m.tickers, key)
		res.Closed++
	}
	for key, ks := range m.charts {
		p, ok := desired[key]
		if ok && charts && m.endpoints.KlineURL(p, m.interval) == ks.link.url {
			continue
		}
		m.stopKline(ks)
		delete(m.charts, key)
		res.Closed++
	}

	for _, key := range sortedKeys(desired) {
		p := desired[key]
		if _, ok := m.tickers[key]; !ok {
			m.tickers[key] = m.startTicker(p)
			res.Opened++
		}
		if _, ok := m.charts[key]; charts && !ok {
			m.charts[key] = m.startKline(p)
			res.Opened++
		}
	}

	if res.Opened > 0 || res.Closed > 0 {
		m.logger.Info("reconciled streams",
			zap.Int("opened", res.Opened),
			zap.Int("closed", res.Closed),
			zap.Int("tickers", len(m.tickers)),
			zap.Int("charts", len(m.charts)),
		)
	}
	return res
}

// Close tears every stream down.
func (m *Manager) Close() {
	m.Reconcile(nil, false)
}

// Status reports the ticker connection state of key.
func (m *Manager) Status(key market.PairKey) (ConnState, bool) {
	ts, ok := m.tickers[key]
	if !ok {
		return StateDisconnected, false
	}
	return ts.link.state, true
}

// KlineStatus reports the kline connection state of key and whether its
// history request has completed.
func (m *Manager) KlineStatus(key market.PairKey) (state ConnState, loaded bool, ok bool) {
	ks, ok := m.charts[key]
	if !ok {
		return StateDisconnected, false, false
	}
	return ks.link.state, ks.loaded, true
}

// Watched returns the keys with an open ticker stream, sorted.
func (m *Manager) Watched() []market.PairKey {
	keys := make([]market.PairKey, 0, len(m.tickers))
	for k := range m.tickers {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

// Charted returns the keys with a kline stream, sorted.
func (m *Manager) Charted() []market.PairKey {
	keys := make([]market.PairKey, 0, len(m.charts))
	for k := range m.charts {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

func (m *Manager) publish(key market.PairKey, ch Channel, kind string) {
	if m.onUpdate != nil {
		m.onUpdate(Update{Key: key, Channel: ch, Kind: kind})
	}
}

func sortedKeys(set map[market.PairKey]market.WatchedPair) []market.PairKey {
	keys := make([]market.PairKey, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

func sortKeys(keys []market.PairKey) {
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].ID() < keys[j].ID()
	})
}
