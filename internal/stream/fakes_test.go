package stream

import (
	"context"
	"fmt"
	"testing"
	"time"

	"coinwatch/internal/clock"
	"coinwatch/internal/market"
	"coinwatch/internal/memorystore"

	"go.uber.org/zap"
)

type fakeConn struct {
	url    string
	h      Handler
	closed bool // closed by the manager
	dead   bool // closed by the "server"
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func (c *fakeConn) open()           { c.h.OnOpen() }
func (c *fakeConn) send(msg string) { c.h.OnMessage([]byte(msg)) }
func (c *fakeConn) fail(err error)  { c.h.OnError(err) }
func (c *fakeConn) drop()           { c.dead = true; c.h.OnClose() }
func (c *fakeConn) alive() bool     { return !c.closed && !c.dead }

type fakeTransport struct {
	conns []*fakeConn
}

func (t *fakeTransport) Open(url string, h Handler) Conn {
	c := &fakeConn{url: url, h: h}
	t.conns = append(t.conns, c)
	return c
}

// live returns the URLs of sockets that are neither closed nor dropped.
func (t *fakeTransport) live() map[string]int {
	out := make(map[string]int)
	for _, c := range t.conns {
		if c.alive() {
			out[c.url]++
		}
	}
	return out
}

// last returns the newest socket opened for url.
func (t *fakeTransport) last(url string) *fakeConn {
	for i := len(t.conns) - 1; i >= 0; i-- {
		if t.conns[i].url == url {
			return t.conns[i]
		}
	}
	return nil
}

func (t *fakeTransport) opens(url string) int {
	n := 0
	for _, c := range t.conns {
		if c.url == url {
			n++
		}
	}
	return n
}

type fakeEndpoints struct{}

func (fakeEndpoints) TickerURL(p market.WatchedPair) string {
	return "ticker/" + p.ID() + "/" + p.StreamSymbol()
}

func (fakeEndpoints) KlineURL(p market.WatchedPair, interval string) string {
	return "kline/" + p.ID() + "/" + interval
}

type fakeHistory struct {
	bars  map[market.PairKey][]market.KlineBar
	err   error
	calls int
}

func (h *fakeHistory) FetchKlines(ctx context.Context, p market.WatchedPair, interval string, limit int) ([]market.KlineBar, error) {
	h.calls++
	if h.err != nil {
		return nil, h.err
	}
	return h.bars[p.PairKey], nil
}

type harness struct {
	t         *testing.T
	clock     *clock.Fake
	transport *fakeTransport
	history   *fakeHistory
	prices    *memorystore.MemoryPriceStore
	klines    *memorystore.MemoryKlineStore
	spawned   []func()
	updates   []Update
	m         *Manager
}

func newHarness(t *testing.T) *harness {
	h := &harness{
		t:         t,
		clock:     clock.NewFake(time.Unix(1_700_000_000, 0)),
		transport: &fakeTransport{},
		history:   &fakeHistory{bars: make(map[market.PairKey][]market.KlineBar)},
		prices:    memorystore.NewPriceStore(20),
		klines:    memorystore.NewKlineStore(30),
	}
	h.m = NewManager(Options{
		Transport:  h.transport,
		Endpoints:  fakeEndpoints{},
		History:    h.history,
		Clock:      h.clock,
		Dispatcher: Inline{},
		Logger:     zap.NewNop(),
		Prices:     h.prices,
		Klines:     h.klines,
		Backoff:    Backoff{Base: time.Second, MaxAttempts: 5},
		Throttle:   200 * time.Millisecond,
		Spawn:      func(f func()) { h.spawned = append(h.spawned, f) },
		OnUpdate:   func(u Update) { h.updates = append(h.updates, u) },
	})
	return h
}

// runSpawned completes every pending history request.
func (h *harness) runSpawned() {
	pending := h.spawned
	h.spawned = nil
	for _, f := range pending {
		f()
	}
}

func watched(ids ...string) []market.WatchedPair {
	out := make([]market.WatchedPair, 0, len(ids))
	for _, id := range ids {
		k, err := market.ParsePairID(id)
		if err != nil {
			panic(err)
		}
		out = append(out, market.WatchedPair{PairKey: k})
	}
	return out
}

func key(id string) market.PairKey {
	k, err := market.ParsePairID(id)
	if err != nil {
		panic(err)
	}
	return k
}

func tickerURL(id string) string {
	return fakeEndpoints{}.TickerURL(watched(id)[0])
}

func klineURL(id string) string {
	return fakeEndpoints{}.KlineURL(watched(id)[0], DefaultInterval)
}

func tickerMsg(price, change float64) string {
	return fmt.Sprintf(`{"e":"24hrTicker","s":"BTCUSDT","c":"%g","P":"%g","h":"110","l":"90","v":"1234.5"}`, price, change)
}

func klineMsg(openMs int64, closePrice float64) string {
	return fmt.Sprintf(`{"e":"kline","s":"BTCUSDT","k":{"t":%d,"i":"1m","o":"1","h":"2","l":"0.5","c":"%g","v":"10","x":false}}`, openMs, closePrice)
}
