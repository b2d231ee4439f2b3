package memorystore

import (
	"sync"

	"coinwatch/internal/market"
)

const DefaultKlineCap = 30

// MemoryKlineStore keeps a bounded, time-ascending candlestick series per
// watched pair.
type MemoryKlineStore struct {
	globalMu sync.RWMutex
	data     map[market.PairKey]*symbolKlineStore
	cap      int
}

type symbolKlineStore struct {
	mu         sync.Mutex
	klines     []market.KlineBar
	lastUpdate UpdateKind
}

func NewKlineStore(capacity int) *MemoryKlineStore {
	if capacity <= 0 {
		capacity = DefaultKlineCap
	}
	return &MemoryKlineStore{
		data: make(map[market.PairKey]*symbolKlineStore),
		cap:  capacity,
	}
}

func (s *MemoryKlineStore) series(key market.PairKey) *symbolKlineStore {
	// Fast path: lock per-symbol store only
	s.globalMu.RLock()
	store, ok := s.data[key]
	s.globalMu.RUnlock()
	if ok {
		return store
	}

	s.globalMu.Lock()
	defer s.globalMu.Unlock()
	if store, ok = s.data[key]; !ok {
		store = &symbolKlineStore{}
		s.data[key] = store
	}
	return store
}

// Seed replaces the series with a history snapshot. Bars must be
// time-ascending; out-of-order or duplicate buckets are dropped and only the
// newest cap bars are kept.
func (s *MemoryKlineStore) Seed(key market.PairKey, bars []market.KlineBar) {
	clean := make([]market.KlineBar, 0, len(bars))
	for _, b := range bars {
		if n := len(clean); n > 0 && b.Time <= clean[n-1].Time {
			continue
		}
		clean = append(clean, b)
	}
	if len(clean) > s.cap {
		clean = clean[len(clean)-s.cap:]
	}

	store := s.series(key)
	store.mu.Lock()
	store.klines = clean
	store.lastUpdate = KindIgnored
	store.mu.Unlock()
}

// Apply merges one live bar. A bar in the last bucket replaces it, a newer
// bucket is appended (evicting the oldest past cap), and anything older is
// ignored.
func (s *MemoryKlineStore) Apply(key market.PairKey, bar market.KlineBar) UpdateKind {
	store := s.series(key)
	store.mu.Lock()
	defer store.mu.Unlock()

	n := len(store.klines)
	switch {
	case n == 0 || bar.Time > store.klines[n-1].Time:
		if n >= s.cap {
			copy(store.klines, store.klines[1:])
			store.klines = store.klines[:n-1]
		}
		store.klines = append(store.klines, bar)
		store.lastUpdate = KindNew
	case bar.Time == store.klines[n-1].Time:
		store.klines[n-1] = bar
		store.lastUpdate = KindUpdate
	default:
		return KindIgnored
	}
	return store.lastUpdate
}

// GetBySymbol returns a copy of the series for key.
func (s *MemoryKlineStore) GetBySymbol(key market.PairKey) []market.KlineBar {
	s.globalMu.RLock()
	store, ok := s.data[key]
	s.globalMu.RUnlock()
	if !ok {
		return nil
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	cp := make([]market.KlineBar, len(store.klines))
	copy(cp, store.klines)
	return cp
}

// LastUpdate reports how the most recent live bar changed the series.
func (s *MemoryKlineStore) LastUpdate(key market.PairKey) UpdateKind {
	s.globalMu.RLock()
	store, ok := s.data[key]
	s.globalMu.RUnlock()
	if !ok {
		return KindIgnored
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.lastUpdate
}

// Delete drops the series for key.
func (s *MemoryKlineStore) Delete(key market.PairKey) {
	s.globalMu.Lock()
	delete(s.data, key)
	s.globalMu.Unlock()
}

// CountAll returns the total number of bars stored across all pairs.
func (s *MemoryKlineStore) CountAll() int {
	s.globalMu.RLock()
	defer s.globalMu.RUnlock()

	total := 0
	for _, store := range s.data {
		store.mu.Lock()
		total += len(store.klines)
		store.mu.Unlock()
	}
	return total
}
