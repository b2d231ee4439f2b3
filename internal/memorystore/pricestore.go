package memorystore

import (
	"sync"

	"coinwatch/internal/market"
)

const DefaultTrendPoints = 20

// MemoryPriceStore keeps the latest ticker sample per watched pair. No
// history is kept beyond the trend line.
type MemoryPriceStore struct {
	mu     sync.RWMutex
	data   map[market.PairKey]*PriceState
	points int
}

func NewPriceStore(points int) *MemoryPriceStore {
	if points <= 0 {
		points = DefaultTrendPoints
	}
	return &MemoryPriceStore{
		data:   make(map[market.PairKey]*PriceState),
		points: points,
	}
}

// LastPrice returns the price of the previously stored sample.
func (s *MemoryPriceStore) LastPrice(key market.PairKey) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.data[key]
	if !ok {
		return 0, false
	}
	return st.Sample.Price, true
}

// Put stores sample as the latest value and pushes its price onto the
// trend line.
func (s *MemoryPriceStore) Put(key market.PairKey, sample market.PriceSample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.data[key]
	if !ok {
		st = &PriceState{TrendLine: make([]float64, 0, s.points)}
		s.data[key] = st
	}
	st.Sample = sample
	if len(st.TrendLine) >= s.points {
		copy(st.TrendLine, st.TrendLine[1:])
		st.TrendLine = st.TrendLine[:len(st.TrendLine)-1]
	}
	st.TrendLine = append(st.TrendLine, sample.Price)
}

// Get returns a copy of the state for key.
func (s *MemoryPriceStore) Get(key market.PairKey) (PriceState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.data[key]
	if !ok {
		return PriceState{}, false
	}
	line := make([]float64, len(st.TrendLine))
	copy(line, st.TrendLine)
	return PriceState{Sample: st.Sample, TrendLine: line}, true
}

// Delete discards everything cached for key.
func (s *MemoryPriceStore) Delete(key market.PairKey) {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
}

// Len returns the number of pairs with a cached sample.
func (s *MemoryPriceStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
