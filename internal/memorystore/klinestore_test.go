package memorystore

import (
	"testing"

	"coinwatch/internal/market"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var btc = market.PairKey{Symbol: "BTC/USDT", Market: market.Spot}

func bar(t int64, c float64) market.KlineBar {
	return market.KlineBar{Time: t, Open: c, High: c, Low: c, Close: c, Volume: 1}
}

func assertAscending(t *testing.T, bars []market.KlineBar) {
	t.Helper()
	for i := 1; i < len(bars); i++ {
		require.Greater(t, bars[i].Time, bars[i-1].Time, "bars %d and %d", i-1, i)
	}
}

// go test -v --run TestApplySameBucketUpdatesInPlace
func TestApplySameBucketUpdatesInPlace(t *testing.T) {
	s := NewKlineStore(30)
	s.Seed(btc, []market.KlineBar{bar(60, 1), bar(120, 2)})

	assert.Equal(t, KindUpdate, s.Apply(btc, bar(120, 3)))
	assert.Equal(t, KindUpdate, s.Apply(btc, bar(120, 4)))

	got := s.GetBySymbol(btc)
	require.Len(t, got, 2)
	assert.Equal(t, 4.0, got[1].Close)
	assert.Equal(t, KindUpdate, s.LastUpdate(btc))
}

// go test -v --run TestApplyNewBucketAppendsAndEvicts
func TestApplyNewBucketAppendsAndEvicts(t *testing.T) {
	s := NewKlineStore(30)
	var seed []market.KlineBar
	for i := int64(1); i <= 30; i++ {
		seed = append(seed, bar(i*60, float64(i)))
	}
	s.Seed(btc, seed)

	assert.Equal(t, KindNew, s.Apply(btc, bar(31*60, 31)))

	got := s.GetBySymbol(btc)
	require.Len(t, got, 30)
	assert.Equal(t, int64(2*60), got[0].Time)
	assert.Equal(t, int64(31*60), got[29].Time)
	assertAscending(t, got)
}

// go test -v --run TestApplyOlderBucketIgnored
func TestApplyOlderBucketIgnored(t *testing.T) {
	s := NewKlineStore(30)
	s.Seed(btc, []market.KlineBar{bar(60, 1), bar(120, 2)})
	assert.Equal(t, KindNew, s.Apply(btc, bar(180, 3)))

	before := s.GetBySymbol(btc)
	assert.Equal(t, KindIgnored, s.Apply(btc, bar(60, 99)))
	assert.Equal(t, before, s.GetBySymbol(btc))
	// last classification is untouched by an ignored bar
	assert.Equal(t, KindNew, s.LastUpdate(btc))
}

// go test -v --run TestApplyOnEmptySeries
func TestApplyOnEmptySeries(t *testing.T) {
	s := NewKlineStore(0)
	assert.Equal(t, KindNew, s.Apply(btc, bar(60, 1)))
	assert.Len(t, s.GetBySymbol(btc), 1)
}

// go test -v --run TestBoundAndOrderUnderRandomWalk
func TestBoundAndOrderUnderRandomWalk(t *testing.T) {
	s := NewKlineStore(30)
	times := []int64{5, 5, 6, 4, 7, 7, 3, 8, 9, 10, 2, 11}
	for i := int64(12); i < 80; i++ {
		times = append(times, i, i-3, i)
	}
	for _, tm := range times {
		s.Apply(btc, bar(tm, float64(tm)))
		got := s.GetBySymbol(btc)
		require.LessOrEqual(t, len(got), 30)
		assertAscending(t, got)
	}
}

// go test -v --run TestSeedDropsDisorderAndTrims
func TestSeedDropsDisorderAndTrims(t *testing.T) {
	s := NewKlineStore(3)
	s.Seed(btc, []market.KlineBar{bar(1, 1), bar(2, 2), bar(2, 2), bar(1, 1), bar(3, 3), bar(4, 4)})

	got := s.GetBySymbol(btc)
	require.Len(t, got, 3)
	assert.Equal(t, []int64{2, 3, 4}, []int64{got[0].Time, got[1].Time, got[2].Time})
	assert.Equal(t, 3, s.CountAll())

	s.Delete(btc)
	assert.Nil(t, s.GetBySymbol(btc))
}
