package symbolmeta

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"coinwatch/internal/market"
	"coinwatch/internal/snapshot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRefresherRunsOnSchedule(t *testing.T) {
	var runs atomic.Int32
	r := NewRefresher(50*time.Millisecond, func(ctx context.Context) {
		runs.Add(1)
	}, zap.NewNop())

	require.NoError(t, r.Start())
	assert.Zero(t, runs.Load(), "first run waits one interval")

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	r.Stop()

	stopped := runs.Load()
	time.Sleep(150 * time.Millisecond)
	assert.LessOrEqual(t, runs.Load(), stopped+1)
}

func TestRefresherRejectsZeroInterval(t *testing.T) {
	r := NewRefresher(0, func(context.Context) {}, zap.NewNop())
	assert.Error(t, r.Start())
}

type staticSource struct{}

func (staticSource) GetSpotPairs(context.Context) ([]market.Pair, error) {
	return []market.Pair{{Symbol: "BTC/USDT", BaseAsset: "BTC", Market: market.Spot}}, nil
}

func (staticSource) GetFuturesPairs(context.Context) ([]market.Pair, error) { return nil, nil }

func (staticSource) GetAlphaPairs(context.Context) ([]market.Pair, error) { return nil, nil }

func TestCatalogRefreshFn(t *testing.T) {
	loader := snapshot.NewCatalogLoader(staticSource{}, time.Second, time.Hour, zap.NewNop())

	var got *market.Catalog
	CatalogRefreshFn(loader, func(c *market.Catalog) { got = c })(context.Background())

	require.NotNil(t, got)
	assert.Equal(t, 1, got.Len())
	assert.Same(t, loader.Cached(), got)
}
