package snapshot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"coinwatch/internal/clock"
	"coinwatch/internal/market"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PairSource lists tradable pairs per market. *binance.RESTClient satisfies it.
type PairSource interface {
	GetSpotPairs(ctx context.Context) ([]market.Pair, error)
	GetFuturesPairs(ctx context.Context) ([]market.Pair, error)
	GetAlphaPairs(ctx context.Context) ([]market.Pair, error)
}

// CatalogLoader builds the trading pair catalog and caches it for TTL.
type CatalogLoader struct {
	Source  PairSource
	Timeout time.Duration // per load, applied to all three requests
	TTL     time.Duration
	Clock   clock.Clock
	Logger  *zap.Logger

	mu       sync.Mutex
	cached   *market.Catalog
	loadedAt time.Time
}

func NewCatalogLoader(src PairSource, timeout, ttl time.Duration, logger *zap.Logger) *CatalogLoader {
	return &CatalogLoader{
		Source:  src,
		Timeout: timeout,
		TTL:     ttl,
		Clock:   clock.Real(),
		Logger:  logger,
	}
}

// Cached returns the last loaded catalog, or nil.
func (l *CatalogLoader) Cached() *market.Catalog {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cached
}

// Load returns the cached catalog while it is fresh, otherwise fetches spot,
// futures and alpha pairs in parallel. A failed alpha listing yields no alpha
// pairs. When the fetch fails the previous catalog is returned if there is one.
func (l *CatalogLoader) Load(ctx context.Context, force bool) (*market.Catalog, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.Clock.Now()
	if !force && l.cached != nil && now.Sub(l.loadedAt) < l.TTL {
		return l.cached, nil
	}

	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	var spot, futures, alpha []market.Pair
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		spot, err = l.Source.GetSpotPairs(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		futures, err = l.Source.GetFuturesPairs(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		alpha, err = l.Source.GetAlphaPairs(gctx)
		if err != nil {
			l.Logger.Warn("alpha token list unavailable", zap.Error(err))
			alpha = nil
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		if l.cached != nil {
			l.Logger.Warn("catalog refresh failed, keeping previous catalog",
				zap.Int("count", l.cached.Len()), zap.Error(err))
			return l.cached, nil
		}
		return nil, fmt.Errorf("load trading pairs: %w", err)
	}

	all := make([]market.Pair, 0, len(spot)+len(futures)+len(alpha))
	all = append(all, spot...)
	all = append(all, futures...)
	all = append(all, alpha...)

	l.cached = market.NewCatalog(all)
	l.loadedAt = now
	l.Logger.Info("loaded trading pairs",
		zap.Int("spot", len(spot)), zap.Int("futures", len(futures)), zap.Int("alpha", len(alpha)))

	return l.cached, nil
}
