package symbolmeta

import (
	"context"
	"fmt"
	"time"

	"coinwatch/internal/market"
	"coinwatch/internal/snapshot"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Refresher reruns a job every interval on a gocron scheduler. The first run
// happens one interval after Start.
type Refresher struct {
	scheduler *gocron.Scheduler
	interval  time.Duration
	job       func(ctx context.Context)
	logger    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewRefresher(interval time.Duration, job func(ctx context.Context), logger *zap.Logger) *Refresher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Refresher{
		scheduler: gocron.NewScheduler(time.UTC),
		interval:  interval,
		job:       job,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// CatalogRefreshFn force-reloads the catalog and hands the result to onLoad.
func CatalogRefreshFn(loader *snapshot.CatalogLoader, onLoad func(*market.Catalog)) func(ctx context.Context) {
	return func(ctx context.Context) {
		catalog, err := loader.Load(ctx, true)
		if err != nil {
			loader.Logger.Warn("scheduled catalog refresh failed", zap.Error(err))
			return
		}
		onLoad(catalog)
	}
}

// Start schedules the job and returns immediately.
func (r *Refresher) Start() error {
	if r.interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", r.interval)
	}

	_, err := r.scheduler.Every(r.interval).WaitForSchedule().SingletonMode().Do(func() {
		r.job(r.ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}

	r.scheduler.StartAsync()
	r.logger.Info("catalog refresh scheduled", zap.Duration("interval", r.interval))
	return nil
}

// Stop cancels a running job and stops the scheduler.
func (r *Refresher) Stop() {
	r.cancel()
	r.scheduler.Stop()
}
