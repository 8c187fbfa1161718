package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/linktree/internal/logger"
)

const (
	// DefaultCacheMaxAge is the age after which dynamic cache entries are evicted
	DefaultCacheMaxAge = 7 * 24 * time.Hour
)

// Collector evicts cached responses older than maxAge.
type Collector interface {
	CollectGarbage(ctx context.Context, maxAge time.Duration) (int, error)
}

// GarbageCollector periodically trims the offline dynamic cache
type GarbageCollector struct {
	caches   Collector
	logger   logger.Logger
	interval time.Duration
	maxAge   time.Duration
	stopCh   chan struct{}
}

// NewGarbageCollector creates a new garbage collector
func NewGarbageCollector(
	caches Collector,
	log logger.Logger,
	interval time.Duration,
	maxAge time.Duration,
) *GarbageCollector {
	if maxAge <= 0 {
		maxAge = DefaultCacheMaxAge
	}

	return &GarbageCollector{
		caches:   caches,
		logger:   log,
		interval: interval,
		maxAge:   maxAge,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic garbage collection process
func (gc *GarbageCollector) Start(ctx context.Context) error {
	// Run immediately on start
	if err := gc.Collect(ctx); err != nil {
		gc.logger.Warn("initial garbage collection failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(gc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := gc.Collect(ctx); err != nil {
					gc.logger.Error("garbage collection failed",
						logger.Error(err))
				}
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the garbage collector
func (gc *GarbageCollector) Stop() {
	close(gc.stopCh)
}

// Collect evicts dynamic cache entries older than the max age.
func (gc *GarbageCollector) Collect(ctx context.Context) error {
	gc.logger.Debug("running cache garbage collection")

	evicted, err := gc.caches.CollectGarbage(ctx, gc.maxAge)
	if evicted > 0 {
		gc.logger.Info("garbage collection completed",
			logger.Int("evicted", evicted),
			logger.Duration("max_age", gc.maxAge))
	} else if err == nil {
		gc.logger.Debug("no cache entries to garbage collect")
	}
	return err
}
