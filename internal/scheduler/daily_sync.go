package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/linktree/internal/logger"
)

// PeriodicSyncer fires a periodic background sync tag.
type PeriodicSyncer interface {
	PeriodicSync(tag string) error
}

// DailySync fires a periodic sync tag on an interval.
type DailySync struct {
	target   PeriodicSyncer
	tag      string
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewDailySync creates the periodic sync job for tag.
func NewDailySync(target PeriodicSyncer, tag string, log logger.Logger, interval time.Duration) *DailySync {
	return &DailySync{
		target:   target,
		tag:      tag,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start fires the tag on every tick. Nothing fires at start.
func (ds *DailySync) Start(ctx context.Context) error {
	ticker := time.NewTicker(ds.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ds.Fire()
			case <-ds.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Fire hands the tag to the target once.
func (ds *DailySync) Fire() {
	if err := ds.target.PeriodicSync(ds.tag); err != nil {
		ds.logger.Warn("periodic sync failed",
			logger.String("tag", ds.tag),
			logger.Error(err))
		return
	}
	ds.logger.Debug("periodic sync requested", logger.String("tag", ds.tag))
}

// Stop stops the job
func (ds *DailySync) Stop() {
	close(ds.stopCh)
}
