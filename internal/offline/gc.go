package offline

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/linktree/internal/logger"
)

// CollectGarbage removes dynamic cache entries stored more than maxAge ago.
// It returns the number of entries removed.
func (c *Controller) CollectGarbage(ctx context.Context, maxAge time.Duration) (int, error) {
	cache, err := c.caches.Open(ctx, c.names.Dynamic)
	if err != nil {
		return 0, fmt.Errorf("failed to open dynamic cache: %w", err)
	}

	entries, err := cache.Entries(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list dynamic cache: %w", err)
	}

	cutoff := c.now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.Response.StoredAt.After(cutoff) {
			continue
		}
		ok, err := cache.Delete(ctx, e.Key)
		if err != nil {
			c.log.Warn("failed to evict cache entry", logger.String("key", e.Key), logger.Error(err))
			continue
		}
		if ok {
			removed++
		}
	}

	return removed, nil
}
