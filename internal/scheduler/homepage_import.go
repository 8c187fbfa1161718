package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/linktree/internal/domain"
	"github.com/MrSnakeDoc/linktree/internal/logger"
	"github.com/MrSnakeDoc/linktree/internal/sources/homepage"
	"github.com/MrSnakeDoc/linktree/internal/tree"
)

// Merger upserts imported records into the tree.
type Merger interface {
	Merge(ctx context.Context, links []domain.Link, groups []domain.Group) (tree.MergeResult, error)
}

// HomepageImporter periodically merges Homepage services and bookmarks
// into the tree. Either file may be left out.
type HomepageImporter struct {
	services      *homepage.Loader[homepage.ServicesConfig]
	bookmarks     *homepage.Loader[homepage.BookmarksConfig]
	mapper        *homepage.Mapper
	tree          Merger
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewHomepageImporter creates a new homepage importer. Empty file paths
// disable the matching source.
func NewHomepageImporter(
	serviceFile string,
	bookmarkFile string,
	t Merger,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *HomepageImporter {
	hi := &HomepageImporter{
		mapper:        homepage.NewMapper(),
		tree:          t,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
	if serviceFile != "" {
		hi.services = homepage.NewServicesLoader(serviceFile)
	}
	if bookmarkFile != "" {
		hi.bookmarks = homepage.NewBookmarkLoader(bookmarkFile)
	}
	return hi
}

// Enabled reports whether at least one source file is configured.
func (hi *HomepageImporter) Enabled() bool {
	return hi.services != nil || hi.bookmarks != nil
}

// Start imports once, then on every tick or manual trigger.
func (hi *HomepageImporter) Start(ctx context.Context) error {
	if err := hi.Import(ctx); err != nil {
		return fmt.Errorf("initial import failed: %w", err)
	}

	ticker := time.NewTicker(hi.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := hi.Import(ctx); err != nil {
					hi.logger.Error("failed to import homepage links",
						logger.Error(err))
				}
			case <-hi.manualTrigger:
				hi.logger.Info("manual import triggered")
				if err := hi.Import(ctx); err != nil {
					hi.logger.Error("failed to import homepage links",
						logger.Error(err))
				}
			case <-hi.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the importer
func (hi *HomepageImporter) Stop() {
	close(hi.stopCh)
}

// Import loads the configured files and merges them into the tree.
func (hi *HomepageImporter) Import(ctx context.Context) error {
	if !hi.Enabled() {
		return nil
	}

	var all homepage.Collection
	if hi.services != nil {
		c, err := hi.loadServices()
		if err != nil {
			return err
		}
		all.Add(c)
	}
	if hi.bookmarks != nil {
		c, err := hi.loadBookmarks()
		if err != nil {
			return err
		}
		all.Add(c)
	}

	if len(all.Links) == 0 {
		hi.logger.Info("homepage files contain no links")
		return nil
	}

	res, err := hi.tree.Merge(ctx, all.Links, all.Groups)
	if err != nil {
		return fmt.Errorf("failed to merge homepage links: %w", err)
	}

	hi.logger.Info("homepage import completed",
		logger.Int("links_seen", len(all.Links)),
		logger.Int("groups_seen", len(all.Groups)),
		logger.Int("links_changed", res.Links),
		logger.Int("groups_changed", res.Groups))
	return nil
}

func (hi *HomepageImporter) loadServices() (homepage.Collection, error) {
	config, err := hi.services.Load()
	if err != nil {
		return homepage.Collection{}, fmt.Errorf("failed to load services: %w", err)
	}
	c, err := hi.mapper.MapServices(config)
	if errors.Is(err, homepage.ErrEmpty) {
		hi.logger.Warn("services file has no valid entries",
			logger.String("file", hi.services.Path()))
		return homepage.Collection{}, nil
	}
	return c, err
}

func (hi *HomepageImporter) loadBookmarks() (homepage.Collection, error) {
	config, err := hi.bookmarks.Load()
	if err != nil {
		return homepage.Collection{}, fmt.Errorf("failed to load bookmarks: %w", err)
	}
	c, err := hi.mapper.MapBookmarks(config)
	if errors.Is(err, homepage.ErrEmpty) {
		hi.logger.Warn("bookmarks file has no valid entries",
			logger.String("file", hi.bookmarks.Path()))
		return homepage.Collection{}, nil
	}
	return c, err
}
