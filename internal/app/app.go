package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/linktree/internal/bgsync"
	"github.com/MrSnakeDoc/linktree/internal/config"
	"github.com/MrSnakeDoc/linktree/internal/httpserver"
	"github.com/MrSnakeDoc/linktree/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linktree/internal/hub"
	"github.com/MrSnakeDoc/linktree/internal/logger"
	"github.com/MrSnakeDoc/linktree/internal/offline"
	"github.com/MrSnakeDoc/linktree/internal/scheduler"
	"github.com/MrSnakeDoc/linktree/internal/tree"
	"github.com/MrSnakeDoc/linktree/internal/utils"
	"github.com/MrSnakeDoc/linktree/internal/version"
)

type App struct {
	cfg        *config.Config
	logger     logger.Logger
	server     *httpserver.Server
	storage    storage
	hub        *hub.Hub
	controller *offline.Controller
	importer   *scheduler.HomepageImporter
	gc         *scheduler.GarbageCollector
	daily      *scheduler.DailySync
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Open storage early - fail fast if unavailable
	st, err := openStorage(context.Background(), cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	// Message bus and offline controller
	bus := hub.New(loggerClient.Named("hub"))
	controller := offline.New(offline.Config{
		Origin:      cfg.OriginURL,
		CachePrefix: cfg.CachePrefix,
		Version:     cfg.CacheVersion,
		ShellAssets: cfg.ShellAssets,
		ExtraHosts:  cfg.FaviconHosts,
		SkipWaiting: cfg.SkipWaiting,
	}, st.caches, offline.NewHTTPFetcher(nil, cfg.FetchTimeout), bus, loggerClient.Named("offline"))
	bus.SetSkipWaiter(controller)

	orchestrator := bgsync.New(cfg.StartOnline, loggerClient.Named("sync"))
	orchestrator.Attach(controller)

	// Load the tree from storage
	links := tree.New(st.adapter, loggerClient.Named("tree"), tree.WithSyncRequester(orchestrator))
	if err := links.Load(context.Background()); err != nil {
		if st.closer != nil {
			utils.CloseLogged(st.closer, cfg.Backend, loggerClient)
		}
		return nil, fmt.Errorf("failed to load tree: %w", err)
	}

	// Homepage import (if any file is configured)
	var importTrigger chan struct{}
	if cfg.ServiceFile != "" || cfg.BookmarkFile != "" {
		importTrigger = make(chan struct{}, 1)
	} else {
		loggerClient.Info("homepage files not configured, import disabled")
	}
	importer := scheduler.NewHomepageImporter(
		cfg.ServiceFile,
		cfg.BookmarkFile,
		links,
		loggerClient,
		cfg.ImportInterval,
		importTrigger,
	)

	gc := scheduler.NewGarbageCollector(
		controller,
		loggerClient,
		cfg.CacheGCInterval,
		cfg.CacheMaxAge,
	)

	daily := scheduler.NewDailySync(controller, offline.TagDailySync, loggerClient, cfg.DailySync)

	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Build:          version.Get(),
		TimeNow:        time.Now,
		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		TrustProxy:     cfg.TrustProxy,
		RequestTimeout: cfg.RequestTimeout,
		RateLimit:      cfg.RateLimit,
		Backend:        cfg.Backend,
		Storage:        st.pinger,
		Tree:           links,
		Sync:           orchestrator,
		Controller:     controller,
		Hub:            bus,
		Origin:         cfg.OriginURL,
		ImportTrigger:  importTrigger,
	}

	return &App{
		cfg:        cfg,
		logger:     loggerClient,
		server:     httpserver.New(cfg, loggerClient, d),
		storage:    st,
		hub:        bus,
		controller: controller,
		importer:   importer,
		gc:         gc,
		daily:      daily,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting linktree v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("linktree %s, backend=%s", version.Get(), a.cfg.Backend)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	controllerDone := make(chan struct{})
	go func() {
		defer close(controllerDone)
		if err := a.controller.Run(ctx); err != nil {
			a.logger.Error("offline controller failed", logger.Error(err))
		}
	}()

	if a.importer.Enabled() {
		if err := a.importer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start homepage importer: %w", err)
		}
		a.logger.Info("homepage importer started",
			logger.Duration("interval", a.cfg.ImportInterval))
	}

	if err := a.gc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start garbage collector: %w", err)
	}
	a.logger.Info("cache garbage collector started",
		logger.Duration("interval", a.cfg.CacheGCInterval),
		logger.Duration("max_age", a.cfg.CacheMaxAge))

	if err := a.daily.Start(ctx); err != nil {
		return fmt.Errorf("failed to start daily sync: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.importer.Enabled() {
		a.importer.Stop()
	}
	a.gc.Stop()
	a.daily.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.hub.Close()
	<-controllerDone

	if a.storage.closer != nil {
		utils.CloseLogged(a.storage.closer, a.cfg.Backend, a.logger)
	}

	a.logger.Info("✅ linktree stopped cleanly")
	_ = a.logger.Sync()
	return nil
}
