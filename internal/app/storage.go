package app

import (
	"context"
	"fmt"
	"io"

	"github.com/MrSnakeDoc/linktree/internal/config"
	"github.com/MrSnakeDoc/linktree/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linktree/internal/logger"
	"github.com/MrSnakeDoc/linktree/internal/offline"
	"github.com/MrSnakeDoc/linktree/internal/persist"
	"github.com/MrSnakeDoc/linktree/internal/redis"
	redisstore "github.com/MrSnakeDoc/linktree/internal/store/redis"
	sqlitestore "github.com/MrSnakeDoc/linktree/internal/store/sqlite"
)

// storage bundles what a persistence backend provides.
type storage struct {
	adapter persist.Adapter
	caches  offline.CacheStorage
	pinger  deps.Pinger // nil when there is nothing to ping
	closer  io.Closer   // nil when there is nothing to close
}

func openStorage(ctx context.Context, cfg *config.Config, log logger.Logger) (storage, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		log.Warn("memory backend selected, data is lost on restart")
		return storage{
			adapter: persist.NewMemory(),
			caches:  offline.NewMemoryStorage(),
		}, nil

	case config.BackendRedis:
		log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.Connect(ctx, redis.Options{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, log)
		if err != nil {
			return storage{}, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Info("Redis initialized successfully")
		store := redisstore.NewStore(client)
		return storage{
			adapter: store,
			caches:  redisstore.NewCacheStorage(client),
			pinger:  store,
			closer:  client,
		}, nil

	case config.BackendSQLite:
		store, err := sqlitestore.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return storage{}, fmt.Errorf("failed to open sqlite: %w", err)
		}
		log.Info("SQLite initialized successfully", logger.String("path", cfg.SQLitePath))
		return storage{
			adapter: store,
			caches:  store.Caches(),
			pinger:  store,
			closer:  store,
		}, nil

	default:
		return storage{}, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
