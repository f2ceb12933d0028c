package cmd

import (
	"log/slog"

	"last30days/internal/cache"
	"last30days/internal/config"
	"last30days/internal/redisclient"
	"last30days/internal/storage"
)

func fileCache(cfg *config.Config) *cache.Cache {
	root := cfg.CacheDir
	if root == "" {
		root = cache.DefaultRoot()
	}
	return cache.New(root,
		cache.WithTTL(cfg.CacheTTL),
		cache.WithModelTTL(cfg.ModelCacheTTL),
		cache.WithLogger(slog.Default()),
	)
}

// reportStore returns the Redis store when REDIS_ADDR is set and the file
// cache otherwise. The returned func releases the Redis connection.
func reportStore(cfg *config.Config, files *cache.Cache) (cache.ReportStore, func()) {
	if !redisclient.Enabled(cfg.Redis) {
		return files, func() {}
	}
	rdb := redisclient.New(cfg.Redis)
	slog.Debug("storage: using redis report store", "addr", cfg.Redis.Addr)
	return storage.NewRedisStore(rdb, cfg.CacheTTL).WithLogger(slog.Default()), func() { _ = rdb.Close() }
}
