package bootstrap

import (
	"context"
	"log/slog"

	"techpoints/internal/infra/localcache"
	"techpoints/internal/pkg/clock"
	"techpoints/internal/pkg/config"
	"techpoints/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var CacheModule = fx.Module("cache",
	fx.Provide(
		NewCache,
	),
)

func NewCache(lc fx.Lifecycle, cfg config.Config, clk clock.Clock, logger *slog.Logger) (localcache.Cache, error) {
	if cfg.Cache.Backend != config.CacheRedis {
		logger.Info("using in-process cache")
		return localcache.NewMemoryCache(clk), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rdb.Ping(ctx).Err(); err != nil {
				return errs.Wrap(err, "failed to reach redis")
			}
			logger.Info("connected to redis", "addr", cfg.Cache.RedisAddr)
			return nil
		},
		OnStop: func(_ context.Context) error {
			return rdb.Close()
		},
	})

	return localcache.NewRedisCache(rdb, clk, cfg.Cache.AtomicRetries), nil
}
