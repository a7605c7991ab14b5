package localcache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"techpoints/internal/pkg/clock"
	"techpoints/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores entries in Redis. Atomic uses WATCH/MULTI and retries when
// a watched key changes before EXEC.
type RedisCache struct {
	rdb        *redis.Client
	clock      clock.Clock
	maxRetries int
}

func NewRedisCache(rdb *redis.Client, clk clock.Clock, maxRetries int) *RedisCache {
	if maxRetries <= 0 {
		maxRetries = 1
	}
	return &RedisCache{
		rdb:        rdb,
		clock:      clk,
		maxRetries: maxRetries,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (Entry, bool, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, errs.Wrap(err, "redis get "+key)
	}
	e, err := decodeEntry(b)
	if err != nil {
		return Entry{}, false, err
	}
	if e.Expired(c.clock.Now()) {
		return Entry{}, false, nil
	}
	return e, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	b, err := encodeEntry(value, ttl, c.clock.Now())
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, key, b, ttl).Err(); err != nil {
		return errs.Wrap(err, "redis set "+key)
	}
	return nil
}

func (c *RedisCache) Remove(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		return errs.Wrap(err, "redis del "+key)
	}
	return nil
}

func (c *RedisCache) Atomic(ctx context.Context, keys []string, fn func(view AtomicView) error) error {
	txf := func(tx *redis.Tx) error {
		reads := make(map[string]Entry, len(keys))
		for _, key := range keys {
			b, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				continue
			}
			if err != nil {
				return errs.Wrap(err, "redis watch get "+key)
			}
			e, err := decodeEntry(b)
			if err != nil {
				return err
			}
			reads[key] = e
		}

		view := newStagedView(c.clock.Now(), reads)
		if err := fn(view); err != nil {
			return err
		}
		if len(view.ordered) == 0 {
			return nil
		}

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, key := range view.ordered {
				w := view.writes[key]
				if w.data == nil {
					pipe.Del(ctx, key)
					continue
				}
				pipe.Set(ctx, key, w.data, w.ttl)
			}
			return nil
		})
		return err
	}

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		err := c.rdb.Watch(ctx, txf, keys...)
		if err == nil {
			return nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		slog.Debug("cache atomic update conflicted, retrying", "attempt", attempt, "keys", keys)
	}
	return ErrAtomicConflict
}
