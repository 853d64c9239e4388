package recipes

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/pageza/mealmatch/backend/internal/models"
)

const (
	cacheKeyPrefix = "recipe:"

	// sharedCallTimeout bounds an upstream call shared by several callers,
	// since it no longer follows any one caller's context.
	sharedCallTimeout = 30 * time.Second
)

// Cached keeps normalized recipes in Redis. Concurrent lookups of one id share
// a single upstream call. Redis failures are logged and bypassed.
type Cached struct {
	next   Provider
	redis  *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

// NewCached wraps next with a Redis cache whose entries live for ttl.
func NewCached(next Provider, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Cached {
	return &Cached{next: next, redis: rdb, ttl: ttl, logger: logger.Named("recipe_cache")}
}

// ListAll always asks the upstream so random providers stay random, and
// warms the cache with every recipe it returns.
func (c *Cached) ListAll(ctx context.Context) ([]models.Recipe, error) {
	v, err := c.shared(ctx, "list", func(ctx context.Context) (interface{}, error) {
		return c.next.ListAll(ctx)
	})
	if err != nil {
		return nil, err
	}
	recipes := v.([]models.Recipe)

	if len(recipes) > 0 {
		pipe := c.redis.Pipeline()
		for i := range recipes {
			data, err := json.Marshal(&recipes[i])
			if err != nil {
				continue
			}
			pipe.Set(ctx, cacheKeyPrefix+recipes[i].ID, data, c.ttl)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			c.logger.Warn("failed to warm recipe cache", zap.Error(err))
		}
	}

	out := make([]models.Recipe, len(recipes))
	copy(out, recipes)
	return out, nil
}

func (c *Cached) GetByID(ctx context.Context, id string) (*models.Recipe, error) {
	data, err := c.redis.Get(ctx, cacheKeyPrefix+id).Bytes()
	switch {
	case err == nil:
		var r models.Recipe
		if err := json.Unmarshal(data, &r); err == nil {
			return &r, nil
		}
		c.logger.Warn("dropping undecodable cache entry", zap.String("recipe_id", id))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("recipe cache read failed", zap.String("recipe_id", id), zap.Error(err))
	}

	v, err := c.shared(ctx, cacheKeyPrefix+id, func(ctx context.Context) (interface{}, error) {
		r, err := c.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(r); err == nil {
			if err := c.redis.Set(ctx, cacheKeyPrefix+id, data, c.ttl).Err(); err != nil {
				c.logger.Warn("recipe cache write failed", zap.String("recipe_id", id), zap.Error(err))
			}
		}
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	r := *v.(*models.Recipe)
	return &r, nil
}

// shared runs fn once per key for all concurrent callers. fn gets a context
// detached from the caller that started it, so one caller giving up does not
// fail the others. Each caller still stops waiting when its own ctx ends.
func (c *Cached) shared(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	ch := c.group.DoChan(key, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedCallTimeout)
		defer cancel()
		return fn(callCtx)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
