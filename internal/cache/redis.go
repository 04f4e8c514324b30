package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/oggyb/yourcode/internal/config"
	"github.com/redis/go-redis/v9"
)

// CounterTTL bounds how long a cached counter lives. Reads do not extend it.
const CounterTTL = 10 * time.Minute

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

// KeyForLikesReceived generates the Redis key for the number of likes on
// all posts owned by userID.
func (c *RedisCache) KeyForLikesReceived(userID uint64) string {
	return fmt.Sprintf("likes:received:%d", userID)
}

// keyForLikesReceivedVersion holds a per-user generation bumped on every
// invalidation. Writers that computed a value under an older generation
// are turned away.
func (c *RedisCache) keyForLikesReceivedVersion(userID uint64) string {
	return fmt.Sprintf("likes:received:%d:ver", userID)
}

// GetLikesReceived returns the cached counter. ok=false on cache miss.
func (c *RedisCache) GetLikesReceived(ctx context.Context, userID uint64) (n int64, ok bool, err error) {
	key := c.KeyForLikesReceived(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	n, err = strconv.ParseInt(val, 10, 64)
	if err != nil {
		// corrupt entry: drop it so the next read repopulates from DB
		_ = c.Client.Del(ctx, key).Err()
		return 0, false, nil
	}
	return n, true, nil
}

// LikesReceivedVersion returns the current generation of userID's counter.
// Read it before computing the value from the DB and hand it back to
// SetLikesReceived.
func (c *RedisCache) LikesReceivedVersion(ctx context.Context, userID uint64) (int64, error) {
	v, err := c.Client.Get(ctx, c.keyForLikesReceivedVersion(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// SetLikesReceived stores the counter only if no invalidation happened
// since version was read. stored=false means the value was stale and
// got dropped.
func (c *RedisCache) SetLikesReceived(ctx context.Context, userID uint64, count, version int64) (stored bool, err error) {
	verKey := c.keyForLikesReceivedVersion(userID)
	err = c.Client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, verKey).Int64()
		if errors.Is(err, redis.Nil) {
			cur = 0
		} else if err != nil {
			return err
		}
		if cur != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.KeyForLikesReceived(userID), count, CounterTTL)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, verKey)
	if errors.Is(err, redis.TxFailedErr) {
		// invalidated between the check and the write
		return false, nil
	}
	return stored, err
}

// InvalidateLikesReceived drops the counter and bumps its generation.
// Decisions can flip a like to a pass, so the value is recomputed from the
// DB instead of nudged.
func (c *RedisCache) InvalidateLikesReceived(ctx context.Context, userID uint64) error {
	_, err := c.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.keyForLikesReceivedVersion(userID))
		pipe.Del(ctx, c.KeyForLikesReceived(userID))
		return nil
	})
	return err
}
