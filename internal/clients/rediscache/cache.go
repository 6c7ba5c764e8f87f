package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/watchlater-dev/watchlater/internal/platform/logger"
)

// ErrMiss is returned by GetJSON when the key is absent.
var ErrMiss = errors.New("cache miss")

// Cache stores JSON-encoded values with a TTL. It backs the channel and
// topic aggregations, which are expensive to recompute from the vector
// store on every request.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

type cache struct {
	log *logger.Logger
	rdb *goredis.Client
}

// New connects to the Redis instance named by REDIS_ADDR. Callers that
// can run without a cache should check Enabled first.
func New(log *logger.Logger) (Cache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &cache{
		log: log.With("client", "RedisCache"),
		rdb: rdb,
	}, nil
}

// Enabled reports whether a cache is configured at all.
func Enabled() bool {
	return strings.TrimSpace(os.Getenv("REDIS_ADDR")) != ""
}

func (c *cache) GetJSON(ctx context.Context, key string, dest any) error {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("redis get %q: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// Corrupt entries behave like misses so callers recompute.
		c.log.Warn("cache entry failed to decode, dropping", "key", key, "error", err)
		_ = c.rdb.Del(ctx, key).Err()
		return ErrMiss
	}
	return nil
}

func (c *cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value for %q: %w", key, err)
	}
	if err := c.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (c *cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (c *cache) Close() error {
	return c.rdb.Close()
}
