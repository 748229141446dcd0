// Package cache stores upstream search pages in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"newsreader/internal/domain/entity"
	"newsreader/internal/usecase/news"
	"newsreader/pkg/config"
)

const (
	// DefaultTTL keeps a search page long enough to absorb back/forward paging.
	DefaultTTL = 5 * time.Minute

	DefaultPrefix = "newsreader:search:"

	scanBatch = 500
)

// Config configures the search cache. An empty URL disables it.
type Config struct {
	URL    string
	TTL    time.Duration
	Prefix string
}

// LoadConfigFromEnv reads REDIS_URL and SEARCH_CACHE_TTL.
func LoadConfigFromEnv() Config {
	return Config{
		URL:    config.GetEnvString("REDIS_URL", ""),
		TTL:    config.GetEnvDuration("SEARCH_CACHE_TTL", DefaultTTL),
		Prefix: DefaultPrefix,
	}
}

// SearchCache implements news.SearchCache on Redis strings holding JSON.
type SearchCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

var _ news.SearchCache = (*SearchCache)(nil)

// New wraps an existing client.
func New(client *redis.Client, ttl time.Duration, prefix string) *SearchCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &SearchCache{client: client, ttl: ttl, prefix: prefix}
}

// Open parses cfg.URL, connects and pings the server.
func Open(ctx context.Context, cfg Config) (*SearchCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	c := New(redis.NewClient(opts), cfg.TTL, cfg.Prefix)
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *SearchCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (c *SearchCache) Close() error {
	return c.client.Close()
}

// Get returns (nil, false, nil) on a miss.
func (c *SearchCache) Get(ctx context.Context, key string) ([]*entity.NewsArticle, bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	var articles []*entity.NewsArticle
	if err := json.Unmarshal(raw, &articles); err != nil {
		// a corrupt entry behaves like a miss and is overwritten by the next Set
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	return articles, true, nil
}

func (c *SearchCache) Set(ctx context.Context, key string, articles []*entity.NewsArticle) error {
	raw, err := json.Marshal(articles)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Purge deletes every key under the prefix. Other keys are left alone.
func (c *SearchCache) Purge(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", scanBatch).Result()
		if err != nil {
			return fmt.Errorf("cache scan: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("cache purge: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
