package store

import (
	"context"
	"time"

	"jobpilot/internal/config"
	"jobpilot/internal/errors"

	"github.com/redis/go-redis/v9"
)

// SeenCache is a best-effort Redis mirror of the store's known URLs. Every
// failure degrades to Postgres-only operation; no cache error is ever
// surfaced to the pipeline.
type SeenCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *errors.Logger
}

// NewSeenCache connects the cache client. A nil cache is returned when the
// cache is disabled; all methods tolerate the nil receiver.
func NewSeenCache(cfg *config.RedisConfig, logger *errors.Logger) (*SeenCache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "Invalid redis URL", err)
	}

	return &SeenCache{
		client: redis.NewClient(opts),
		key:    cfg.KeyPrefix + "seen_urls",
		ttl:    cfg.TTL,
		logger: logger,
	}, nil
}

// Add records URLs as seen. Best-effort: failures are logged and swallowed.
func (c *SeenCache) Add(ctx context.Context, urls ...string) {
	if c == nil || len(urls) == 0 {
		return
	}

	members := make([]any, len(urls))
	for i, u := range urls {
		members[i] = u
	}

	if err := c.client.SAdd(ctx, c.key, members...).Err(); err != nil {
		c.logger.Warn("Seen cache add failed, continuing without cache",
			"error", err.Error())
		return
	}
	if c.ttl > 0 {
		if err := c.client.Expire(ctx, c.key, c.ttl).Err(); err != nil {
			c.logger.Debug("Seen cache expire failed", "error", err.Error())
		}
	}
}

// Contains reports whether a URL is cached as seen. Best-effort: a cache
// failure reports false so the caller falls through to the store.
func (c *SeenCache) Contains(ctx context.Context, url string) bool {
	if c == nil {
		return false
	}

	seen, err := c.client.SIsMember(ctx, c.key, url).Result()
	if err != nil {
		c.logger.Warn("Seen cache lookup failed, falling back to store",
			"url", url,
			"error", err.Error())
		return false
	}
	return seen
}

// Known returns every cached URL. Best-effort: failures yield an empty set.
func (c *SeenCache) Known(ctx context.Context) map[string]struct{} {
	if c == nil {
		return nil
	}

	members, err := c.client.SMembers(ctx, c.key).Result()
	if err != nil {
		c.logger.Warn("Seen cache scan failed, falling back to store",
			"error", err.Error())
		return nil
	}

	known := make(map[string]struct{}, len(members))
	for _, m := range members {
		known[m] = struct{}{}
	}
	return known
}

// Close closes the underlying client.
func (c *SeenCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
