package data

import (
	"context"
	"errors"
	"time"

	"linkgate/internal/domain"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-redis/cache/v9"
)

const linkCachePrefix = "link:"

// Compile-time interface checks
var (
	_ domain.LinkCache = (*redisLinkCache)(nil)
	_ domain.LinkCache = (*noopLinkCache)(nil)
)

// redisLinkCache stores msgpack encoded link views in redis.
type redisLinkCache struct {
	cache *cache.Cache
	log   *log.Helper
}

// NewLinkCache creates the link view cache. Returns a no-op cache if redis is
// not configured.
func NewLinkCache(data *Data, logger log.Logger) domain.LinkCache {
	if data.cache == nil {
		return &noopLinkCache{}
	}
	return &redisLinkCache{
		cache: data.cache,
		log:   log.NewHelper(logger),
	}
}

func linkCacheKey(slug string) string {
	return linkCachePrefix + slug
}

// Get returns nil, nil on a miss.
func (c *redisLinkCache) Get(ctx context.Context, slug string) (*domain.CachedLinkView, error) {
	var view domain.CachedLinkView
	if err := c.cache.Get(ctx, linkCacheKey(slug), &view); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}
	return &view, nil
}

// Set stores the view with the given ttl.
func (c *redisLinkCache) Set(ctx context.Context, slug string, view *domain.CachedLinkView, ttl time.Duration) error {
	return c.cache.Set(&cache.Item{
		Ctx:   ctx,
		Key:   linkCacheKey(slug),
		Value: view,
		TTL:   ttl,
	})
}

// Invalidate removes the view. Removing an absent key is not an error.
func (c *redisLinkCache) Invalidate(ctx context.Context, slug string) error {
	if err := c.cache.Delete(ctx, linkCacheKey(slug)); err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		c.log.WithContext(ctx).Warnf("failed to invalidate link cache for %s: %v", slug, err)
		return err
	}
	return nil
}

// noopLinkCache is used when redis is not available.
type noopLinkCache struct{}

func (c *noopLinkCache) Get(context.Context, string) (*domain.CachedLinkView, error) {
	return nil, nil
}

func (c *noopLinkCache) Set(context.Context, string, *domain.CachedLinkView, time.Duration) error {
	return nil
}

func (c *noopLinkCache) Invalidate(context.Context, string) error {
	return nil
}
