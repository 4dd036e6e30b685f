package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mourafe/radarb3/pkg/logger"
)

// Store is a TTL key/value backend. Values are JSON-serialized in every
// backend so the memory and Redis implementations behave identically.
type Store interface {
	// Get unmarshals the unexpired value for key into dest.
	// A missing or expired key is (false, nil), not an error.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// Clear evicts every key with the given prefix, expired or not.
	Clear(ctx context.Context, prefix string) error
}

// Cache provides typed caching on top of a Store
// ⭐ SSOT: 캐시 접근은 이 타입을 통해서만
//
// The cache is a constructed dependency of the pipeline, never a package
// global, so tests can run against a fresh memory store.
type Cache struct {
	store  Store
	prefix string
	logger *logger.Logger
}

// New creates a cache over the given store. prefix namespaces every key.
func New(store Store, prefix string, log *logger.Logger) *Cache {
	return &Cache{
		store:  store,
		prefix: prefix,
		logger: log,
	}
}

func (c *Cache) fullKey(key string) string {
	return fmt.Sprintf("%s:%s", c.prefix, key)
}

// Get retrieves a cached value
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return c.store.Get(ctx, c.fullKey(key), dest)
}

// Set stores a value with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.store.Set(ctx, c.fullKey(key), value, ttl)
}

// Clear evicts all entries whose key starts with prefix (forced refresh)
func (c *Cache) Clear(ctx context.Context, prefix string) error {
	return c.store.Clear(ctx, c.fullKey(prefix))
}

// GetOrPopulate retrieves from cache or calls fn to populate it.
// A read of an unexpired entry never triggers fn; writes happen only on
// cache miss. A write failure is logged and swallowed; serving the freshly
// computed value matters more than caching it.
func (c *Cache) GetOrPopulate(
	ctx context.Context,
	key string,
	dest interface{},
	ttl time.Duration,
	fn func() (interface{}, error),
) error {
	found, err := c.Get(ctx, key, dest)
	if err != nil {
		return err
	}
	if found {
		c.logger.WithField("key", c.fullKey(key)).Debug("Cache hit")
		return nil
	}

	value, err := fn()
	if err != nil {
		return err
	}

	if err := c.Set(ctx, key, value, ttl); err != nil {
		c.logger.WithError(err).WithField("key", c.fullKey(key)).Warn("Cache write failed")
	}

	// Round-trip through JSON so dest sees exactly what a later
	// cache hit would see.
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}
	return json.Unmarshal(data, dest)
}
