package corebank

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	gocache "github.com/patrickmn/go-cache"
)

// DefaultIdempotencyTTL bounds how long a replayed request can still see
// its original response.
const DefaultIdempotencyTTL = 6 * time.Hour

// IdempotencyCache maps (user, client-supplied key) to the serialized
// response of a previously successful operation. Implementations must be
// safe for concurrent use; the default backend is process-local, the
// interface leaves room for a shared store in multi-instance deployments.
type IdempotencyCache interface {
	Get(user snowflake.ID, key string) ([]byte, bool)
	Put(user snowflake.ID, key string, resp []byte)
}

type MemoryIdempotencyCache struct {
	store *gocache.Cache
}

var (
	_ IdempotencyCache = (*MemoryIdempotencyCache)(nil)
)

func NewMemoryIdempotencyCache(ttl time.Duration) *MemoryIdempotencyCache {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &MemoryIdempotencyCache{
		store: gocache.New(ttl, ttl/2),
	}
}

func (c *MemoryIdempotencyCache) Get(user snowflake.ID, key string) ([]byte, bool) {
	v, ok := c.store.Get(cacheKey(user, key))
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}

func (c *MemoryIdempotencyCache) Put(user snowflake.ID, key string, resp []byte) {
	c.store.SetDefault(cacheKey(user, key), resp)
}

func cacheKey(user snowflake.ID, key string) string {
	return fmt.Sprintf("%d/%s", user, key)
}
