package search

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"trustie-admin/application/ports"
)

// CachedStatsClient serves repeated usage statistics reads from memory. The
// series are precomputed upstream so a short TTL hides nothing new. Searches
// pass straight through; failures are never cached.
type CachedStatsClient struct {
	ports.SearchClient

	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu    sync.RWMutex
	items map[string]cachedStats
}

type cachedStats struct {
	value     json.RawMessage
	expiresAt time.Time
}

// NewCachedStatsClient wraps inner. A ttl <= 0 disables caching.
func NewCachedStatsClient(inner ports.SearchClient, ttl time.Duration) *CachedStatsClient {
	return &CachedStatsClient{
		SearchClient: inner,
		ttl:          ttl,
		now:          time.Now,
		items:        make(map[string]cachedStats),
	}
}

// UsageStats implements ports.SearchClient
func (c *CachedStatsClient) UsageStats(ctx context.Context, statsType string) (json.RawMessage, error) {
	if c.ttl <= 0 {
		return c.SearchClient.UsageStats(ctx, statsType)
	}
	if v, ok := c.get(statsType); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(statsType, func() (interface{}, error) {
		data, err := c.SearchClient.UsageStats(ctx, statsType)
		if err != nil {
			return nil, err
		}
		c.set(statsType, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(json.RawMessage), nil
}

func (c *CachedStatsClient) get(key string) (json.RawMessage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists || c.now().After(item.expiresAt) {
		return nil, false
	}
	return item.value, true
}

func (c *CachedStatsClient) set(key string, value json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, k)
		}
	}
	c.items[key] = cachedStats{value: value, expiresAt: now.Add(c.ttl)}
}
