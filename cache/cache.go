package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/TheLegendMe/zh-doc-search/util"
)

const keyPrefix = "search:"

// Stats is a point-in-time snapshot of the cache's hit/miss counters.
type Stats struct {
	LocalHits  int64
	RemoteHits int64
	Misses     int64
	LocalSize  int
}

// Cache is the two-tier result cache: a bounded local LRU fronting a
// remote Redis tier with per-entry TTL. Get/Put across the two tiers are
// not atomic: two concurrent misses may both compute and both Put, and the
// later write wins.
type Cache struct {
	local *lru
	rdb   *redis.Client
	ttl   time.Duration

	statsMu    sync.Mutex
	localHits  int64
	remoteHits int64
	misses     int64
}

func New(capacity int, redisHost string, redisPort int, ttl time.Duration) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", redisHost, redisPort),
		DialTimeout: 2 * time.Second,
	})
	return &Cache{
		local: newLRU(capacity),
		rdb:   rdb,
		ttl:   ttl,
	}
}

// Key builds the cache key for a set of query terms and a top-k bound:
// space-joined terms + "|" + top_k.
func Key(terms []string, topK int) string {
	joined := ""
	for i, t := range terms {
		if i > 0 {
			joined += " "
		}
		joined += t
	}
	return fmt.Sprintf("%s|%d", joined, topK)
}

// Get tries the local tier, then the remote tier (populating the local
// tier on a remote hit), returning false on a full miss.
func (c *Cache) Get(ctx context.Context, key string) ([]Result, bool) {
	if results, ok := c.local.get(key); ok {
		c.incr(&c.localHits)
		util.Logger.Debug("[CACHE HIT - LOCAL] key=%s", key)
		return results, true
	}

	results, ok := c.getFromRemote(ctx, key)
	if ok {
		c.local.put(key, results)
		c.incr(&c.remoteHits)
		util.Logger.Debug("[CACHE HIT - REDIS] key=%s", key)
		return results, true
	}

	c.incr(&c.misses)
	util.Logger.Debug("[CACHE MISS] key=%s", key)
	return nil, false
}

// Put stores results in both tiers. Serialization failures skip the remote
// tier only; the local tier always succeeds.
func (c *Cache) Put(ctx context.Context, key string, results []Result) {
	c.local.put(key, results)
	c.putToRemote(ctx, key, results)
}

func (c *Cache) getFromRemote(ctx context.Context, key string) ([]Result, bool) {
	if c.rdb == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		return nil, false
	}
	var results []Result
	if err := json.Unmarshal([]byte(data), &results); err != nil {
		return nil, false
	}
	return results, true
}

func (c *Cache) putToRemote(ctx context.Context, key string, results []Result) {
	if c.rdb == nil {
		return
	}
	data, err := json.Marshal(results)
	if err != nil {
		util.Logger.Warning("cache serialize failed for key=%s: %v", key, err)
		return
	}
	if err := c.rdb.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		util.Logger.Warning("cache remote put failed for key=%s: %v", key, err)
	}
}

// Clear empties the local tier, then deletes every remote key under the
// search: prefix via SCAN+DEL (never KEYS, to avoid blocking the server on
// a large keyspace).
func (c *Cache) Clear(ctx context.Context) {
	c.local.clear()
	if c.rdb == nil {
		return
	}
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return
		}
		if len(keys) > 0 {
			c.rdb.Del(ctx, keys...)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
}

func (c *Cache) incr(counter *int64) {
	c.statsMu.Lock()
	*counter++
	c.statsMu.Unlock()
}

func (c *Cache) Stats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return Stats{
		LocalHits:  c.localHits,
		RemoteHits: c.remoteHits,
		Misses:     c.misses,
		LocalSize:  c.local.size(),
	}
}
