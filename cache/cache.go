// Package cache 提供带容量上限与 TTL 的泛型 LRU 缓存
//
// 淘汰顺序由 hashicorp/golang-lru 的 simplelru 维护，本包在其上补充：
// 基于访问时间的 TTL、命中统计以及并发保护。
package cache

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// Cache 通用泛型缓存
//
// 使用示例：
//
//	users := cache.New[string, *User](cache.Config{
//	    Name:    "users",
//	    MaxSize: 1000,
//	    TTL:     5 * time.Minute,
//	})
//
//	users.Set(id, u)
//	if u, ok := users.Get(id); ok {
//	    // 使用缓存的值
//	}
type Cache[K comparable, V any] struct {
	name   string
	config Config

	lru *simplelru.LRU[K, *entry[V]]

	// Get 需要刷新访问时间与 LRU 位置，统一使用写锁
	mu    sync.Mutex
	stats CacheStats
}

type entry[V any] struct {
	value      V
	accessedAt time.Time
}

// Config 缓存配置
type Config struct {
	// Name 缓存名称（用于日志和统计）
	Name string

	// MaxSize 最大条目数，0 表示不限
	MaxSize int

	// TTL 自最近一次访问起的存活时间，0 表示永不过期
	TTL time.Duration

	// OnEvict 条目离开缓存时回调（容量淘汰、过期、Delete、Clear）
	OnEvict func(key, value any)
}

// CacheStats 缓存统计信息
type CacheStats struct {
	Hits      int64 // 命中次数
	Misses    int64 // 未命中次数
	Evictions int64 // 容量淘汰次数
	Expires   int64 // 过期次数
	Size      int   // 当前条目数
}

// New 创建缓存
func New[K comparable, V any](config Config) *Cache[K, V] {
	if config.Name == "" {
		config.Name = "unnamed"
	}
	size := config.MaxSize
	if size <= 0 {
		size = math.MaxInt
	}

	var onEvict simplelru.EvictCallback[K, *entry[V]]
	if config.OnEvict != nil {
		onEvict = func(key K, e *entry[V]) { config.OnEvict(key, e.value) }
	}

	// size 恒为正数，NewLRU 不会返回错误
	l, _ := simplelru.NewLRU[K, *entry[V]](size, onEvict)

	return &Cache[K, V]{name: config.Name, config: config, lru: l}
}

// Get 获取未过期的缓存值，命中时刷新访问时间
func (c *Cache[K, V]) Get(key K) (value V, found bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key)
	if !ok {
		c.stats.Misses++
		return value, false
	}
	if c.isExpired(e, time.Now()) {
		c.lru.Remove(key)
		c.stats.Misses++
		c.stats.Expires++
		return value, false
	}

	e.accessedAt = time.Now()
	c.stats.Hits++
	return e.value, true
}

// Set 设置缓存值
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.lru.Get(key); ok {
		e.value = value
		e.accessedAt = time.Now()
		return
	}
	if evicted := c.lru.Add(key, &entry[V]{value: value, accessedAt: time.Now()}); evicted {
		c.stats.Evictions++
	}
}

// Delete 删除条目，返回是否存在
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Remove(key)
}

// Clear 清空缓存
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

// CleanExpired 清理过期条目，返回清理数量
func (c *Cache[K, V]) CleanExpired() int {
	if c.config.TTL <= 0 {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	cleaned := 0
	for _, key := range c.lru.Keys() {
		e, ok := c.lru.Peek(key)
		if ok && c.isExpired(e, now) {
			c.lru.Remove(key)
			cleaned++
		}
	}
	c.stats.Expires += int64(cleaned)
	return cleaned
}

// Stats 统计信息副本
func (c *Cache[K, V]) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Size = c.lru.Len()
	return stats
}

// Size 当前条目数
func (c *Cache[K, V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// HitRate 命中率
func (c *Cache[K, V]) HitRate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hitRateLocked()
}

func (c *Cache[K, V]) hitRateLocked() float64 {
	total := c.stats.Hits + c.stats.Misses
	if total == 0 {
		return 0
	}
	return float64(c.stats.Hits) / float64(total)
}

func (c *Cache[K, V]) isExpired(e *entry[V], now time.Time) bool {
	return c.config.TTL > 0 && now.Sub(e.accessedAt) >= c.config.TTL
}

func (c *Cache[K, V]) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fmt.Sprintf("Cache[%s]: size=%d/%d, hits=%d, misses=%d, hit_rate=%.2f%%, evictions=%d, expires=%d",
		c.name,
		c.lru.Len(),
		c.config.MaxSize,
		c.stats.Hits,
		c.stats.Misses,
		c.hitRateLocked()*100,
		c.stats.Evictions,
		c.stats.Expires,
	)
}
