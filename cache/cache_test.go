package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGetDelete(t *testing.T) {
	c := New[string, int](Config{Name: "test", MaxSize: 100, TTL: time.Minute})

	c.Set("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	// 覆盖已有条目不增加数量
	c.Set("a", 2)
	v, _ = c.Get("a")
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Size())

	_, ok = c.Get("missing")
	assert.False(t, ok)

	assert.True(t, c.Delete("a"))
	assert.False(t, c.Delete("a"))
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestCache_LRUEviction(t *testing.T) {
	c := New[int, string](Config{Name: "test", MaxSize: 3})

	c.Set(1, "one")
	c.Set(2, "two")
	c.Set(3, "three")

	// 访问 1 后，2 成为最久未使用
	_, ok := c.Get(1)
	require.True(t, ok)
	c.Set(4, "four")

	assert.Equal(t, 3, c.Size())
	_, ok = c.Get(2)
	assert.False(t, ok)
	for _, k := range []int{1, 3, 4} {
		_, ok = c.Get(k)
		assert.True(t, ok, "key %d", k)
	}
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestCache_Unbounded(t *testing.T) {
	c := New[int, int](Config{})
	for i := 0; i < 1000; i++ {
		c.Set(i, i)
	}
	assert.Equal(t, 1000, c.Size())
	assert.Contains(t, c.String(), "Cache[unnamed]")
}

func TestCache_TTL(t *testing.T) {
	t.Run("过期后未命中", func(t *testing.T) {
		c := New[string, int](Config{Name: "test", TTL: 50 * time.Millisecond})
		c.Set("k", 1)
		_, ok := c.Get("k")
		require.True(t, ok)

		time.Sleep(80 * time.Millisecond)
		_, ok = c.Get("k")
		assert.False(t, ok)
		assert.Equal(t, int64(1), c.Stats().Expires)
		assert.Equal(t, 0, c.Size())
	})

	t.Run("访问刷新过期时间", func(t *testing.T) {
		c := New[string, int](Config{Name: "test", TTL: 200 * time.Millisecond})
		c.Set("k", 1)
		for i := 0; i < 3; i++ {
			time.Sleep(100 * time.Millisecond)
			_, ok := c.Get("k")
			assert.True(t, ok, "iteration %d", i)
		}
	})

	t.Run("手动清理", func(t *testing.T) {
		c := New[int, string](Config{Name: "test", TTL: 50 * time.Millisecond})
		c.Set(1, "one")
		c.Set(2, "two")
		time.Sleep(80 * time.Millisecond)
		c.Set(3, "three")

		assert.Equal(t, 2, c.CleanExpired())
		assert.Equal(t, 1, c.Size())
	})

	t.Run("无 TTL 时不清理", func(t *testing.T) {
		c := New[int, string](Config{Name: "test"})
		c.Set(1, "one")
		assert.Equal(t, 0, c.CleanExpired())
	})
}

func TestCache_StatsAndHitRate(t *testing.T) {
	c := New[int, int](Config{Name: "test", MaxSize: 100})
	assert.Equal(t, 0.0, c.HitRate())

	c.Set(1, 100)
	for i := 0; i < 3; i++ {
		_, ok := c.Get(1)
		require.True(t, ok)
	}
	_, ok := c.Get(999)
	require.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, int64(3), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Size)
	assert.InDelta(t, 0.75, c.HitRate(), 0.01)
}

func TestCache_OnEvict(t *testing.T) {
	evicted := make(map[int]string)
	c := New[int, string](Config{
		Name:    "test",
		MaxSize: 2,
		OnEvict: func(key, value any) {
			evicted[key.(int)] = value.(string)
		},
	})

	c.Set(1, "one")
	c.Set(2, "two")
	c.Set(3, "three")
	assert.Equal(t, map[int]string{1: "one"}, evicted)

	c.Delete(2)
	assert.Equal(t, "two", evicted[2])

	evicted = make(map[int]string)
	c.Clear()
	assert.Equal(t, map[int]string{3: "three"}, evicted)
	assert.Equal(t, 0, c.Size())
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New[int, int](Config{Name: "test", MaxSize: 1000})

	const goroutines, iterations = 10, 100
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				key := id*iterations + i
				c.Set(key, key*2)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()

	for key := 0; key < goroutines*iterations; key++ {
		v, ok := c.Get(key)
		require.True(t, ok)
		assert.Equal(t, key*2, v)
	}
}

func BenchmarkCache_GetParallel(b *testing.B) {
	c := New[int, int](Config{Name: "bench", MaxSize: 10000})
	for i := 0; i < 10000; i++ {
		c.Set(i, i*2)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			c.Get(i % 10000)
			i++
		}
	})
}
