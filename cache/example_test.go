package cache_test

import (
	"fmt"
	"time"

	"repokit/cache"
)

func ExampleNew() {
	users := cache.New[string, string](cache.Config{
		Name:    "users",
		MaxSize: 2,
		TTL:     5 * time.Minute,
	})

	users.Set("u1", "alice")
	users.Set("u2", "bob")
	users.Get("u1")
	users.Set("u3", "carol") // 淘汰最久未使用的 u2

	_, ok := users.Get("u2")
	name, _ := users.Get("u1")
	fmt.Println(ok, name, users.Size())
	// Output: false alice 2
}
