// Package cached 提供读穿透缓存仓储装饰器
//
// FindByID 优先读取 LRU 缓存，并发的同 ID 未命中通过 singleflight 合并为一次后端读取；
// Insert/Update/Delete 之后失效对应条目，Search/FindAll 直接透传。
//
// 后端读取期间发生过写操作时，读到的结果只返回给调用方，不回填缓存。
package cached

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"repokit/cache"
	"repokit/domain/entity"
	"repokit/domain/repository"
	"repokit/logging"
)

// Config 缓存配置
type Config struct {
	Name    string
	MaxSize int
	TTL     time.Duration
	Logger  logging.Logger
}

// Repository 读穿透缓存装饰器
type Repository[E entity.IEntity] struct {
	next   repository.ISearchableRepository[E]
	cache  *cache.Cache[string, E]
	group  singleflight.Group
	logger logging.Logger

	// epoch 每次失效递增；回填时与读取前的值比较
	mu    sync.Mutex
	epoch uint64
}

// New 包装 next
func New[E entity.IEntity](next repository.ISearchableRepository[E], cfg Config) *Repository[E] {
	if cfg.Name == "" {
		cfg.Name = "repository"
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.ComponentLogger("repository.cached").WithFields(logging.String("cache", cfg.Name))
	}
	return &Repository[E]{
		next:   next,
		cache:  cache.New[string, E](cache.Config{Name: cfg.Name, MaxSize: cfg.MaxSize, TTL: cfg.TTL}),
		logger: cfg.Logger,
	}
}

// Insert 不预热缓存：后端允许重复 ID 时，FindByID 返回的是首个匹配项
func (r *Repository[E]) Insert(ctx context.Context, e E) error {
	err := r.next.Insert(ctx, e)
	r.invalidate(e.GetID())
	return err
}

func (r *Repository[E]) Update(ctx context.Context, e E) error {
	err := r.next.Update(ctx, e)
	// 无论成功与否都失效
	r.invalidate(e.GetID())
	return err
}

// FindByID 缓存命中直接返回；未命中时合并并发请求读取后端
func (r *Repository[E]) FindByID(ctx context.Context, id string) (E, error) {
	if e, ok := r.cache.Get(id); ok {
		r.logger.Debug(ctx, "cache hit", logging.String("id", id))
		return e, nil
	}

	v, err, shared := r.group.Do(id, func() (any, error) {
		start := r.currentEpoch()
		e, err := r.next.FindByID(ctx, id)
		if err != nil {
			return e, err
		}
		r.fill(id, e, start)
		return e, nil
	})
	r.logger.Debug(ctx, "cache miss", logging.String("id", id), logging.Bool("shared", shared))
	if err != nil {
		var zero E
		return zero, err
	}
	return v.(E), nil
}

func (r *Repository[E]) FindAll(ctx context.Context) ([]E, error) {
	return r.next.FindAll(ctx)
}

func (r *Repository[E]) Delete(ctx context.Context, id string) error {
	err := r.next.Delete(ctx, id)
	r.invalidate(id)
	return err
}

func (r *Repository[E]) Search(ctx context.Context, params repository.SearchParams) (repository.SearchResult[E], error) {
	return r.next.Search(ctx, params)
}

func (r *Repository[E]) SortableFields() []string {
	return r.next.SortableFields()
}

// Invalidate 手动失效
func (r *Repository[E]) Invalidate(id string) {
	r.invalidate(id)
}

func (r *Repository[E]) invalidate(id string) {
	r.mu.Lock()
	r.epoch++
	r.cache.Delete(id)
	r.mu.Unlock()
	r.group.Forget(id)
}

func (r *Repository[E]) currentEpoch() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.epoch
}

// fill 仅当读取期间没有任何失效时回填
func (r *Repository[E]) fill(id string, e E, start uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.epoch != start {
		return
	}
	r.cache.Set(id, e)
}

// Stats 缓存统计
func (r *Repository[E]) Stats() cache.CacheStats {
	return r.cache.Stats()
}

// Unwrap 返回被装饰的仓储
func (r *Repository[E]) Unwrap() repository.ISearchableRepository[E] {
	return r.next
}

var _ repository.ISearchableRepository[*entity.Entity[struct{}]] = (*Repository[*entity.Entity[struct{}]])(nil)
