// Package memory 提供基于有序切片的内存仓储实现
//
// 适用于测试与单进程场景，进程退出后数据丢失。
package memory

import (
	"context"
	"slices"
	"sync"

	"repokit/domain/entity"
	"repokit/domain/repository"
)

// Repository 内存仓储，保持插入顺序
type Repository[E entity.IEntity] struct {
	mu    sync.RWMutex
	items []E
}

// NewRepository 创建内存仓储
func NewRepository[E entity.IEntity]() *Repository[E] {
	return &Repository[E]{items: make([]E, 0)}
}

// Insert 追加实体，不做唯一性校验
func (r *Repository[E]) Insert(ctx context.Context, e E) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, e)
	return nil
}

// InsertAll 批量追加
func (r *Repository[E]) InsertAll(ctx context.Context, entities []E) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, entities...)
	return nil
}

// Update 按 ID 替换实体
func (r *Repository[E]) Update(ctx context.Context, e E) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(e.GetID())
	if idx < 0 {
		return repository.NotFoundByID(e.GetID())
	}
	r.items[idx] = e
	return nil
}

// FindByID 按 ID 查找
func (r *Repository[E]) FindByID(ctx context.Context, id string) (E, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexOf(id)
	if idx < 0 {
		var zero E
		return zero, repository.NotFoundByID(id)
	}
	return r.items[idx], nil
}

// FindAll 按插入顺序返回全部实体
func (r *Repository[E]) FindAll(ctx context.Context) ([]E, error) {
	return r.Items(), nil
}

// Delete 按 ID 删除
func (r *Repository[E]) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return repository.NotFoundByID(id)
	}
	r.items = slices.Delete(r.items, idx, idx+1)
	return nil
}

// DeleteAll 批量删除；任一 ID 不存在时不做任何删除
func (r *Repository[E]) DeleteAll(ctx context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if r.indexOf(id) < 0 {
			return repository.NotFoundByID(id)
		}
		drop[id] = struct{}{}
	}
	r.items = slices.DeleteFunc(r.items, func(e E) bool {
		_, ok := drop[e.GetID()]
		return ok
	})
	return nil
}

// Items 返回当前实体的快照
func (r *Repository[E]) Items() []E {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.items)
}

// Replace 以 items 覆盖存储内容（用于预置数据）
func (r *Repository[E]) Replace(items []E) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = slices.Clone(items)
	if r.items == nil {
		r.items = make([]E, 0)
	}
}

// Find 返回第一个满足 match 的实体
func (r *Repository[E]) Find(match func(E) bool) (E, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, it := range r.items {
		if match(it) {
			return it, true
		}
	}
	var zero E
	return zero, false
}

// Len 返回实体数量
func (r *Repository[E]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

func (r *Repository[E]) indexOf(id string) int {
	return slices.IndexFunc(r.items, func(e E) bool {
		return e.GetID() == id
	})
}

var (
	_ repository.IRepository[*entity.Entity[struct{}]]     = (*Repository[*entity.Entity[struct{}]])(nil)
	_ repository.IBatchOperations[*entity.Entity[struct{}]] = (*Repository[*entity.Entity[struct{}]])(nil)
)
