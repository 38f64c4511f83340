// Package repository 定义与存储无关的实体仓储契约与检索抽象。
//
// 包含：
//   - IRepository：任意后端都必须支持的最小 CRUD 契约；
//   - ISearchableRepository：在 CRUD 之上增加 Search（过滤 → 排序 → 分页）；
//   - SearchParams / SearchResult：规范化的查询描述与分页结果；
//   - Pipeline：内存版检索流水线，其他后端（关系型、Redis 等）需在语义上与之保持一致。
package repository

import (
	"context"

	"repokit/domain/entity"
)

// IRepository 简单 CRUD 仓储接口
type IRepository[E entity.IEntity] interface {
	// Insert 新增实体（本层不做唯一性校验）
	Insert(ctx context.Context, e E) error

	// Update 按 ID 替换实体，不存在时返回 ErrEntityNotFound
	Update(ctx context.Context, e E) error

	// FindByID 通过 ID 获取实体，不存在时返回 ErrEntityNotFound
	FindByID(ctx context.Context, id string) (E, error)

	// FindAll 按后端存储顺序返回全部实体（内存后端为插入顺序）
	FindAll(ctx context.Context) ([]E, error)

	// Delete 按 ID 删除实体，不存在时返回 ErrEntityNotFound
	Delete(ctx context.Context, id string) error
}

// ISearchableRepository 可检索仓储接口
type ISearchableRepository[E entity.IEntity] interface {
	IRepository[E]

	// Search 执行过滤 → 排序 → 分页，Total 为过滤后、分页前的数量
	// Search 从不返回 ErrEntityNotFound
	Search(ctx context.Context, params SearchParams) (SearchResult[E], error)

	// SortableFields 返回允许排序的字段名
	SortableFields() []string
}
