package memory

import (
	"context"

	"repokit/domain/entity"
	"repokit/domain/repository"
)

// SearchableRepository 可检索内存仓储
//
// Search 在读锁下取快照后执行 Pipeline，不会观察到并发写入的中间状态。
type SearchableRepository[E entity.IEntity] struct {
	*Repository[E]
	pipeline repository.Pipeline[E]
}

// Option 构造选项
type Option[E entity.IEntity] func(*SearchableRepository[E])

// WithDefaultSort 未指定排序或排序字段不可用时采用的排序
func WithDefaultSort[E entity.IEntity](field string, dir repository.SortDirection) Option[E] {
	return func(r *SearchableRepository[E]) {
		r.pipeline.DefaultSort = &repository.DefaultSort{Field: field, Dir: dir}
	}
}

// NewSearchable 创建可检索内存仓储，filter 为必需参数
func NewSearchable[E entity.IEntity](filter repository.FilterFunc[E], fields repository.Fields[E], opts ...Option[E]) *SearchableRepository[E] {
	if filter == nil {
		panic("memory: filter function is required")
	}
	r := &SearchableRepository[E]{
		Repository: NewRepository[E](),
		pipeline:   repository.Pipeline[E]{Filter: filter, Fields: fields},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Search 过滤 → 排序 → 分页
func (r *SearchableRepository[E]) Search(ctx context.Context, params repository.SearchParams) (repository.SearchResult[E], error) {
	if err := ctx.Err(); err != nil {
		return repository.SearchResult[E]{}, err
	}
	return r.pipeline.Run(r.Items(), params), nil
}

// SortableFields 可排序字段
func (r *SearchableRepository[E]) SortableFields() []string {
	return r.pipeline.SortableFields()
}

// Pipeline 返回检索流水线（供装饰器复用同一套语义）
func (r *SearchableRepository[E]) Pipeline() repository.Pipeline[E] {
	return r.pipeline
}

var _ repository.ISearchableRepository[*entity.Entity[struct{}]] = (*SearchableRepository[*entity.Entity[struct{}]])(nil)
