package notify

import (
	"context"
	"time"

	"repokit/domain/entity"
	"repokit/domain/repository"
	"repokit/logging"
	"repokit/retry"
)

// Repository 写操作成功后发布变更事件的仓储装饰器
type Repository[E entity.IEntity] struct {
	next      repository.ISearchableRepository[E]
	publisher Publisher
	logger    logging.Logger
	project   func(E) map[string]any
	retry     retry.Config
	now       func() time.Time
}

// Option 装饰器选项
type Option[E entity.IEntity] func(*Repository[E])

// WithProjection 自定义事件中的实体快照（默认 ToJSON），可用于剔除敏感字段
func WithProjection[E entity.IEntity](fn func(E) map[string]any) Option[E] {
	return func(r *Repository[E]) {
		if fn != nil {
			r.project = fn
		}
	}
}

// WithLogger 设置日志
func WithLogger[E entity.IEntity](l logging.Logger) Option[E] {
	return func(r *Repository[E]) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRetry 发布失败时按 cfg 重试，默认只尝试一次
func WithRetry[E entity.IEntity](cfg retry.Config) Option[E] {
	return func(r *Repository[E]) {
		r.retry = cfg
	}
}

// New 包装 next
func New[E entity.IEntity](next repository.ISearchableRepository[E], publisher Publisher, opts ...Option[E]) *Repository[E] {
	r := &Repository[E]{
		next:      next,
		publisher: publisher,
		logger:    logging.ComponentLogger("repository.notify"),
		project:   func(e E) map[string]any { return e.ToJSON() },
		retry:     retry.Once(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository[E]) Insert(ctx context.Context, e E) error {
	if err := r.next.Insert(ctx, e); err != nil {
		return err
	}
	r.publish(ctx, EventInserted, e.GetID(), r.project(e))
	return nil
}

func (r *Repository[E]) Update(ctx context.Context, e E) error {
	if err := r.next.Update(ctx, e); err != nil {
		return err
	}
	r.publish(ctx, EventUpdated, e.GetID(), r.project(e))
	return nil
}

func (r *Repository[E]) Delete(ctx context.Context, id string) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.publish(ctx, EventDeleted, id, nil)
	return nil
}

func (r *Repository[E]) FindByID(ctx context.Context, id string) (E, error) {
	return r.next.FindByID(ctx, id)
}

func (r *Repository[E]) FindAll(ctx context.Context) ([]E, error) {
	return r.next.FindAll(ctx)
}

func (r *Repository[E]) Search(ctx context.Context, params repository.SearchParams) (repository.SearchResult[E], error) {
	return r.next.Search(ctx, params)
}

func (r *Repository[E]) SortableFields() []string {
	return r.next.SortableFields()
}

func (r *Repository[E]) publish(ctx context.Context, t EventType, id string, snapshot map[string]any) {
	event := ChangeEvent{Type: t, EntityID: id, Entity: snapshot, OccurredAt: r.now().UTC()}
	err := retry.Do(ctx, r.retry, func(ctx context.Context, _ int) error {
		return r.publisher.Publish(ctx, event)
	})
	if err != nil {
		r.logger.Warn(ctx, "publish change event failed",
			logging.String("type", string(t)),
			logging.String("entity_id", id),
			logging.Error(err),
		)
	}
}

var _ repository.ISearchableRepository[*entity.Entity[struct{}]] = (*Repository[*entity.Entity[struct{}]])(nil)
