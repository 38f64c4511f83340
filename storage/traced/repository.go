// Package traced 为仓储操作创建 OpenTelemetry span
//
// 每次调用一个 span，名称为 repository.<op>；失败时记录错误并设置 Error 状态。
// 未找到属于正常业务结果，同样标记为错误，调用方可按 repository.error_code 属性区分。
package traced

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"repokit/domain/entity"
	"repokit/domain/repository"
)

const instrumentationName = "repokit/storage/traced"

// Repository 追踪装饰器
type Repository[E entity.IEntity] struct {
	next   repository.ISearchableRepository[E]
	name   string
	tracer trace.Tracer
}

// Option 装饰器选项
type Option[E entity.IEntity] func(*Repository[E])

// WithTracerProvider 指定 TracerProvider，默认使用全局
func WithTracerProvider[E entity.IEntity](tp trace.TracerProvider) Option[E] {
	return func(r *Repository[E]) {
		if tp != nil {
			r.tracer = tp.Tracer(instrumentationName)
		}
	}
}

// New 包装 next，name 写入 repository.name 属性
func New[E entity.IEntity](next repository.ISearchableRepository[E], name string, opts ...Option[E]) *Repository[E] {
	r := &Repository[E]{
		next:   next,
		name:   name,
		tracer: otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository[E]) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("repository.name", r.name))
	return r.tracer.Start(ctx, "repository."+op,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var repoErr *repository.RepositoryError
		if errors.As(err, &repoErr) {
			span.SetAttributes(attribute.String("repository.error_code", repoErr.Code))
		}
	}
	span.End()
}

func (r *Repository[E]) Insert(ctx context.Context, e E) (err error) {
	ctx, span := r.start(ctx, "insert", attribute.String("entity.id", e.GetID()))
	defer func() { end(span, err) }()
	return r.next.Insert(ctx, e)
}

func (r *Repository[E]) Update(ctx context.Context, e E) (err error) {
	ctx, span := r.start(ctx, "update", attribute.String("entity.id", e.GetID()))
	defer func() { end(span, err) }()
	return r.next.Update(ctx, e)
}

func (r *Repository[E]) FindByID(ctx context.Context, id string) (_ E, err error) {
	ctx, span := r.start(ctx, "find_by_id", attribute.String("entity.id", id))
	defer func() { end(span, err) }()
	return r.next.FindByID(ctx, id)
}

func (r *Repository[E]) FindAll(ctx context.Context) (items []E, err error) {
	ctx, span := r.start(ctx, "find_all")
	defer func() {
		span.SetAttributes(attribute.Int("result.count", len(items)))
		end(span, err)
	}()
	return r.next.FindAll(ctx)
}

func (r *Repository[E]) Delete(ctx context.Context, id string) (err error) {
	ctx, span := r.start(ctx, "delete", attribute.String("entity.id", id))
	defer func() { end(span, err) }()
	return r.next.Delete(ctx, id)
}

func (r *Repository[E]) Search(ctx context.Context, params repository.SearchParams) (res repository.SearchResult[E], err error) {
	ctx, span := r.start(ctx, "search",
		attribute.Int("search.page", params.Page()),
		attribute.Int("search.per_page", params.PerPage()),
		attribute.String("search.sort", params.Sort()),
		attribute.String("search.sort_dir", string(params.SortDir())),
		attribute.Bool("search.filtered", params.HasFilter()),
	)
	defer func() {
		if err == nil {
			span.SetAttributes(
				attribute.Int("search.total", res.Total),
				attribute.Int("search.returned", len(res.Items)),
			)
		}
		end(span, err)
	}()
	return r.next.Search(ctx, params)
}

func (r *Repository[E]) SortableFields() []string {
	return r.next.SortableFields()
}

var _ repository.ISearchableRepository[*entity.Entity[struct{}]] = (*Repository[*entity.Entity[struct{}]])(nil)
