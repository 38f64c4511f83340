// Package sqlstore 提供基于 data/db 的关系型仓储实现
//
// 过滤、排序、分页全部下推为 SQL：
//
//	SELECT COUNT(*) FROM t WHERE <filter>
//	SELECT cols FROM t WHERE <filter> ORDER BY <col> <dir>, id LIMIT ? OFFSET ?
//
// 对外语义与内存后端一致：Total 为过滤后数量，LastPage 由 Total/PerPage 推导，
// 越界页返回空集合。
package sqlstore

import (
	"context"
	"database/sql"
	stdErrors "errors"

	core "repokit/data/db"
	"repokit/data/db/dialect"
	dbsql "repokit/data/db/sql"
	"repokit/domain/entity"
	"repokit/domain/repository"
	"repokit/errors"
	"repokit/logging"
)

type txKey struct{}

// Repository 关系型可检索仓储
type Repository[E entity.IEntity] struct {
	db      core.IDatabase
	dialect dialect.Dialect
	mapper  Mapper[E]
	logger  logging.Logger
}

// Option 构造选项
type Option[E entity.IEntity] func(*Repository[E])

// WithLogger 设置日志
func WithLogger[E entity.IEntity](l logging.Logger) Option[E] {
	return func(r *Repository[E]) {
		if l != nil {
			r.logger = l
		}
	}
}

// New 创建仓储，mapper 不完整时返回错误
func New[E entity.IEntity](db core.IDatabase, mapper Mapper[E], opts ...Option[E]) (*Repository[E], error) {
	if err := mapper.validate(); err != nil {
		return nil, err
	}
	r := &Repository[E]{
		db:      db,
		dialect: dialect.FromDatabase(db),
		mapper:  mapper,
		logger:  logging.ComponentLogger("repository.sql").WithFields(logging.String("table", mapper.Table)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// conn 返回 ctx 中的事务，否则返回连接池
func (r *Repository[E]) conn(ctx context.Context) core.IDatabase {
	if tx, ok := ctx.Value(txKey{}).(core.ITransaction); ok {
		return tx
	}
	return r.db
}

func (r *Repository[E]) sql(ctx context.Context) dbsql.ISql {
	return dbsql.New(r.conn(ctx))
}

func (r *Repository[E]) idCond() string {
	return r.dialect.QuoteIdentifier(r.mapper.IDColumn()) + " = ?"
}

// Insert 新增实体，唯一约束冲突返回 ErrEntityConflict
func (r *Repository[E]) Insert(ctx context.Context, e E) error {
	_, err := r.sql(ctx).InsertInto(r.mapper.Table).
		Columns(r.mapper.Columns...).
		Values(r.mapper.Values(e)...).
		Exec(ctx)
	return r.writeErr(ctx, err, "insert", e.GetID())
}

// Update 按 ID 更新全部非主键列
func (r *Repository[E]) Update(ctx context.Context, e E) error {
	values := r.mapper.Values(e)
	b := r.sql(ctx).Update(r.mapper.Table)
	for i, col := range r.mapper.Columns[1:] {
		b.Set(col, values[i+1])
	}
	res, err := b.Where(r.idCond(), e.GetID()).Exec(ctx)
	if err != nil {
		return r.writeErr(ctx, err, "update", e.GetID())
	}
	return r.expectAffected(ctx, res, e.GetID(), "update")
}

// FindByID 按 ID 查找
func (r *Repository[E]) FindByID(ctx context.Context, id string) (E, error) {
	row := r.sql(ctx).Select(r.mapper.Columns...).
		From(r.mapper.Table).
		Where(r.idCond(), id).
		Limit(1).
		QueryRow(ctx)

	e, err := r.mapper.Scan(row)
	if err != nil {
		var zero E
		if stdErrors.Is(err, sql.ErrNoRows) {
			return zero, repository.NotFoundByID(id)
		}
		return zero, errors.WrapDatabaseError(ctx, err, "find_by_id")
	}
	return e, nil
}

// FindAll 返回全部实体（数据库自然顺序）
func (r *Repository[E]) FindAll(ctx context.Context) ([]E, error) {
	rows, err := r.sql(ctx).Select(r.mapper.Columns...).From(r.mapper.Table).Query(ctx)
	if err != nil {
		return nil, errors.WrapDatabaseError(ctx, err, "find_all")
	}
	return r.scanAll(ctx, rows)
}

// FindOneBy 按单列等值查找第一条记录，不存在时返回 ErrEntityNotFound
func (r *Repository[E]) FindOneBy(ctx context.Context, column string, value any) (E, error) {
	row := r.sql(ctx).Select(r.mapper.Columns...).
		From(r.mapper.Table).
		Where(r.dialect.QuoteIdentifier(column)+" = ?", value).
		Limit(1).
		QueryRow(ctx)

	e, err := r.mapper.Scan(row)
	if err != nil {
		var zero E
		if stdErrors.Is(err, sql.ErrNoRows) {
			return zero, repository.NewNotFoundError("Entity not found by %s %v", column, value)
		}
		return zero, errors.WrapDatabaseError(ctx, err, "find_one_by")
	}
	return e, nil
}

// ExistsBy 判断单列等值的记录是否存在
func (r *Repository[E]) ExistsBy(ctx context.Context, column string, value any) (bool, error) {
	var n int
	err := r.sql(ctx).Select("COUNT(*)").
		From(r.mapper.Table).
		Where(r.dialect.QuoteIdentifier(column)+" = ?", value).
		QueryRow(ctx).
		Scan(&n)
	if err != nil {
		return false, errors.WrapDatabaseError(ctx, err, "exists_by")
	}
	return n > 0, nil
}

// Delete 按 ID 删除
func (r *Repository[E]) Delete(ctx context.Context, id string) error {
	res, err := r.sql(ctx).DeleteFrom(r.mapper.Table).
		Where(r.idCond(), id).
		Exec(ctx)
	if err != nil {
		return errors.WrapDatabaseError(ctx, err, "delete")
	}
	return r.expectAffected(ctx, res, id, "delete")
}

// InsertAll 在单个事务中批量新增
func (r *Repository[E]) InsertAll(ctx context.Context, entities []E) error {
	if len(entities) == 0 {
		return nil
	}
	return r.inTx(ctx, func(ctx context.Context) error {
		b := r.sql(ctx).InsertInto(r.mapper.Table).Columns(r.mapper.Columns...)
		for _, e := range entities {
			b.Values(r.mapper.Values(e)...)
		}
		_, err := b.Exec(ctx)
		return r.writeErr(ctx, err, "insert_all", "")
	})
}

// DeleteAll 在单个事务中先确认全部 ID 存在再一次性删除，任一 ID 不存在时回滚
func (r *Repository[E]) DeleteAll(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	idCol := r.mapper.IDColumn()

	return r.inTx(ctx, func(ctx context.Context) error {
		rows, err := r.sql(ctx).Select(idCol).From(r.mapper.Table).WhereIn(idCol, args...).Query(ctx)
		if err != nil {
			return errors.WrapDatabaseError(ctx, err, "delete_all")
		}
		found := make(map[string]struct{}, len(ids))
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				_ = rows.Close()
				return errors.WrapDatabaseError(ctx, err, "delete_all")
			}
			found[id] = struct{}{}
		}
		if err := rows.Err(); err != nil {
			_ = rows.Close()
			return errors.WrapDatabaseError(ctx, err, "delete_all")
		}
		_ = rows.Close()

		for i, id := range args {
			if _, ok := found[id.(string)]; !ok {
				return repository.NotFoundByID(ids[i])
			}
		}

		_, err = r.sql(ctx).DeleteFrom(r.mapper.Table).WhereIn(idCol, args...).Exec(ctx)
		return errors.WrapDatabaseError(ctx, err, "delete_all")
	})
}

// Search 过滤 → 排序 → 分页
func (r *Repository[E]) Search(ctx context.Context, params repository.SearchParams) (repository.SearchResult[E], error) {
	var total int
	count := r.sql(ctx).Select("COUNT(*)").From(r.mapper.Table)
	r.applyFilter(count, params.Filter())
	if err := count.QueryRow(ctx).Scan(&total); err != nil {
		return repository.SearchResult[E]{}, errors.WrapDatabaseError(ctx, err, "search_count")
	}

	items := make([]E, 0, params.PerPage())
	if params.Offset() < total {
		q := r.sql(ctx).Select(r.mapper.Columns...).From(r.mapper.Table)
		r.applyFilter(q, params.Filter())
		q.OrderBy(r.orderBy(params.Sort(), params.SortDir())...).
			Limit(params.PerPage()).
			Offset(params.Offset())

		rows, err := q.Query(ctx)
		if err != nil {
			return repository.SearchResult[E]{}, errors.WrapDatabaseError(ctx, err, "search")
		}
		if items, err = r.scanAll(ctx, rows); err != nil {
			return repository.SearchResult[E]{}, err
		}
	}

	r.logger.Debug(ctx, "search",
		logging.String("params", params.String()),
		logging.Int("total", total),
		logging.Int("returned", len(items)),
	)

	return repository.NewSearchResult(repository.SearchResultProps[E]{
		Items:       items,
		Total:       total,
		CurrentPage: params.Page(),
		PerPage:     params.PerPage(),
		Sort:        params.Sort(),
		SortDir:     params.SortDir(),
		Filter:      params.Filter(),
	}), nil
}

// SortableFields 可排序字段
func (r *Repository[E]) SortableFields() []string {
	out := make([]string, len(r.mapper.SortOrder))
	copy(out, r.mapper.SortOrder)
	return out
}

// EnsureSchema 执行调用方提供的 DDL（不做迁移管理）
func (r *Repository[E]) EnsureSchema(ctx context.Context, ddl ...string) error {
	for _, stmt := range ddl {
		if _, err := r.conn(ctx).Exec(ctx, stmt); err != nil {
			return errors.WrapDatabaseError(ctx, err, "ensure_schema")
		}
	}
	return nil
}

// BeginTx 开启事务，返回携带事务的 ctx；已在事务中时原样返回
func (r *Repository[E]) BeginTx(ctx context.Context) (context.Context, error) {
	if _, ok := ctx.Value(txKey{}).(core.ITransaction); ok {
		return ctx, nil
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return ctx, errors.WrapDatabaseError(ctx, err, "begin")
	}
	return context.WithValue(ctx, txKey{}, tx), nil
}

// Commit 提交 ctx 中的事务
func (r *Repository[E]) Commit(ctx context.Context) error {
	tx, ok := ctx.Value(txKey{}).(core.ITransaction)
	if !ok {
		return errors.NewError(errors.ErrCodeDatabase, "no transaction in context")
	}
	if err := tx.Commit(); err != nil && !stdErrors.Is(err, sql.ErrTxDone) {
		return errors.WrapDatabaseError(ctx, err, "commit")
	}
	return nil
}

// Rollback 回滚 ctx 中的事务；已提交或已回滚时为空操作
func (r *Repository[E]) Rollback(ctx context.Context) error {
	tx, ok := ctx.Value(txKey{}).(core.ITransaction)
	if !ok {
		return nil
	}
	if err := tx.Rollback(); err != nil && !stdErrors.Is(err, sql.ErrTxDone) {
		return errors.WrapDatabaseError(ctx, err, "rollback")
	}
	return nil
}

func (r *Repository[E]) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(core.ITransaction); ok {
		return fn(ctx)
	}
	return repository.RunInTx(ctx, r, fn)
}

func (r *Repository[E]) applyFilter(b dbsql.ISelectBuilder, filter string) {
	if filter == "" {
		return
	}
	for i, col := range r.mapper.FilterColumns {
		cond, arg := r.dialect.ContainsFold(col, filter)
		if i == 0 {
			b.Where(cond, arg)
		} else {
			b.Or(cond, arg)
		}
	}
}

func (r *Repository[E]) orderBy(sort string, dir repository.SortDirection) []string {
	col, ok := r.mapper.SortColumns[sort]
	if !ok {
		if r.mapper.DefaultSort == nil {
			return nil
		}
		col = r.mapper.SortColumns[r.mapper.DefaultSort.Field]
		dir = r.mapper.DefaultSort.Dir
	}
	return []string{
		r.dialect.OrderBy(col.Column, dir != repository.SortAsc, col.Text),
		r.dialect.OrderBy(r.mapper.IDColumn(), false, false),
	}
}

func (r *Repository[E]) scanAll(ctx context.Context, rows core.IRows) ([]E, error) {
	defer rows.Close()

	out := make([]E, 0)
	for rows.Next() {
		e, err := r.mapper.Scan(rows)
		if err != nil {
			return nil, errors.WrapDatabaseError(ctx, err, "scan")
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapDatabaseError(ctx, err, "rows")
	}
	return out, nil
}

func (r *Repository[E]) expectAffected(ctx context.Context, res sql.Result, id, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.WrapDatabaseError(ctx, err, op)
	}
	if n == 0 {
		return repository.NotFoundByID(id)
	}
	return nil
}

func (r *Repository[E]) writeErr(ctx context.Context, err error, op, id string) error {
	if err == nil {
		return nil
	}
	if r.dialect.IsUniqueViolation(err) {
		return &repository.RepositoryError{
			Code:     repository.CodeEntityConflict,
			Message:  "entity already exists",
			EntityID: id,
			Cause:    err,
		}
	}
	return errors.WrapDatabaseError(ctx, err, op)
}

var (
	_ repository.ISearchableRepository[*entity.Entity[struct{}]] = (*Repository[*entity.Entity[struct{}]])(nil)
	_ repository.IBatchOperations[*entity.Entity[struct{}]]      = (*Repository[*entity.Entity[struct{}]])(nil)
	_ repository.ITransactional                                  = (*Repository[*entity.Entity[struct{}]])(nil)
)
