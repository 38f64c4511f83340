package sql

import (
	"context"
	"strings"

	core "repokit/data/db"
	"repokit/data/db/dialect"
)

type selectBuilder struct {
	db      core.IDatabase
	dialect dialect.Dialect

	cols    []string
	table   string
	where   []string
	args    []any
	orderBy []string
	limit   int
	offset  int
}

func (b *selectBuilder) From(table string) ISelectBuilder {
	b.table = table
	return b
}

func (b *selectBuilder) Where(cond string, args ...any) ISelectBuilder {
	if cond != "" {
		b.where = append(b.where, cond)
		b.args = append(b.args, args...)
	}
	return b
}

// WhereIn 以 AND 追加 column IN (...) 条件
func (b *selectBuilder) WhereIn(column string, vals ...any) ISelectBuilder {
	return b.Where(inCondition(b.dialect, "selectBuilder", column, len(vals)), vals...)
}

func (b *selectBuilder) And(cond string, args ...any) ISelectBuilder {
	return b.Where(cond, args...)
}

// Or 与上一个条件以 OR 组合并加括号
func (b *selectBuilder) Or(cond string, args ...any) ISelectBuilder {
	if cond == "" {
		return b
	}
	if len(b.where) == 0 {
		return b.Where(cond, args...)
	}
	last := b.where[len(b.where)-1]
	b.where[len(b.where)-1] = "(" + last + " OR " + cond + ")"
	b.args = append(b.args, args...)
	return b
}

// OrderBy 追加排序表达式（调用方负责表达式安全，通常由 dialect.OrderBy 生成）
func (b *selectBuilder) OrderBy(exprs ...string) ISelectBuilder {
	for _, e := range exprs {
		if e != "" {
			b.orderBy = append(b.orderBy, e)
		}
	}
	return b
}

// Limit n <= 0 时不生成 LIMIT
func (b *selectBuilder) Limit(n int) ISelectBuilder {
	b.limit = n
	return b
}

// Offset n <= 0 时不生成 OFFSET
func (b *selectBuilder) Offset(n int) ISelectBuilder {
	b.offset = n
	return b
}

func (b *selectBuilder) Build() (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	cols := make([]string, len(b.cols))
	for i, c := range b.cols {
		cols[i] = quoteColumn(b.dialect, c)
	}
	sb.WriteString(strings.Join(cols, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(mustTable(b.dialect, "selectBuilder", b.table))

	// 使用局部 args 副本，多次 Build 互不影响
	args := make([]any, 0, len(b.args)+2)
	args = append(args, b.args...)

	if len(b.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.where, " AND "))
	}
	if len(b.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, b.limit)
	}
	if b.offset > 0 {
		if b.limit <= 0 && b.dialect.Name() == dialect.NameSQLite {
			// SQLite 的 OFFSET 必须跟在 LIMIT 之后
			sb.WriteString(" LIMIT -1")
		}
		sb.WriteString(" OFFSET ?")
		args = append(args, b.offset)
	}
	return sb.String(), args
}

func (b *selectBuilder) Query(ctx context.Context) (core.IRows, error) {
	q, args := b.Build()
	return b.db.Query(ctx, q, args...)
}

func (b *selectBuilder) QueryRow(ctx context.Context) core.IRow {
	q, args := b.Build()
	return b.db.QueryRow(ctx, q, args...)
}
