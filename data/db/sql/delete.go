package sql

import (
	"context"
	"database/sql"
	"strings"

	core "repokit/data/db"
	"repokit/data/db/dialect"
)

type deleteBuilder struct {
	db      core.IDatabase
	dialect dialect.Dialect

	table string
	conds []string
	args  []any
}

func (b *deleteBuilder) Where(cond string, args ...any) IDeleteBuilder {
	if cond != "" {
		b.conds = append(b.conds, cond)
		b.args = append(b.args, args...)
	}
	return b
}

func (b *deleteBuilder) WhereIn(column string, vals ...any) IDeleteBuilder {
	b.conds = append(b.conds, inCondition(b.dialect, "deleteBuilder", column, len(vals)))
	b.args = append(b.args, vals...)
	return b
}

// Build 没有条件时生成整表删除
func (b *deleteBuilder) Build() (string, []any) {
	q := "DELETE FROM " + mustTable(b.dialect, "deleteBuilder", b.table)
	if len(b.conds) > 0 {
		q += " WHERE " + strings.Join(b.conds, " AND ")
	}
	return q, append([]any(nil), b.args...)
}

func (b *deleteBuilder) Exec(ctx context.Context) (sql.Result, error) {
	q, args := b.Build()
	return b.db.Exec(ctx, q, args...)
}
