package sql

import (
	"context"
	"database/sql"
	"strings"

	core "repokit/data/db"
	"repokit/data/db/dialect"
)

type updateBuilder struct {
	db      core.IDatabase
	dialect dialect.Dialect

	table     string
	setCols   []string
	setArgs   []any
	whereExpr []string
	whereArgs []any
}

// Set 按调用顺序生成 SET 子句
func (b *updateBuilder) Set(col string, val any) IUpdateBuilder {
	if col == "" {
		return b
	}
	b.setCols = append(b.setCols, col)
	b.setArgs = append(b.setArgs, val)
	return b
}

func (b *updateBuilder) Where(cond string, args ...any) IUpdateBuilder {
	if cond != "" {
		b.whereExpr = append(b.whereExpr, cond)
		b.whereArgs = append(b.whereArgs, args...)
	}
	return b
}

func (b *updateBuilder) Build() (string, []any) {
	if len(b.setCols) == 0 {
		panic("updateBuilder: no columns to set")
	}

	var sb strings.Builder
	args := make([]any, 0, len(b.setArgs)+len(b.whereArgs))

	sb.WriteString("UPDATE ")
	sb.WriteString(mustTable(b.dialect, "updateBuilder", b.table))
	sb.WriteString(" SET ")
	for i, col := range b.setCols {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(mustColumn(b.dialect, "updateBuilder", col))
		sb.WriteString(" = ?")
	}
	args = append(args, b.setArgs...)

	if len(b.whereExpr) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.whereExpr, " AND "))
		args = append(args, b.whereArgs...)
	}

	return sb.String(), args
}

func (b *updateBuilder) Exec(ctx context.Context) (sql.Result, error) {
	q, args := b.Build()
	return b.db.Exec(ctx, q, args...)
}
