package sql

import (
	"strings"

	"repokit/data/db/dialect"
)

// isSafeIdentifier 判断标识符是否为安全的数据库标识符
//
// 允许 foo、bar_1 以及 schema.table 形式；每段首字符为字母或下划线，
// 其余为字母、数字或下划线。
func isSafeIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for _, part := range strings.Split(name, ".") {
		if part == "" {
			return false
		}
		for i := 0; i < len(part); i++ {
			ch := part[i]
			letter := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
			if i == 0 && !letter {
				return false
			}
			if !letter && !(ch >= '0' && ch <= '9') {
				return false
			}
		}
	}
	return true
}

// quoteColumn 安全标识符按方言加引号，其他表达式（如 COUNT(*)）原样返回
func quoteColumn(d dialect.Dialect, col string) string {
	if isSafeIdentifier(col) {
		return d.QuoteIdentifier(col)
	}
	return col
}

func mustTable(d dialect.Dialect, builder, table string) string {
	if !isSafeIdentifier(table) {
		panic(builder + ": unsafe table name " + table)
	}
	return d.QuoteIdentifier(table)
}

func mustColumn(d dialect.Dialect, builder, col string) string {
	if !isSafeIdentifier(col) {
		panic(builder + ": unsafe column name " + col)
	}
	return d.QuoteIdentifier(col)
}

// inCondition 生成 col IN (?, ...)；n 为 0 时生成恒假条件
func inCondition(d dialect.Dialect, builder, col string, n int) string {
	if n == 0 {
		return "1 = 0"
	}
	return mustColumn(d, builder, col) + " IN (" + strings.TrimSuffix(strings.Repeat("?, ", n), ", ") + ")"
}
