// Package dialect 描述各数据库在 SQL 生成上的差异
package dialect

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"

	core "repokit/data/db"
)

// Name 标准化的数据库方言名称
type Name string

const (
	NameMySQL    Name = "mysql"
	NameSQLite   Name = "sqlite"
	NamePostgres Name = "postgres"
	NameUnknown  Name = ""
)

// 唯一约束冲突错误码
const (
	pgUniqueViolation          = "23505"
	mysqlDuplicateEntry        = 1062
	sqliteConstraintUnique     = 2067
	sqliteConstraintPrimaryKey = 1555
	likeEscape                 = '\\'
)

// Dialect 表示当前数据库的方言能力
type Dialect struct {
	name Name
}

// New 根据 driver 或方言名构造（大小写不敏感）
func New(name string) Dialect {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mysql":
		return Dialect{name: NameMySQL}
	case "sqlite", "sqlite3":
		return Dialect{name: NameSQLite}
	case "postgres", "postgresql", "pgx":
		return Dialect{name: NamePostgres}
	default:
		return Dialect{name: NameUnknown}
	}
}

// FromDatabase 从 IDatabase 实例推断方言，未实现 IDialectNameProvider 时返回 Unknown
func FromDatabase(db core.IDatabase) Dialect {
	if p, ok := db.(core.IDialectNameProvider); ok {
		return New(p.GetDialectName())
	}
	return Dialect{name: NameUnknown}
}

// Name 返回标准化方言名
func (d Dialect) Name() Name {
	return d.name
}

// QuoteIdentifier 根据方言对标识符加引号，支持 table.column 形式。
// MySQL 使用反引号，Postgres/SQLite 使用双引号，未知方言原样返回。
func (d Dialect) QuoteIdentifier(name string) string {
	if name == "" {
		return ""
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		if p == "" {
			continue
		}
		switch d.name {
		case NameMySQL:
			parts[i] = "`" + p + "`"
		case NameSQLite, NamePostgres:
			parts[i] = `"` + p + `"`
		}
	}
	return strings.Join(parts, ".")
}

// Rebind 将通用占位符 ? 转换为方言特定形式（Postgres 为 $1、$2...）
//
// 只做字符扫描，字符串字面量中的 ? 也会被替换，参数一律走占位符。
func (d Dialect) Rebind(query string) string {
	if d.name != NamePostgres || query == "" {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			n++
			continue
		}
		sb.WriteByte(query[i])
	}
	return sb.String()
}

// ContainsFold 生成大小写不敏感的子串匹配条件及其参数
//
// Postgres 使用 ILIKE；其他方言使用 LOWER(col) LIKE，并对参数小写化。
// 参数中的 %、_ 与转义符本身会被转义，按字面匹配。
func (d Dialect) ContainsFold(column, needle string) (string, any) {
	col := d.QuoteIdentifier(column)
	switch d.name {
	case NamePostgres:
		return col + " ILIKE ?", "%" + escapeLike(needle) + "%"
	case NameMySQL:
		return "LOWER(" + col + ") LIKE ?", "%" + escapeLike(strings.ToLower(needle)) + "%"
	default:
		return "LOWER(" + col + `) LIKE ? ESCAPE '\'`, "%" + escapeLike(strings.ToLower(needle)) + "%"
	}
}

// OrderBy 生成排序片段；text 为 true 时按字节序比较字符串
func (d Dialect) OrderBy(column string, desc, text bool) string {
	expr := d.QuoteIdentifier(column)
	if text {
		switch d.name {
		case NamePostgres:
			expr += ` COLLATE "C"`
		case NameMySQL:
			expr = "BINARY " + expr
		}
	}
	if desc {
		return expr + " DESC"
	}
	return expr + " ASC"
}

// IsUniqueViolation 判断错误是否为唯一键/主键冲突
//
// 优先识别驱动错误类型（pgconn.PgError、mysql.MySQLError、sqlite 扩展错误码），
// 无法识别时退回到错误消息关键字匹配。
func (d Dialect) IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var coded interface{ Code() int }
	if errors.As(err, &coded) {
		switch coded.Code() {
		case sqliteConstraintUnique, sqliteConstraintPrimaryKey:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	switch d.name {
	case NameMySQL:
		return strings.Contains(msg, "duplicate entry")
	case NameSQLite:
		return strings.Contains(msg, "unique constraint failed")
	default:
		return strings.Contains(msg, "duplicate key") ||
			strings.Contains(msg, "unique constraint")
	}
}

func escapeLike(s string) string {
	if !strings.ContainsAny(s, `%_\`) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + 4)
	for _, r := range s {
		if r == '%' || r == '_' || r == likeEscape {
			sb.WriteRune(likeEscape)
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
