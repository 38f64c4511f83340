// Package db 提供通用的数据库抽象接口
//
// 仓储实现只依赖这里的接口，具体驱动（sqlite、pgx、mysql）由 basic 包在 database/sql 之上适配，
// 单元测试可直接用 go-sqlmock 构造的 *sql.DB 包装出 IDatabase。
package db

import (
	"context"
	"database/sql"
	"time"
)

// IDatabase 通用数据库接口
type IDatabase interface {
	// 查询操作
	Query(ctx context.Context, query string, args ...any) (IRows, error)
	QueryRow(ctx context.Context, query string, args ...any) IRow

	// 执行操作
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)

	// 事务操作
	Begin(ctx context.Context) (ITransaction, error)

	// 连接管理
	Ping(ctx context.Context) error
	Close() error
}

// IDialectNameProvider 可选接口：提供底层数据库方言名称
//
// 实现方应返回诸如 "mysql"、"sqlite"、"postgres" 等 driver/dialect 名。
type IDialectNameProvider interface {
	GetDialectName() string
}

// ITransaction 事务接口
type ITransaction interface {
	IDatabase

	Commit() error
	Rollback() error
}

// IScanner 可扫描的单行数据（IRows 与 IRow 都满足）
type IScanner interface {
	Scan(dest ...any) error
}

// IRows 查询结果集接口
type IRows interface {
	IScanner

	Next() bool
	Close() error
	Err() error
}

// IRow 单行结果接口
type IRow interface {
	IScanner
}

// DBConfig 数据库配置
type DBConfig struct {
	Driver string // sqlite, pgx, postgres, mysql
	DSN    string

	// 连接池配置
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// PingTimeout 建立连接后的可用性检查超时，默认 3 秒
	PingTimeout time.Duration
}
