package basic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	core "repokit/data/db"
)

func newSQLite(t *testing.T) *DB {
	t.Helper()
	db, err := New(core.DBConfig{Driver: "sqlite", DSN: ":memory:", MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(context.Background(), `CREATE TABLE items (id TEXT PRIMARY KEY, name TEXT NOT NULL)`)
	require.NoError(t, err)
	return db
}

func count(t *testing.T, db core.IDatabase) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(context.Background(), `SELECT COUNT(*) FROM items`).Scan(&n))
	return n
}

func TestNew_SQLite(t *testing.T) {
	db := newSQLite(t)
	ctx := context.Background()

	assert.Equal(t, "sqlite", db.GetDialectName())
	require.NoError(t, db.Ping(ctx))

	_, err := db.Exec(ctx, `INSERT INTO items (id, name) VALUES (?, ?)`, "1", "a")
	require.NoError(t, err)

	rows, err := db.Query(ctx, `SELECT id, name FROM items`)
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())
	var id, name string
	require.NoError(t, rows.Scan(&id, &name))
	assert.Equal(t, "1", id)
	assert.Equal(t, "a", name)
	assert.False(t, rows.Next())
	assert.NoError(t, rows.Err())
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(core.DBConfig{Driver: "nope", DSN: "x"})
	assert.Error(t, err)
}

func TestTx_CommitAndRollback(t *testing.T) {
	db := newSQLite(t)
	ctx := context.Background()

	tx, err := db.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.Exec(ctx, `INSERT INTO items (id, name) VALUES (?, ?)`, "1", "a")
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())
	assert.Equal(t, 0, count(t, db))

	tx, err = db.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.Exec(ctx, `INSERT INTO items (id, name) VALUES (?, ?)`, "1", "a")
	require.NoError(t, err)

	var n int
	require.NoError(t, tx.QueryRow(ctx, `SELECT COUNT(*) FROM items`).Scan(&n))
	assert.Equal(t, 1, n)
	require.NoError(t, tx.Commit())
	assert.Equal(t, 1, count(t, db))
}

func TestTx_Nested(t *testing.T) {
	db := newSQLite(t)
	tx, err := db.Begin(context.Background())
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Begin(context.Background())
	assert.ErrorIs(t, err, ErrNestedTx)
	assert.Equal(t, "sqlite", tx.(core.IDialectNameProvider).GetDialectName())
}
