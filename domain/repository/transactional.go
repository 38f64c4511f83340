package repository

import "context"

// ITransactional 支持事务的仓储接口（可选扩展）
//
// 事务通过 context 传递，后续操作使用 BeginTx 返回的 ctx 即加入同一事务：
//
//	ctx, err := repo.BeginTx(ctx)
//	if err != nil { return err }
//	defer repo.Rollback(ctx)
//
//	if err := repo.Insert(ctx, e); err != nil { return err }
//	return repo.Commit(ctx)
//
// Commit 之后的 Rollback 为空操作。
type ITransactional interface {
	BeginTx(ctx context.Context) (context.Context, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// RunInTx 在事务中执行 fn，fn 返回错误时回滚，否则提交
func RunInTx(ctx context.Context, tx ITransactional, fn func(ctx context.Context) error) error {
	txCtx, err := tx.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := fn(txCtx); err != nil {
		return err
	}
	return tx.Commit(txCtx)
}
