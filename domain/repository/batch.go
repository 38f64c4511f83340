package repository

import (
	"context"

	"repokit/domain/entity"
)

// IBatchOperations 批量操作接口（可选扩展）
//
// 关系型后端在单个事务内执行，任一失败则整体回滚；
// 内存后端在一次加锁内完成。
type IBatchOperations[E entity.IEntity] interface {
	// InsertAll 批量新增
	InsertAll(ctx context.Context, entities []E) error

	// DeleteAll 批量删除，任一 ID 不存在时返回 ErrEntityNotFound 且不做任何删除
	DeleteAll(ctx context.Context, ids []string) error
}
