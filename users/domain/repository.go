package domain

import (
	"context"
	"strings"

	"repokit/domain/repository"
)

// 可排序字段
const (
	SortByName      = "name"
	SortByCreatedAt = "createdAt"
)

// IUserRepository 用户仓储
type IUserRepository interface {
	repository.ISearchableRepository[*UserEntity]

	// FindByEmail 按邮箱查找，不存在时返回 ErrEntityNotFound
	FindByEmail(ctx context.Context, email string) (*UserEntity, error)

	// EmailExists 邮箱已被占用时返回 ErrEntityConflict
	EmailExists(ctx context.Context, email string) error
}

// FilterByName 名称包含过滤串（大小写不敏感）
func FilterByName(u *UserEntity, filter string) bool {
	return strings.Contains(strings.ToLower(u.Name()), strings.ToLower(filter))
}

// SortFields 用户可排序字段
func SortFields() repository.Fields[*UserEntity] {
	return repository.NewFields(
		repository.StringField(SortByName, (*UserEntity).Name),
		repository.TimeField(SortByCreatedAt, (*UserEntity).CreatedAt),
	)
}

// DefaultSort 默认按创建时间倒序
func DefaultSort() *repository.DefaultSort {
	return &repository.DefaultSort{Field: SortByCreatedAt, Dir: repository.SortDesc}
}

// SearchPipeline 用户检索流水线，非关系型后端共用
func SearchPipeline() repository.Pipeline[*UserEntity] {
	return repository.Pipeline[*UserEntity]{
		Filter:      FilterByName,
		Fields:      SortFields(),
		DefaultSort: DefaultSort(),
	}
}

// NotFoundByEmail 按邮箱未找到
func NotFoundByEmail(email string) error {
	return repository.NewNotFoundError("Entity not found by email %s", email)
}

// EmailConflict 邮箱已存在
func EmailConflict(email string) error {
	return repository.NewConflictError("Email already exists %s", email)
}
