// Package memory 用户仓储的内存实现
package memory

import (
	"context"

	"repokit/domain/repository"
	"repokit/storage/memory"
	"repokit/users/domain"
)

// UserRepository 内存用户仓储
type UserRepository struct {
	*memory.SearchableRepository[*domain.UserEntity]
}

// New 创建内存用户仓储，默认按 createdAt 倒序
func New() *UserRepository {
	ds := domain.DefaultSort()
	return &UserRepository{
		SearchableRepository: memory.NewSearchable(
			domain.FilterByName,
			domain.SortFields(),
			memory.WithDefaultSort[*domain.UserEntity](ds.Field, ds.Dir),
		),
	}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.UserEntity, error) {
	u, ok := r.Find(func(u *domain.UserEntity) bool { return u.Email() == email })
	if !ok {
		return nil, domain.NotFoundByEmail(email)
	}
	return u, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) error {
	if _, ok := r.Find(func(u *domain.UserEntity) bool { return u.Email() == email }); ok {
		return domain.EmailConflict(email)
	}
	return nil
}

var (
	_ domain.IUserRepository                           = (*UserRepository)(nil)
	_ repository.IBatchOperations[*domain.UserEntity] = (*UserRepository)(nil)
)
