// Package redisrepo 用户仓储的 Redis 实现
package redisrepo

import (
	"context"

	"repokit/storage/redisstore"
	"repokit/users/domain"
)

// UserRepository Redis 用户仓储
//
// FindByEmail / EmailExists 按插入顺序扫描全部用户。
type UserRepository struct {
	*redisstore.Repository[*domain.UserEntity]
}

// Codec 用户编解码器
func Codec() redisstore.Codec[*domain.UserEntity] {
	return redisstore.NewJSONCodec(
		func(u *domain.UserEntity) domain.UserProps { return u.Props },
		domain.RestoreUser,
	)
}

// New 创建 Redis 用户仓储
func New(cfg redisstore.Config) (*UserRepository, error) {
	repo, err := redisstore.New(cfg, Codec(), domain.SearchPipeline())
	if err != nil {
		return nil, err
	}
	return &UserRepository{Repository: repo}, nil
}

func (r *UserRepository) findByEmail(ctx context.Context, email string) (*domain.UserEntity, error) {
	all, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range all {
		if u.Email() == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.UserEntity, error) {
	u, err := r.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFoundByEmail(email)
	}
	return u, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) error {
	u, err := r.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u != nil {
		return domain.EmailConflict(email)
	}
	return nil
}

var _ domain.IUserRepository = (*UserRepository)(nil)
