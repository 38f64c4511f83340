// Package application 用户用例
//
// 每个用例是一个持有依赖的结构体，通过 Execute(ctx, input) 执行。
// 仓储错误经 errors.Normalize 转为 AppError，调用方按 ErrorCode 处理。
package application

import (
	"time"

	"repokit/domain/entity"
	"repokit/domain/repository"
	"repokit/users/domain"
)

// HashProvider 密码哈希
type HashProvider interface {
	GenerateHash(payload string) (string, error)
	CompareHash(payload, hash string) (bool, error)
}

// UserOutput 用户输出
type UserOutput struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToUserOutput 由实体构建输出
func ToUserOutput(u *domain.UserEntity) UserOutput {
	return UserOutput{
		ID:        u.GetID(),
		Name:      u.Name(),
		Email:     u.Email(),
		Password:  u.Password(),
		CreatedAt: u.CreatedAt(),
	}
}

// PaginationOutput 分页输出
type PaginationOutput[T any] struct {
	Items       []T `json:"items"`
	Total       int `json:"total"`
	CurrentPage int `json:"currentPage"`
	LastPage    int `json:"lastPage"`
	PerPage     int `json:"perPage"`
}

// ToPaginationOutput 将检索结果映射为分页输出
func ToPaginationOutput[E entity.IEntity, T any](res repository.SearchResult[E], mapItem func(E) T) PaginationOutput[T] {
	items := make([]T, 0, len(res.Items))
	for _, it := range res.Items {
		items = append(items, mapItem(it))
	}
	return PaginationOutput[T]{
		Items:       items,
		Total:       res.Total,
		CurrentPage: res.CurrentPage,
		LastPage:    res.LastPage,
		PerPage:     res.PerPage,
	}
}
