// Package sqlrepo 用户仓储的关系型实现（表 users）
package sqlrepo

import (
	"context"
	"time"

	core "repokit/data/db"
	"repokit/domain/repository"
	"repokit/storage/sqlstore"
	"repokit/users/domain"
)

// Table 用户表名
const Table = "users"

// Schema 三种方言通用的建表语句；created_at 存 Unix 纳秒
const Schema = `CREATE TABLE IF NOT EXISTS users (
	id VARCHAR(36) NOT NULL PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	email VARCHAR(100) NOT NULL UNIQUE,
	password VARCHAR(100) NOT NULL,
	created_at BIGINT NOT NULL
)`

// UserRepository 关系型用户仓储
type UserRepository struct {
	*sqlstore.Repository[*domain.UserEntity]
}

// Mapper 用户表映射
func Mapper() sqlstore.Mapper[*domain.UserEntity] {
	return sqlstore.Mapper[*domain.UserEntity]{
		Table:   Table,
		Columns: []string{"id", "name", "email", "password", "created_at"},
		Values: func(u *domain.UserEntity) []any {
			return []any{
				u.GetID(),
				u.Name(),
				u.Email(),
				u.Password(),
				u.CreatedAt().UnixNano(),
			}
		},
		Scan: func(row core.IScanner) (*domain.UserEntity, error) {
			var (
				id string
				p  domain.UserProps
				ts int64
			)
			if err := row.Scan(&id, &p.Name, &p.Email, &p.Password, &ts); err != nil {
				return nil, err
			}
			p.CreatedAt = time.Unix(0, ts).UTC()
			return domain.RestoreUser(id, p), nil
		},
		FilterColumns: []string{"name"},
		SortColumns: map[string]sqlstore.SortColumn{
			domain.SortByName:      {Column: "name", Text: true},
			domain.SortByCreatedAt: {Column: "created_at"},
		},
		SortOrder:   []string{domain.SortByName, domain.SortByCreatedAt},
		DefaultSort: domain.DefaultSort(),
	}
}

// New 创建仓储
func New(db core.IDatabase) (*UserRepository, error) {
	repo, err := sqlstore.New(db, Mapper())
	if err != nil {
		return nil, err
	}
	return &UserRepository{Repository: repo}, nil
}

// Migrate 创建用户表
func (r *UserRepository) Migrate(ctx context.Context) error {
	return r.EnsureSchema(ctx, Schema)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.UserEntity, error) {
	u, err := r.FindOneBy(ctx, "email", email)
	if repository.IsNotFound(err) {
		return nil, domain.NotFoundByEmail(email)
	}
	return u, err
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) error {
	exists, err := r.ExistsBy(ctx, "email", email)
	if err != nil {
		return err
	}
	if exists {
		return domain.EmailConflict(email)
	}
	return nil
}

var (
	_ domain.IUserRepository                           = (*UserRepository)(nil)
	_ repository.IBatchOperations[*domain.UserEntity] = (*UserRepository)(nil)
	_ repository.ITransactional                        = (*UserRepository)(nil)
)
