// Package domain 用户领域模型
package domain

import (
	"time"

	"repokit/domain/entity"
	"repokit/validation"
)

// UserProps 用户属性
type UserProps struct {
	Name      string    `json:"name" validate:"required,max=100"`
	Email     string    `json:"email" validate:"required,email,max=100"`
	Password  string    `json:"password" validate:"required,max=100"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserEntity 用户实体
type UserEntity struct {
	*entity.Entity[UserProps]
}

// NewUser 创建并校验用户；CreatedAt 为零值时取当前时间
func NewUser(props UserProps, id ...string) (*UserEntity, error) {
	if props.CreatedAt.IsZero() {
		props.CreatedAt = time.Now().UTC()
	}
	if err := validation.Struct(props); err != nil {
		return nil, err
	}
	return &UserEntity{Entity: entity.New(props, id...)}, nil
}

// RestoreUser 由持久化数据重建用户，不做校验
func RestoreUser(id string, props UserProps) *UserEntity {
	return &UserEntity{Entity: entity.New(props, id)}
}

func (u *UserEntity) Name() string         { return u.Props.Name }
func (u *UserEntity) Email() string        { return u.Props.Email }
func (u *UserEntity) Password() string     { return u.Props.Password }
func (u *UserEntity) CreatedAt() time.Time { return u.Props.CreatedAt }

// Update 修改名称，校验失败时保持原值
func (u *UserEntity) Update(name string) error {
	next := u.Props
	next.Name = name
	if err := validation.Struct(next); err != nil {
		return err
	}
	u.Props = next
	return nil
}

// UpdatePassword 修改密码（调用方负责传入哈希值）
func (u *UserEntity) UpdatePassword(password string) error {
	next := u.Props
	next.Password = password
	if err := validation.Struct(next); err != nil {
		return err
	}
	u.Props = next
	return nil
}

// Validate 实现 entity.IValidatable
func (u *UserEntity) Validate() error {
	return validation.Struct(u.Props)
}

var (
	_ entity.IEntity      = (*UserEntity)(nil)
	_ entity.IValidatable = (*UserEntity)(nil)
)
