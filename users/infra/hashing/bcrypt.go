// Package hashing 基于 bcrypt 的密码哈希实现
package hashing

import (
	stdErrors "errors"

	"golang.org/x/crypto/bcrypt"

	"repokit/errors"
)

// BcryptHashProvider bcrypt 哈希
type BcryptHashProvider struct {
	cost int
}

// NewBcrypt 创建哈希器，cost 超出 bcrypt 允许范围时使用 bcrypt.DefaultCost
func NewBcrypt(cost int) *BcryptHashProvider {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHashProvider{cost: cost}
}

// GenerateHash 生成哈希；超过 72 字节的口令返回校验错误
func (p *BcryptHashProvider) GenerateHash(payload string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(payload), p.cost)
	if err != nil {
		if stdErrors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", errors.WrapError(err, errors.ErrCodeValidation, "password is too long")
		}
		return "", errors.WrapError(err, errors.ErrCodeInternal, "生成密码哈希失败")
	}
	return string(h), nil
}

// CompareHash 比较口令与哈希，不匹配返回 false 且无错误
func (p *BcryptHashProvider) CompareHash(payload, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(payload))
	switch {
	case err == nil:
		return true, nil
	case stdErrors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, errors.WrapError(err, errors.ErrCodeInternal, "比较密码哈希失败")
	}
}

// Cost 当前 cost
func (p *BcryptHashProvider) Cost() int {
	return p.cost
}
