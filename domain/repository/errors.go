package repository

import (
	"errors"
	"fmt"
)

// 错误码
const (
	CodeEntityNotFound = "ENTITY_NOT_FOUND"
	CodeEntityConflict = "ENTITY_CONFLICT"
)

// 常见错误
//
// 仓储实现返回的错误通过 Code 与下列哨兵值匹配，因此可以直接使用 errors.Is：
//
//	if errors.Is(err, repository.ErrEntityNotFound) { ... }
var (
	ErrEntityNotFound = &RepositoryError{Code: CodeEntityNotFound, Message: "entity not found"}
	ErrEntityConflict = &RepositoryError{Code: CodeEntityConflict, Message: "entity conflict"}
)

// RepositoryError 仓储错误
type RepositoryError struct {
	Code     string
	Message  string
	EntityID any
	Cause    error
}

func (e *RepositoryError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RepositoryError) Unwrap() error {
	return e.Cause
}

// Is 按错误码匹配
func (e *RepositoryError) Is(target error) bool {
	var t *RepositoryError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewNotFoundError 创建未找到错误
func NewNotFoundError(format string, args ...any) *RepositoryError {
	return &RepositoryError{Code: CodeEntityNotFound, Message: fmt.Sprintf(format, args...)}
}

// NotFoundByID 创建带实体 ID 的未找到错误
func NotFoundByID(id string) *RepositoryError {
	return &RepositoryError{Code: CodeEntityNotFound, Message: "entity not found", EntityID: id}
}

// NewConflictError 创建冲突错误（例如唯一字段重复），由调用方在 Insert 之上分层使用
func NewConflictError(format string, args ...any) *RepositoryError {
	return &RepositoryError{Code: CodeEntityConflict, Message: fmt.Sprintf(format, args...)}
}

// IsNotFound 判断是否为未找到错误
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntityNotFound)
}

// IsConflict 判断是否为冲突错误
func IsConflict(err error) bool {
	return errors.Is(err, ErrEntityConflict)
}
