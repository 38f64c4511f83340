package errors

import (
	"context"
	stdErrors "errors"

	"repokit/domain/repository"
)

// Normalize 将仓储层/基础设施层的错误规范化为 AppError。
//
//   - 已经是 IError 的错误原样返回；
//   - 仓储 NotFound / Conflict 映射为 NOT_FOUND / CONFLICT，消息沿用原错误；
//   - context 超时映射为 TIMEOUT；
//   - 未识别的错误保持原样，交由调用方决定是否 Wrap。
func Normalize(err error) error {
	if err == nil {
		return nil
	}

	if _, ok := err.(IError); ok {
		return err
	}

	var repoErr *repository.RepositoryError
	if stdErrors.As(err, &repoErr) {
		switch repoErr.Code {
		case repository.CodeEntityNotFound:
			return WrapError(err, ErrCodeNotFound, repoErr.Message)
		case repository.CodeEntityConflict:
			return WrapError(err, ErrCodeConflict, repoErr.Message)
		}
	}

	if stdErrors.Is(err, context.DeadlineExceeded) {
		return WrapError(err, ErrCodeTimeout, "操作超时")
	}

	return err
}
