package errors

import (
	"context"
	"fmt"

	"repokit/domain/repository"
	"repokit/logging"
)

// Wrap 包装错误，添加错误码与消息，并以 Debug 级别记录
func Wrap(ctx context.Context, err error, code ErrorCode, msg string) error {
	if err == nil {
		return nil
	}
	logging.GetLogger().Debug(ctx, "错误包装",
		logging.String("error_code", string(code)),
		logging.String("message", msg),
		logging.Error(err),
	)
	return WrapError(err, code, msg)
}

// WrapWithLog 包装错误并记录警告日志
func WrapWithLog(ctx context.Context, err error, code ErrorCode, msg string, fields ...logging.Field) error {
	if err == nil {
		return nil
	}

	allFields := append([]logging.Field{
		logging.Error(err),
		logging.String("error_code", string(code)),
	}, fields...)
	logging.GetLogger().Warn(ctx, msg, allFields...)

	return WrapError(err, code, msg)
}

// WrapDatabaseError 包装数据库错误
//
// 仓储错误（NotFound / Conflict）原样透传，保证调用方仍可用 repository.IsNotFound 判断；
// 其他驱动错误包装为 DATABASE_ERROR 并记录警告日志。
func WrapDatabaseError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}
	if repository.IsNotFound(err) || repository.IsConflict(err) {
		return err
	}
	return WrapWithLog(ctx, err, ErrCodeDatabase,
		fmt.Sprintf("数据库操作失败: %s", operation),
		logging.String("operation", operation),
	)
}

// NewValidationError 创建新的验证错误
func NewValidationError(msg string) error {
	return NewError(ErrCodeValidation, msg)
}
