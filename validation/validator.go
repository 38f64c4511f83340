// Package validation 提供基于 struct tag 的字段校验与常用单值校验
package validation

import (
	stdErrors "errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"repokit/errors"
)

// IValidator 定义通用验证器接口
type IValidator interface {
	Validate(value any) error
}

// FieldsErrors 字段名 -> 错误消息列表
type FieldsErrors map[string][]string

// Fields 返回排序后的字段名
func (fe FieldsErrors) Fields() []string {
	out := make([]string, 0, len(fe))
	for k := range fe {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// StructValidator 基于 go-playground/validator 的结构体校验器
//
// 字段名取 json 标签，校验失败返回 VALIDATION_ERROR，
// 详情中的 "fields" 为 FieldsErrors。
type StructValidator struct {
	v *validator.Validate
}

// NewStructValidator 创建校验器
func NewStructValidator() *StructValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return &StructValidator{v: v}
}

// RegisterValidation 注册自定义校验规则
func (s *StructValidator) RegisterValidation(tag string, fn validator.Func) error {
	return s.v.RegisterValidation(tag, fn)
}

// Validate 实现 IValidator 接口
func (s *StructValidator) Validate(value any) error {
	err := s.v.Struct(value)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stdErrors.As(err, &verrs) {
		return errors.WrapError(err, errors.ErrCodeValidation, "数据验证失败")
	}

	fields := make(FieldsErrors, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = append(fields[fe.Field()], message(fe))
	}

	return errors.NewError(errors.ErrCodeValidation, summary(fields)).
		WithContext("fields", fields)
}

// ErrorFields 从校验错误中取出字段错误，不存在时返回 nil
func ErrorFields(err error) FieldsErrors {
	var appErr errors.IError
	if !stdErrors.As(err, &appErr) {
		return nil
	}
	fields, _ := appErr.Details()["fields"].(FieldsErrors)
	return fields
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s should not be empty", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be shorter than or equal to %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be longer than or equal to %s characters", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be an email", fe.Field())
	default:
		return fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
	}
}

func summary(fields FieldsErrors) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields.Fields() {
		parts = append(parts, strings.Join(fields[f], "; "))
	}
	return strings.Join(parts, "; ")
}

var defaultValidator = NewStructValidator()

// Struct 使用默认校验器校验结构体
func Struct(value any) error {
	return defaultValidator.Validate(value)
}

// ValidateStringLength 验证字符串长度，max 为 0 表示不限
func ValidateStringLength(value, fieldName string, min, max int) error {
	length := len(value)
	if length < min {
		return errors.NewError(errors.ErrCodeValidation,
			fmt.Sprintf("%s长度不能少于%d个字符（当前%d）", fieldName, min, length))
	}
	if max > 0 && length > max {
		return errors.NewError(errors.ErrCodeValidation,
			fmt.Sprintf("%s长度不能超过%d个字符（当前%d）", fieldName, max, length))
	}
	return nil
}

// ValidateRequired 验证必填字段
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewError(errors.ErrCodeValidation,
			fmt.Sprintf("%s不能为空", fieldName))
	}
	return nil
}

// ValidateEmail 验证邮箱格式
func ValidateEmail(email string) error {
	if email == "" {
		return errors.NewError(errors.ErrCodeValidation, "邮箱不能为空")
	}
	if err := defaultValidator.v.Var(email, "email"); err != nil {
		return errors.NewError(errors.ErrCodeValidation, "邮箱格式不正确")
	}
	return nil
}
