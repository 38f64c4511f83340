// Package entity 定义领域实体的核心接口与通用实体实现
//
// 设计原则：
// 1. 接口最小化 - 每个接口只包含必需的方法
// 2. 身份稳定 - 实体 ID 在构造时确定，生命周期内不可变
// 3. 泛型属性 - 属性包（Props）由具体实体类型自行定义
package entity

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
)

// IObject 最基础的对象接口，所有实体的根接口
type IObject[T comparable] interface {
	// GetID 返回对象的唯一标识
	GetID() T
}

// IEntity 仓储可持有的实体接口
// 以字符串作为标识，并支持扁平化为 {id, ...props}
type IEntity interface {
	IObject[string]

	// ToJSON 将实体扁平化为映射，id 与属性位于同一层
	ToJSON() map[string]any
}

// IValidatable 可验证接口
// 实现此接口的实体可以验证自身状态的有效性
type IValidatable interface {
	// Validate 验证实体状态是否有效
	// 返回 error 表示验证失败，nil 表示验证成功
	Validate() error
}

// Entity 通用实体（用于嵌入）
//
// ID 在构造时分配：调用方提供时原样保存（不校验是否为合法 UUID），
// 否则生成新的随机 UUID。
//
// 使用示例：
//
//	type UserProps struct {
//	    Name  string `json:"name"`
//	    Email string `json:"email"`
//	}
//
//	type User struct {
//	    *entity.Entity[UserProps]
//	}
//
//	u := &User{Entity: entity.New(UserProps{Name: "a"})}
type Entity[P any] struct {
	id    string
	Props P
}

// New 创建实体，id 可选；未提供或为空字符串时生成 UUID
func New[P any](props P, id ...string) *Entity[P] {
	var eid string
	if len(id) > 0 {
		eid = id[0]
	}
	if eid == "" {
		eid = uuid.NewString()
	}
	return &Entity[P]{id: eid, Props: props}
}

// GetID 实现 IObject 接口
func (e *Entity[P]) GetID() string {
	return e.id
}

// ToJSON 实现 IEntity 接口
//
// 结构体属性按 json 标签展开（"-" 跳过，匿名嵌入结构体平铺，与 encoding/json 一致），值保持原始类型；
// map[string]T 属性逐键复制；其他类型以 "props" 键保存原值。
// 属性中的同名 id 字段会被实体 ID 覆盖。
func (e *Entity[P]) ToJSON() map[string]any {
	out := make(map[string]any)
	flatten(reflect.ValueOf(e.Props), out)
	out["id"] = e.id
	return out
}

// String 便于日志输出
func (e *Entity[P]) String() string {
	return fmt.Sprintf("Entity(%s)", e.id)
}

func flatten(v reflect.Value, out map[string]any) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name, skip := jsonName(f)
			if skip {
				continue
			}
			if f.Anonymous && name == "" && isStruct(f.Type) {
				flatten(v.Field(i), out)
				continue
			}
			fv := v.Field(i)
			if !f.IsExported() || !fv.CanInterface() {
				continue
			}
			if name == "" {
				name = f.Name
			}
			out[name] = fv.Interface()
		}
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			out["props"] = v.Interface()
			return
		}
		iter := v.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
	case reflect.Invalid:
	default:
		out["props"] = v.Interface()
	}
}

func isStruct(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

func jsonName(f reflect.StructField) (string, bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	name, _, _ := strings.Cut(tag, ",")
	return name, false
}
