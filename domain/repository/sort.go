package repository

import (
	"cmp"
	"strings"
	"time"
)

// Field 可排序字段：名称 + 升序比较函数
type Field[E any] struct {
	Name    string
	Compare func(a, b E) int
}

// StringField 按字节序比较字符串字段（"AA" < "Aa" < "a"）
func StringField[E any](name string, get func(E) string) Field[E] {
	return Field[E]{Name: name, Compare: func(a, b E) int {
		return strings.Compare(get(a), get(b))
	}}
}

// TimeField 按时间先后比较
func TimeField[E any](name string, get func(E) time.Time) Field[E] {
	return Field[E]{Name: name, Compare: func(a, b E) int {
		return get(a).Compare(get(b))
	}}
}

// IntField 按整数大小比较
func IntField[E any](name string, get func(E) int64) Field[E] {
	return Field[E]{Name: name, Compare: func(a, b E) int {
		return cmp.Compare(get(a), get(b))
	}}
}

// FloatField 按浮点数大小比较
func FloatField[E any](name string, get func(E) float64) Field[E] {
	return Field[E]{Name: name, Compare: func(a, b E) int {
		return cmp.Compare(get(a), get(b))
	}}
}

// Fields 可排序字段表，保留声明顺序
type Fields[E any] struct {
	names []string
	index map[string]func(a, b E) int
}

// NewFields 构造字段表，同名字段以后声明者为准
func NewFields[E any](fields ...Field[E]) Fields[E] {
	fs := Fields[E]{index: make(map[string]func(a, b E) int, len(fields))}
	for _, f := range fields {
		if f.Name == "" || f.Compare == nil {
			continue
		}
		if _, dup := fs.index[f.Name]; !dup {
			fs.names = append(fs.names, f.Name)
		}
		fs.index[f.Name] = f.Compare
	}
	return fs
}

// Names 返回字段名副本
func (fs Fields[E]) Names() []string {
	out := make([]string, len(fs.names))
	copy(out, fs.names)
	return out
}

// Has 判断字段是否可排序
func (fs Fields[E]) Has(name string) bool {
	_, ok := fs.index[name]
	return ok
}

// Comparator 返回字段的升序比较函数
func (fs Fields[E]) Comparator(name string) (func(a, b E) int, bool) {
	c, ok := fs.index[name]
	return c, ok
}

// DefaultSort 未指定（或指定了未知字段）时采用的排序
type DefaultSort struct {
	Field string
	Dir   SortDirection
}
