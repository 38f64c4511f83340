package repository

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// SortDirection 排序方向
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// IsValid 判断方向是否为 asc/desc
func (d SortDirection) IsValid() bool { return d == SortAsc || d == SortDesc }

// 默认分页参数
const (
	DefaultPage    = 1
	DefaultPerPage = 15
)

// SearchInput 外部传入的原始查询参数
//
// 字段均为 any，允许上游直接透传 URL 查询串、JSON 解码结果等未经处理的值；
// 规范化规则见 NewSearchParams。
type SearchInput struct {
	Page    any
	PerPage any
	Sort    any
	SortDir any
	Filter  any
}

// SearchParams 规范化后的查询描述（构造后不可变）
//
// 空字符串表示"缺省"：Sort() == "" 表示不排序，SortDir() 此时也为空；
// Filter() == "" 表示不过滤。
type SearchParams struct {
	page    int
	perPage int
	sort    string
	sortDir SortDirection
	filter  string
}

// ParamsOption 构造选项
type ParamsOption func(*paramsConfig)

type paramsConfig struct {
	defaultPerPage int
}

// WithDefaultPerPage 覆盖默认每页数量（非正数时忽略）
func WithDefaultPerPage(n int) ParamsOption {
	return func(c *paramsConfig) {
		if n > 0 {
			c.defaultPerPage = n
		}
	}
}

// NewSearchParams 按以下规则规范化原始输入：
//
//   - Page：转换为数字，非正整数（nil、空串、非数字串、0、负数、小数、布尔、对象）一律重置为 1；
//   - PerPage：同上规则，重置为默认值（15，可通过 WithDefaultPerPage 覆盖）；布尔 true 同样视为默认值；
//   - Sort：nil/空串为缺省，其他值字符串化；
//   - SortDir：仅在 Sort 非缺省时有意义，大小写不敏感地归一为 asc，其余（含空、未知值）均为 desc；
//   - Filter：nil/空串为缺省，其他值字符串化。
//
// 非法输入从不报错，总是回落到确定的默认值。
func NewSearchParams(in SearchInput, opts ...ParamsOption) SearchParams {
	cfg := paramsConfig{defaultPerPage: DefaultPerPage}
	for _, opt := range opts {
		opt(&cfg)
	}

	p := SearchParams{
		page:    positiveIntOr(in.Page, DefaultPage),
		perPage: positiveIntOr(in.PerPage, cfg.defaultPerPage),
		sort:    stringOrEmpty(in.Sort),
		filter:  stringOrEmpty(in.Filter),
	}
	if p.sort != "" {
		p.sortDir = normalizeSortDir(in.SortDir)
	}
	return p
}

// DefaultSearchParams 返回全部缺省的查询参数
func DefaultSearchParams(opts ...ParamsOption) SearchParams {
	return NewSearchParams(SearchInput{}, opts...)
}

func (p SearchParams) Page() int              { return p.page }
func (p SearchParams) PerPage() int           { return p.perPage }
func (p SearchParams) Sort() string           { return p.sort }
func (p SearchParams) SortDir() SortDirection { return p.sortDir }
func (p SearchParams) Filter() string         { return p.filter }
func (p SearchParams) HasSort() bool          { return p.sort != "" }
func (p SearchParams) HasFilter() bool        { return p.filter != "" }

// Offset 返回分页偏移量 (page-1)*perPage，溢出时取 math.MaxInt
func (p SearchParams) Offset() int {
	return pageOffset(p.page, p.perPage)
}

func pageOffset(page, perPage int) int {
	if page <= 1 || perPage <= 0 {
		return 0
	}
	if page-1 > math.MaxInt/perPage {
		return math.MaxInt
	}
	return (page - 1) * perPage
}

// String 便于日志输出
func (p SearchParams) String() string {
	return fmt.Sprintf("page=%d perPage=%d sort=%q sortDir=%q filter=%q",
		p.page, p.perPage, p.sort, p.sortDir, p.filter)
}

func normalizeSortDir(v any) SortDirection {
	if strings.EqualFold(stringOrEmpty(v), string(SortAsc)) {
		return SortAsc
	}
	return SortDesc
}

// positiveIntOr 将 v 转换为正整数，失败时返回 def
func positiveIntOr(v any, def int) int {
	f, ok := toNumber(deref(v))
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	if f <= 0 || f != math.Trunc(f) || f >= math.MaxInt {
		return def
	}
	return int(f)
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case nil, bool:
		return 0, false
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func stringOrEmpty(v any) string {
	v = deref(v)
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

// deref 解开指针，nil 指针返回 nil
func deref(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}
