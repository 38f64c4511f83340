package repository

import (
	"slices"

	"repokit/domain/entity"
)

// FilterFunc 过滤谓词，由具体仓储提供（通常是对若干文本字段的大小写不敏感子串匹配）
type FilterFunc[E any] func(e E, filter string) bool

// Pipeline 内存检索流水线：过滤 → 排序 → 分页
//
// 排序作用于过滤后的集合，Total 为过滤后、分页前的数量。
// 其他后端把同样的三步下推到查询语言中，对外表现必须与本实现一致。
type Pipeline[E entity.IEntity] struct {
	Filter      FilterFunc[E]
	Fields      Fields[E]
	DefaultSort *DefaultSort
}

// ApplyFilter 过滤
//
// filter 为空时原样返回输入切片，且不调用谓词。
func (p Pipeline[E]) ApplyFilter(items []E, filter string) []E {
	if filter == "" || p.Filter == nil {
		return items
	}
	out := make([]E, 0, len(items))
	for _, it := range items {
		if p.Filter(it, filter) {
			out = append(out, it)
		}
	}
	return out
}

// ApplySort 稳定排序，返回新切片
//
// sort 为空或不在字段表中时采用 DefaultSort；两者都不可用时保持原有顺序。
// dir 为 desc（或为空）时降序，相等元素保持原有相对顺序。
func (p Pipeline[E]) ApplySort(items []E, sort string, dir SortDirection) []E {
	out := slices.Clone(items)
	if out == nil {
		out = []E{}
	}

	compare, ok := p.Fields.Comparator(sort)
	if !ok {
		if p.DefaultSort == nil {
			return out
		}
		if compare, ok = p.Fields.Comparator(p.DefaultSort.Field); !ok {
			return out
		}
		dir = p.DefaultSort.Dir
	}

	if dir == SortAsc {
		slices.SortStableFunc(out, compare)
	} else {
		slices.SortStableFunc(out, func(a, b E) int { return compare(b, a) })
	}
	return out
}

// ApplyPaginate 返回 [(page-1)*perPage, page*perPage) 区间，越界时返回空切片
func (p Pipeline[E]) ApplyPaginate(items []E, page, perPage int) []E {
	if page < 1 || perPage < 1 {
		return []E{}
	}
	start := pageOffset(page, perPage)
	if start >= len(items) {
		return []E{}
	}
	end := len(items)
	if perPage < end-start {
		end = start + perPage
	}
	return slices.Clone(items[start:end])
}

// Run 对 items 执行完整检索
func (p Pipeline[E]) Run(items []E, params SearchParams) SearchResult[E] {
	filtered := p.ApplyFilter(items, params.Filter())
	sorted := p.ApplySort(filtered, params.Sort(), params.SortDir())
	paged := p.ApplyPaginate(sorted, params.Page(), params.PerPage())

	return NewSearchResult(SearchResultProps[E]{
		Items:       paged,
		Total:       len(filtered),
		CurrentPage: params.Page(),
		PerPage:     params.PerPage(),
		Sort:        params.Sort(),
		SortDir:     params.SortDir(),
		Filter:      params.Filter(),
	})
}

// SortableFields 返回可排序字段名
func (p Pipeline[E]) SortableFields() []string {
	return p.Fields.Names()
}
