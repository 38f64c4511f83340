package repository

import (
	"math"

	"repokit/domain/entity"
)

// SearchResultProps 构造 SearchResult 的输入
type SearchResultProps[E entity.IEntity] struct {
	Items       []E
	Total       int
	CurrentPage int
	PerPage     int
	Sort        string
	SortDir     SortDirection
	Filter      string
}

// SearchResult 单页检索结果
//
// LastPage 总是由 Total 与 PerPage 推导，不接受外部传入。
type SearchResult[E entity.IEntity] struct {
	Items       []E
	Total       int
	CurrentPage int
	PerPage     int
	LastPage    int
	Sort        string
	SortDir     SortDirection
	Filter      string
}

// NewSearchResult 创建检索结果
func NewSearchResult[E entity.IEntity](p SearchResultProps[E]) SearchResult[E] {
	items := p.Items
	if items == nil {
		items = []E{}
	}
	return SearchResult[E]{
		Items:       items,
		Total:       p.Total,
		CurrentPage: p.CurrentPage,
		PerPage:     p.PerPage,
		LastPage:    LastPage(p.Total, p.PerPage),
		Sort:        p.Sort,
		SortDir:     p.SortDir,
		Filter:      p.Filter,
	}
}

// LastPage 计算末页页码 ceil(total/perPage)，perPage 非正时按 1 处理
func LastPage(total, perPage int) int {
	if perPage <= 0 {
		perPage = 1
	}
	if total <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(perPage)))
}

// ToJSON 将结果扁平化；forceEntity 为 true 时逐项调用实体的 ToJSON
func (r SearchResult[E]) ToJSON(forceEntity bool) map[string]any {
	var items any
	if forceEntity {
		flat := make([]map[string]any, 0, len(r.Items))
		for _, it := range r.Items {
			flat = append(flat, it.ToJSON())
		}
		items = flat
	} else {
		items = r.Items
	}

	return map[string]any{
		"items":       items,
		"total":       r.Total,
		"currentPage": r.CurrentPage,
		"perPage":     r.PerPage,
		"lastPage":    r.LastPage,
		"sort":        nullable(r.Sort),
		"sortDir":     nullable(string(r.SortDir)),
		"filter":      nullable(r.Filter),
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
