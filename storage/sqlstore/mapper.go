package sqlstore

import (
	"fmt"

	core "repokit/data/db"
	"repokit/domain/entity"
	"repokit/domain/repository"
)

// SortColumn 可排序字段对应的列
type SortColumn struct {
	Column string
	// Text 为 true 时按字节序排序，与内存后端的字符串比较一致
	Text bool
}

// Mapper 描述实体与表之间的映射
type Mapper[E entity.IEntity] struct {
	Table string

	// Columns 全部列，第一列为主键
	Columns []string

	// Values 按 Columns 顺序返回实体的列值
	Values func(e E) []any

	// Scan 从一行（列顺序同 Columns）构造实体
	Scan func(row core.IScanner) (E, error)

	// FilterColumns 参与大小写不敏感子串匹配的列，任一匹配即命中
	FilterColumns []string

	// SortColumns 可排序字段名 -> 列
	SortColumns map[string]SortColumn

	// SortOrder 可排序字段名的声明顺序（SortableFields 的返回值）
	SortOrder []string

	// DefaultSort 未指定排序或字段不可排序时采用，Field 为 SortColumns 中的字段名
	DefaultSort *repository.DefaultSort
}

// IDColumn 主键列
func (m Mapper[E]) IDColumn() string {
	return m.Columns[0]
}

func (m Mapper[E]) validate() error {
	switch {
	case m.Table == "":
		return fmt.Errorf("sqlstore: mapper table is required")
	case len(m.Columns) == 0:
		return fmt.Errorf("sqlstore: mapper columns are required")
	case m.Values == nil || m.Scan == nil:
		return fmt.Errorf("sqlstore: mapper Values and Scan are required")
	}
	if m.DefaultSort != nil {
		if _, ok := m.SortColumns[m.DefaultSort.Field]; !ok {
			return fmt.Errorf("sqlstore: default sort field %q is not sortable", m.DefaultSort.Field)
		}
	}
	for _, f := range m.SortOrder {
		if _, ok := m.SortColumns[f]; !ok {
			return fmt.Errorf("sqlstore: sort field %q has no column", f)
		}
	}
	return nil
}
