package query

import (
	"github.com/pkg/errors"

	"github.com/hatlonely/skux/entity"
)

// Options 结构化查询选项
type Options struct {
	// Filter 过滤条件：Condition 或 func(entity.Row) bool
	Filter any
	// Sort 排序描述，见 ParseSort
	Sort any
	// Limit 为 0 时不限制
	Limit  int
	Offset int
}

// Apply 对行集执行 过滤 → 排序 → 分页
func Apply(rows []entity.Row, options *Options) ([]entity.Row, error) {
	if options == nil {
		return rows, nil
	}

	result := rows
	if options.Filter != nil {
		var predicate func(entity.Row) bool
		switch f := options.Filter.(type) {
		case func(entity.Row) bool:
			predicate = f
		case Condition:
			predicate = f.Match
		case map[string]any:
			predicate = Condition(f).Match
		default:
			return nil, errors.Errorf("unsupported filter type: %T", options.Filter)
		}

		result = make([]entity.Row, 0, len(rows))
		for _, row := range rows {
			if predicate(row) {
				result = append(result, row)
			}
		}
	}

	if options.Sort != nil {
		keys, err := ParseSort(options.Sort)
		if err != nil {
			return nil, err
		}
		if result = append([]entity.Row{}, result...); len(keys) > 0 {
			SortRows(result, keys)
		}
	}

	// 分页
	if options.Offset > 0 {
		if options.Offset >= len(result) {
			return []entity.Row{}, nil
		}
		result = result[options.Offset:]
	}
	if options.Limit > 0 && options.Limit < len(result) {
		result = result[:options.Limit]
	}

	return result, nil
}
