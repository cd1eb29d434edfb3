package query

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/hatlonely/skux/entity"
)

// Compare 类型化比较。返回 -1/0/1；两侧无法归入同一类型时 ok 为 false。
// 比较优先级：数值 > 日期 > 字符串。
func Compare(a, b any) (int, bool) {
	if a == nil || b == nil {
		return 0, false
	}

	if na, ok := entity.AsNumber(a); ok {
		if nb, ok := entity.AsNumber(b); ok {
			switch {
			case na < nb:
				return -1, true
			case na > nb:
				return 1, true
			}
			return 0, true
		}
	}

	if da, ok := entity.ParseDate(a); ok {
		if db, ok := entity.ParseDate(b); ok {
			switch {
			case da.Before(db):
				return -1, true
			case da.After(db):
				return 1, true
			}
			return 0, true
		}
	}

	return strings.Compare(entity.AsString(a), entity.AsString(b)), true
}

// ParseSort 解析排序描述。
// 支持 "field"、"field desc"、entity.SortKey、以及它们的列表。
func ParseSort(spec any) ([]entity.SortKey, error) {
	switch s := spec.(type) {
	case nil:
		return nil, nil
	case string:
		return []entity.SortKey{parseSortString(s)}, nil
	case entity.SortKey:
		return []entity.SortKey{s}, nil
	case []entity.SortKey:
		return s, nil
	case []string:
		keys := make([]entity.SortKey, 0, len(s))
		for _, item := range s {
			keys = append(keys, parseSortString(item))
		}
		return keys, nil
	case []any:
		var keys []entity.SortKey
		for _, item := range s {
			sub, err := ParseSort(item)
			if err != nil {
				return nil, err
			}
			keys = append(keys, sub...)
		}
		return keys, nil
	}
	return nil, errors.Errorf("unsupported sort spec: %T", spec)
}

func parseSortString(s string) entity.SortKey {
	parts := strings.Fields(s)
	key := entity.SortKey{Field: s}
	if len(parts) == 2 {
		key.Field = parts[0]
		key.Desc = strings.EqualFold(parts[1], "desc")
	}
	return key
}

// SortRows 按排序键对行做稳定排序，空值排在最后
func SortRows(rows []entity.Row, keys []entity.SortKey) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, key := range keys {
			a, b := rows[i][key.Field], rows[j][key.Field]
			aEmpty, bEmpty := entity.IsEmpty(a), entity.IsEmpty(b)
			if aEmpty || bEmpty {
				if aEmpty == bEmpty {
					continue
				}
				return bEmpty
			}
			c, ok := Compare(a, b)
			if !ok || c == 0 {
				continue
			}
			if key.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}
