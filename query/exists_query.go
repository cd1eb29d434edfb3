package query

import (
	"github.com/hatlonely/skux/entity"
)

// ExistsQuery 字段存在查询，空值视为不存在
type ExistsQuery struct{}

func Exists() *ExistsQuery {
	return &ExistsQuery{}
}

func (q *ExistsQuery) Type() QueryType {
	return QueryTypeExists
}

func (q *ExistsQuery) Match(value any) bool {
	return !entity.IsEmpty(value)
}
