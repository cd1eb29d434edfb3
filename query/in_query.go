package query

import (
	"github.com/hatlonely/skux/entity"
)

// InQuery 集合成员查询，任一候选值命中即可
type InQuery struct {
	Values []any
}

func In(values ...any) *InQuery {
	return &InQuery{Values: values}
}

func (q *InQuery) Type() QueryType {
	return QueryTypeIn
}

func (q *InQuery) Match(value any) bool {
	s := entity.AsString(value)
	for _, candidate := range q.Values {
		if s == entity.AsString(candidate) {
			return true
		}
	}
	return false
}
