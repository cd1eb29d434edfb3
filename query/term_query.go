package query

import (
	"github.com/hatlonely/skux/entity"
)

// TermQuery 精确匹配查询，按宽松字符串相等比较（与索引语义一致）
type TermQuery struct {
	Value any
}

func Term(value any) *TermQuery {
	return &TermQuery{Value: value}
}

func (q *TermQuery) Type() QueryType {
	return QueryTypeTerm
}

func (q *TermQuery) Match(value any) bool {
	return entity.AsString(value) == entity.AsString(q.Value)
}
