package query

// NotQuery 取反查询
type NotQuery struct {
	Inner Query
}

// Ne 不等于
func Ne(value any) *NotQuery {
	return &NotQuery{Inner: &TermQuery{Value: value}}
}

func Not(inner Query) *NotQuery {
	return &NotQuery{Inner: inner}
}

func (q *NotQuery) Type() QueryType {
	return QueryTypeNot
}

func (q *NotQuery) Match(value any) bool {
	return !q.Inner.Match(value)
}
