package query

// RangeQuery 范围查询，按类型化顺序比较：
// 两侧均可数值化时按数值，均可解析为日期时按日期，否则按字符串。
type RangeQuery struct {
	Gt  any
	Gte any
	Lt  any
	Lte any
}

// Between [from, to] 闭区间
func Between(from, to any) *RangeQuery {
	return &RangeQuery{Gte: from, Lte: to}
}

func Gt(value any) *RangeQuery  { return &RangeQuery{Gt: value} }
func Gte(value any) *RangeQuery { return &RangeQuery{Gte: value} }
func Lt(value any) *RangeQuery  { return &RangeQuery{Lt: value} }
func Lte(value any) *RangeQuery { return &RangeQuery{Lte: value} }

func (q *RangeQuery) Type() QueryType {
	return QueryTypeRange
}

func (q *RangeQuery) Match(value any) bool {
	if q.Gt != nil {
		if c, ok := Compare(value, q.Gt); !ok || c <= 0 {
			return false
		}
	}
	if q.Gte != nil {
		if c, ok := Compare(value, q.Gte); !ok || c < 0 {
			return false
		}
	}
	if q.Lt != nil {
		if c, ok := Compare(value, q.Lt); !ok || c >= 0 {
			return false
		}
	}
	if q.Lte != nil {
		if c, ok := Compare(value, q.Lte); !ok || c > 0 {
			return false
		}
	}
	return true
}
