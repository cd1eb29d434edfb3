package query

import (
	"reflect"

	"github.com/hatlonely/skux/entity"
)

// QueryType 查询类型
type QueryType string

const (
	QueryTypeTerm   QueryType = "term"
	QueryTypeIn     QueryType = "in"
	QueryTypeRange  QueryType = "range"
	QueryTypeNot    QueryType = "not"
	QueryTypeLike   QueryType = "like"
	QueryTypeExists QueryType = "exists"
)

// Query 查询节点接口，在内存行集上求值
type Query interface {
	Type() QueryType
	// Match 判断字段值是否命中
	Match(value any) bool
}

// Condition 结构化条件：字段名 → 查询节点、字面量或字面量列表。
// nil 值表示忽略该字段；字面量按宽松字符串相等比较；列表表示任意命中。
type Condition map[string]any

// Fields 条件中参与比较的字段名（忽略 nil 值字段）
func (c Condition) Fields() []string {
	fields := make([]string, 0, len(c))
	for field, value := range c {
		if value == nil {
			continue
		}
		fields = append(fields, field)
	}
	return fields
}

// Match 判断一行是否满足全部条件字段
func (c Condition) Match(row entity.Row) bool {
	for field, expect := range c {
		if expect == nil {
			continue
		}
		if !toQuery(expect).Match(row[field]) {
			return false
		}
	}
	return true
}

// toQuery 将条件值归一化为查询节点
func toQuery(expect any) Query {
	if q, ok := expect.(Query); ok {
		return q
	}
	rv := reflect.ValueOf(expect)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		values := make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			values = append(values, rv.Index(i).Interface())
		}
		return &InQuery{Values: values}
	}
	return &TermQuery{Value: expect}
}
