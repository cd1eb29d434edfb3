package stats

import (
	"github.com/hatlonely/skux/entity"
)

// Kind 统计字段类别
type Kind string

const (
	// KindSummary 单值统计，直接由 Compute 得出
	KindSummary Kind = "summary"
	// KindExpandable 可展开统计，按计划物化为一组具体的计算字段
	KindExpandable Kind = "expandable"
)

// PlanType 展开计划类型
type PlanType string

const (
	PlanTypeMonth  PlanType = "month"
	PlanTypeWeek   PlanType = "week"
	PlanTypeDay    PlanType = "day"
	PlanTypeRecent PlanType = "recent"
)

// Plan 可展开字段的计划描述
type Plan struct {
	Type PlanType
	// Year 月/周/日计划的年份
	Year int
	// Days recent 计划的天数
	Days int
	// Metric 聚合的销售指标字段名
	Metric string
	// ItemField 行上的货号字段名，用于销售聚合
	ItemField string
}

// Field 统计字段目录项
type Field struct {
	Name  string
	Title string
	Kind  Kind
	// Compute summary 类型的计算函数
	Compute entity.ComputeFunc
	// Plan expandable 类型的展开计划
	Plan *Plan
}

// Catalog 统计字段目录
type Catalog struct {
	fields []*Field
	byName map[string]*Field
}

func NewCatalog(fields ...*Field) *Catalog {
	c := &Catalog{
		fields: fields,
		byName: make(map[string]*Field, len(fields)),
	}
	for _, f := range fields {
		c.byName[f.Name] = f
	}
	return c
}

func (c *Catalog) Get(name string) *Field {
	return c.byName[name]
}

func (c *Catalog) Fields() []*Field {
	return c.fields
}
