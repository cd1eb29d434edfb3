package entity

import (
	"strings"
)

// FieldType 字段类型
type FieldType string

const (
	FieldTypeString   FieldType = "string"
	FieldTypeNumber   FieldType = "number"
	FieldTypeDate     FieldType = "date"
	FieldTypeComputed FieldType = "computed"
)

// ComputeFunc 计算字段函数，只读 row 和 ctx
type ComputeFunc func(row Row, ctx *Context) any

// FieldSpec 字段定义
type FieldSpec struct {
	// Name 字段名，作为 Row 的键
	Name string
	// Title 外部列标题，用于存储边界的表头
	Title string
	Type  FieldType
	// Validators 按声明顺序执行
	Validators []Validator
	// Compute 计算字段函数，computed 类型必填
	Compute ComputeFunc
	// Default 插入时的默认值，字面量或 func(Row) any
	Default any
}

// DefaultValue 计算插入时的默认值
func (f *FieldSpec) DefaultValue(row Row) any {
	if fn, ok := f.Default.(func(Row) any); ok {
		return fn(row)
	}
	return f.Default
}

// SortKey 排序键
type SortKey struct {
	Field string
	Desc  bool
}

// IndexDefinition 索引定义
type IndexDefinition struct {
	Fields []string
	Unique bool
}

// Entity 实体定义：一张逻辑表的完整声明
type Entity struct {
	// Name 实体名
	Name string
	// Worksheet 存储层的逻辑表名
	Worksheet string
	// Fields 按声明顺序排列的字段定义
	Fields []*FieldSpec
	// RequiredFields 识别导入表头的最小标题集合（字段名）
	RequiredFields []string
	// UniqueKey 唯一键，单字段或逗号分隔的复合键
	UniqueKey string
	// DefaultSort 持久化前应用的全序
	DefaultSort []SortKey
	// Indexes 声明的普通索引，唯一键索引自动追加
	Indexes []IndexDefinition
	// ImportDateField / UpdateDateField 对应的 SystemRecord 字段名
	ImportDateField string
	UpdateDateField string

	fieldByName  map[string]*FieldSpec
	fieldByTitle map[string]*FieldSpec
}

// Init 构建字段查找表，注册时调用一次
func (e *Entity) Init() {
	e.fieldByName = make(map[string]*FieldSpec, len(e.Fields))
	e.fieldByTitle = make(map[string]*FieldSpec, len(e.Fields))
	for _, f := range e.Fields {
		e.fieldByName[f.Name] = f
		e.fieldByTitle[f.Title] = f
	}
}

// Field 按字段名查找，不存在返回 nil
func (e *Entity) Field(name string) *FieldSpec {
	return e.fieldByName[name]
}

// FieldByTitle 按列标题查找，不存在返回 nil
func (e *Entity) FieldByTitle(title string) *FieldSpec {
	return e.fieldByTitle[title]
}

// UniqueFields 解析唯一键为有序字段名列表
func (e *Entity) UniqueFields() []string {
	return ParseUniqueKey(e.UniqueKey)
}

// ParseUniqueKey 解析唯一键描述，支持单字段和复合键（逗号分隔，顺序保留）
func ParseUniqueKey(spec string) []string {
	if strings.TrimSpace(spec) == "" {
		return nil
	}
	parts := strings.Split(spec, ",")
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			fields = append(fields, p)
		}
	}
	return fields
}

// PersistedFields 参与持久化的字段（排除 computed）
func (e *Entity) PersistedFields() []*FieldSpec {
	fields := make([]*FieldSpec, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Type != FieldTypeComputed {
			fields = append(fields, f)
		}
	}
	return fields
}

// ComputedFields 计算字段
func (e *Entity) ComputedFields() []*FieldSpec {
	fields := make([]*FieldSpec, 0)
	for _, f := range e.Fields {
		if f.Compute != nil {
			fields = append(fields, f)
		}
	}
	return fields
}

// Titles 持久化字段的列标题，按声明顺序
func (e *Entity) Titles() []string {
	persisted := e.PersistedFields()
	titles := make([]string, 0, len(persisted))
	for _, f := range persisted {
		titles = append(titles, f.Title)
	}
	return titles
}

// RequiredTitles 识别用标题集合
func (e *Entity) RequiredTitles() []string {
	titles := make([]string, 0, len(e.RequiredFields))
	for _, name := range e.RequiredFields {
		if f := e.Field(name); f != nil {
			titles = append(titles, f.Title)
		}
	}
	return titles
}
