package entity

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// CompositeSeparator 复合键各字段串接时的分隔符，非 ASCII 以避免与字段值冲突
const CompositeSeparator = "¦"

// CompositeValue 唯一键元组的字符串形式，未定义字段串为空
func CompositeValue(row Row, fields []string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, AsString(row[f]))
	}
	return strings.Join(parts, CompositeSeparator)
}

// IsEmptyComposite 复合键去掉分隔符后是否为空白
func IsEmptyComposite(key string) bool {
	return strings.TrimSpace(strings.ReplaceAll(key, CompositeSeparator, "")) == ""
}

// FieldError 单个字段的校验错误
type FieldError struct {
	Field   string
	Title   string
	Message string
}

// RowResult 单行校验结果
type RowResult struct {
	Valid     bool
	RowNumber int
	Errors    []FieldError
}

// Result 整表校验结果
type Result struct {
	Valid bool
	Items []RowResult
}

// ValidateRow 校验单行。
// 按声明顺序执行字段校验器，每个字段在第一个失败后短路。
// allData 非空时执行唯一键校验：存在复合键相同的其他行即失败。
func ValidateRow(row Row, ent *Entity, allData []Row) RowResult {
	result := RowResult{Valid: true, RowNumber: row.RowNumber()}

	for _, f := range ent.Fields {
		if f.Type == FieldTypeComputed {
			continue
		}
		value := row[f.Name]
		for _, v := range f.Validators {
			// 空值只由 required 拒绝，其余校验器放行
			if v.Kind() != ValidatorKindRequired && IsEmpty(value) {
				continue
			}
			if err := v.Validate(value); err != nil {
				result.Valid = false
				result.Errors = append(result.Errors, FieldError{
					Field:   f.Name,
					Title:   f.Title,
					Message: err.Error(),
				})
				break
			}
		}
	}

	// 唯一键校验
	uniqueFields := ent.UniqueFields()
	if len(uniqueFields) > 0 && len(allData) > 0 {
		key := CompositeValue(row, uniqueFields)
		if !IsEmptyComposite(key) {
			for _, other := range allData {
				if sameRow(row, other) {
					continue
				}
				if CompositeValue(other, uniqueFields) == key {
					result.Valid = false
					result.Errors = append(result.Errors, FieldError{
						Field:   uniqueFields[0],
						Title:   strings.Join(ent.uniqueTitles(), "+"),
						Message: fmt.Sprintf("duplicate unique key [%s]", key),
					})
					break
				}
			}
		}
	}

	return result
}

func (e *Entity) uniqueTitles() []string {
	fields := e.UniqueFields()
	titles := make([]string, 0, len(fields))
	for _, name := range fields {
		if f := e.Field(name); f != nil {
			titles = append(titles, f.Title)
		} else {
			titles = append(titles, name)
		}
	}
	return titles
}

// sameRow 判断是否为同一行（底层 map 相同）
func sameRow(a, b Row) bool {
	if a == nil || b == nil {
		return false
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

// ValidateAll 校验整表，每行都与全表数据做唯一键比对
func ValidateAll(rows []Row, ent *Entity) Result {
	result := Result{Valid: true}
	for _, row := range rows {
		item := ValidateRow(row, ent, rows)
		if !item.Valid {
			result.Valid = false
		}
		result.Items = append(result.Items, item)
	}
	return result
}

// FormatErrors 将校验结果格式化为按行分组的多行错误报告
func FormatErrors(result Result, worksheet string) string {
	if result.Valid {
		return ""
	}

	var failed []RowResult
	for _, item := range result.Items {
		if !item.Valid {
			failed = append(failed, item)
		}
	}
	sort.SliceStable(failed, func(i, j int) bool {
		return failed[i].RowNumber < failed[j].RowNumber
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "validation failed [%s]:", worksheet)
	for _, item := range failed {
		fmt.Fprintf(&sb, "\nrow %d:", item.RowNumber)
		for i, fe := range item.Errors {
			if i > 0 {
				sb.WriteString(";")
			}
			fmt.Fprintf(&sb, " [%s] %s", fe.Title, fe.Message)
		}
	}
	return sb.String()
}
