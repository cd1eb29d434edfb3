package entity

import (
	"reflect"
	"strconv"
	"strings"
	"time"
)

// 行内部字段，不参与持久化
const (
	RowNumberKey  = "_rowNumber"
	IndexErrorKey = "_indexError"
)

// Row 实体行，按字段名取值
type Row map[string]any

func (r Row) RowNumber() int {
	if v, ok := r[RowNumberKey].(int); ok {
		return v
	}
	return 0
}

func (r Row) SetRowNumber(n int) {
	r[RowNumberKey] = n
}

func (r Row) IndexError() string {
	if v, ok := r[IndexErrorKey].(string); ok {
		return v
	}
	return ""
}

func (r Row) SetIndexError(msg string) {
	r[IndexErrorKey] = msg
}

// Clone 拷贝一行，值为浅拷贝
func (r Row) Clone() Row {
	clone := make(Row, len(r))
	for k, v := range r {
		clone[k] = v
	}
	return clone
}

// IsEmpty 字段值是否为空（未定义、空串或布尔值）
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x) == ""
	case bool:
		return true
	}
	return false
}

// AsString 字段值的字符串形式，空值返回 ""
func AsString(v any) string {
	if v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return ""
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case time.Time:
		return x.Format(DateLayout)
	}
	// 序列化层可能产出其他宽度的整型
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	}
	return ""
}

// AsNumber 数值转换，失败时返回 false
func AsNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	}
	return 0, false
}

// DateLayout 日期的规范化格式
const DateLayout = "2006-01-02"

// TimestampLayout 系统记录时间戳格式，保留到秒
const TimestampLayout = "2006-01-02 15:04:05"

// 宽松日期解析支持的格式
var dateLayouts = []string{
	DateLayout,
	"2006/01/02",
	"2006-1-2",
	"2006/1/2",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"2006.01.02",
}

// ParseDate 宽松解析日期，接受常见的日期字符串和 time.Time
func ParseDate(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return time.Date(x.Year(), x.Month(), x.Day(), 0, 0, 0, 0, time.UTC), true
	case string:
		s := strings.TrimSpace(strings.TrimPrefix(x, "'"))
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
			}
		}
	}
	return time.Time{}, false
}

// FormatDate 输出规范化日期
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
