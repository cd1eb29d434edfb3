package table

import (
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/hatlonely/skux/entity"
)

// FromTable 将原始单元格矩阵转换为类型化实体行。
// 第一行为列标题，按标题映射到字段名并按字段类型做宽松转换。
// 行号从 2 开始计数（标题行为第 1 行）。
func FromTable(data [][]any, ent *entity.Entity) ([]entity.Row, error) {
	if len(data) == 0 {
		return nil, errors.Errorf("source table [%s] is empty", ent.Worksheet)
	}

	// 标题 → 列号
	columns := make(map[string]int, len(data[0]))
	for i, cell := range data[0] {
		title := strings.TrimSpace(entity.AsString(cell))
		if title != "" {
			columns[title] = i
		}
	}

	// 识别用标题必须齐全
	for _, title := range ent.RequiredTitles() {
		if _, ok := columns[title]; !ok {
			return nil, errors.Errorf("source table [%s] is missing required column [%s]", ent.Worksheet, title)
		}
	}

	rows := make([]entity.Row, 0, len(data)-1)
	for i, cells := range data[1:] {
		if emptyCells(cells) {
			continue
		}
		row := entity.Row{}
		row.SetRowNumber(i + 2)
		for _, f := range ent.PersistedFields() {
			col, ok := columns[f.Title]
			if !ok || col >= len(cells) {
				continue
			}
			if v, ok := CoerceCell(cells[col], f.Type); ok {
				row[f.Name] = v
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ToTable 将实体行转换为单元格矩阵，只输出持久化字段。
// 日期输出为带前导单引号的 'YYYY-MM-DD，防止宿主自动解析。
func ToTable(rows []entity.Row, ent *entity.Entity) [][]any {
	persisted := ent.PersistedFields()
	header := make([]any, 0, len(persisted))
	for _, f := range persisted {
		header = append(header, f.Title)
	}

	data := make([][]any, 0, len(rows)+1)
	data = append(data, header)
	for _, row := range rows {
		cells := make([]any, len(persisted))
		for i, f := range persisted {
			v, ok := row[f.Name]
			if !ok || entity.IsEmpty(v) {
				cells[i] = ""
				continue
			}
			switch f.Type {
			case entity.FieldTypeDate:
				if t, ok := entity.ParseDate(v); ok {
					cells[i] = "'" + entity.FormatDate(t)
				} else {
					cells[i] = ""
				}
			case entity.FieldTypeNumber:
				if n, ok := entity.AsNumber(v); ok {
					cells[i] = n
				} else {
					cells[i] = ""
				}
			default:
				cells[i] = entity.AsString(v)
			}
		}
		data = append(data, cells)
	}
	return data
}

// CoerceCell 存储边界的单元格类型转换。
// 转换失败或空值返回 ok=false，调用方将该字段置为未定义。
func CoerceCell(cell any, ft entity.FieldType) (any, bool) {
	if cell == nil {
		return nil, false
	}
	switch ft {
	case entity.FieldTypeString:
		if _, isBool := cell.(bool); isBool {
			return nil, false
		}
		s := strings.TrimSpace(entity.AsString(cell))
		if s == "" {
			return nil, false
		}
		return s, true
	case entity.FieldTypeNumber:
		if _, isBool := cell.(bool); isBool {
			return nil, false
		}
		n, ok := entity.AsNumber(cell)
		if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, false
		}
		return n, true
	case entity.FieldTypeDate:
		t, ok := entity.ParseDate(cell)
		if !ok {
			return nil, false
		}
		return entity.FormatDate(t), true
	}
	return nil, false
}

func emptyCells(cells []any) bool {
	for _, cell := range cells {
		if !entity.IsEmpty(cell) {
			return false
		}
	}
	return true
}
