package index

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hatlonely/skux/entity"
)

// Key 索引键：排序后的字段名以 "|" 连接
func Key(fields []string) string {
	sorted := append([]string{}, fields...)
	sort.Strings(sorted)
	return strings.Join(sorted, "|")
}

// Index 单个索引：复合键字符串 → 命中行
type Index struct {
	// Fields 排序后的索引字段
	Fields []string
	Unique bool

	buckets map[string][]entity.Row
}

// Lookup 精确查找复合键对应的桶
func (idx *Index) Lookup(cond entity.Row) []entity.Row {
	return idx.buckets[entity.CompositeValue(cond, idx.Fields)]
}

// LookupPrefix 按前 n 个索引字段做前缀查找，返回所有命中桶的并集
func (idx *Index) LookupPrefix(cond entity.Row, n int) []entity.Row {
	if n >= len(idx.Fields) {
		return idx.Lookup(cond)
	}
	prefix := entity.CompositeValue(cond, idx.Fields[:n]) + entity.CompositeSeparator
	var result []entity.Row
	for key, bucket := range idx.buckets {
		if strings.HasPrefix(key, prefix) {
			result = append(result, bucket...)
		}
	}
	return result
}

// Size 非空复合键的行数总和
func (idx *Index) Size() int {
	n := 0
	for _, bucket := range idx.buckets {
		n += len(bucket)
	}
	return n
}

// Engine 单实体的索引引擎。
// 每次全量写入后从头重建所有已注册索引。
type Engine struct {
	indexes map[string]*Index
}

func NewEngine() *Engine {
	return &Engine{
		indexes: make(map[string]*Index),
	}
}

// Register 注册索引，字段集相同的重复注册被忽略
func (e *Engine) Register(fields []string, unique bool) {
	key := Key(fields)
	if key == "" {
		return
	}
	if _, exists := e.indexes[key]; exists {
		return
	}
	sorted := append([]string{}, fields...)
	sort.Strings(sorted)
	e.indexes[key] = &Index{Fields: sorted, Unique: unique}
}

// Get 按条件字段集精确取索引
func (e *Engine) Get(fields []string) *Index {
	return e.indexes[Key(fields)]
}

// BestPrefix 在条件字段集上选择可用前缀最长的索引。
// 返回索引和可用的前缀长度；没有任何可用索引时返回 nil。
func (e *Engine) BestPrefix(condFields []string) (*Index, int) {
	condSet := make(map[string]bool, len(condFields))
	for _, f := range condFields {
		condSet[f] = true
	}

	var best *Index
	bestLen := 0
	for _, idx := range e.indexes {
		n := 0
		for _, f := range idx.Fields {
			if !condSet[f] {
				break
			}
			n++
		}
		if n > bestLen {
			best, bestLen = idx, n
		}
	}
	return best, bestLen
}

// Rebuild 从头重建所有索引。
// 唯一索引上的重复复合键给后出现的行打上 _indexError，保留首个出现的行。
func (e *Engine) Rebuild(rows []entity.Row) {
	for _, idx := range e.indexes {
		idx.buckets = make(map[string][]entity.Row)
		for _, row := range rows {
			key := entity.CompositeValue(row, idx.Fields)
			if entity.IsEmptyComposite(key) {
				continue
			}
			if idx.Unique {
				if _, exists := idx.buckets[key]; exists {
					row.SetIndexError(fmt.Sprintf("duplicate unique key [%s] on [%s]", key, strings.Join(idx.Fields, "|")))
					continue
				}
			}
			idx.buckets[key] = append(idx.buckets[key], row)
		}
	}
}
