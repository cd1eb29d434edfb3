package table

import (
	"github.com/pkg/errors"
)

var ErrTableNotFound = errors.New("table not found")

// Store 表格存储端口，唯一需要与宿主对接的边界。
// 读写的都是原始单元格矩阵：第一行为列标题，其余为数据行。
type Store interface {
	// ReadTable 读取整表，表不存在时返回 ErrTableNotFound
	ReadTable(name string) ([][]any, error)

	// WriteTable 整表替换，第一行为列标题
	WriteTable(name string, data [][]any) error

	// ClearTable 清空表内容
	ClearTable(name string) error

	// CopyTable 将表复制到目标名下
	CopyTable(name string, target string) error
}
