// Package report 实现报表规划与活动提报产物的生成。
package report

import (
	"github.com/pkg/errors"

	"github.com/hatlonely/skux/table"
)

// SheetWriter 报表输出端口
type SheetWriter interface {
	WriteSheet(name string, header []any, rows [][]any) error
}

// StoreSheetWriter 把报表写进表格存储的适配器
type StoreSheetWriter struct {
	store table.Store
}

func NewStoreSheetWriter(store table.Store) (*StoreSheetWriter, error) {
	if store == nil {
		return nil, errors.New("store is nil")
	}
	return &StoreSheetWriter{store: store}, nil
}

func (w *StoreSheetWriter) WriteSheet(name string, header []any, rows [][]any) error {
	data := make([][]any, 0, len(rows)+1)
	data = append(data, header)
	data = append(data, rows...)
	if err := w.store.WriteTable(name, data); err != nil {
		return errors.WithMessagef(err, "failed to write sheet [%s]", name)
	}
	return nil
}
