package table

import (
	"github.com/pkg/errors"
)

// MemStore 内存表格存储，用于测试和一次性流程
type MemStore struct {
	tables map[string][][]any
}

func NewMemStore() *MemStore {
	return &MemStore{
		tables: make(map[string][][]any),
	}
}

func (s *MemStore) ReadTable(name string) ([][]any, error) {
	data, ok := s.tables[name]
	if !ok {
		return nil, errors.WithMessagef(ErrTableNotFound, "read table [%s]", name)
	}
	return copyTableData(data), nil
}

func (s *MemStore) WriteTable(name string, data [][]any) error {
	s.tables[name] = copyTableData(data)
	return nil
}

func (s *MemStore) ClearTable(name string) error {
	delete(s.tables, name)
	return nil
}

func (s *MemStore) CopyTable(name string, target string) error {
	data, ok := s.tables[name]
	if !ok {
		return errors.WithMessagef(ErrTableNotFound, "copy table [%s]", name)
	}
	s.tables[target] = copyTableData(data)
	return nil
}

func copyTableData(data [][]any) [][]any {
	clone := make([][]any, len(data))
	for i, row := range data {
		clone[i] = append([]any{}, row...)
	}
	return clone
}
