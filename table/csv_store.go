package table

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/go-playground/validator/v10"

	"github.com/hatlonely/skux/entity"
)

type CSVStoreOptions struct {
	// Dir 工作簿目录，每张逻辑表对应一个 <name>.csv 文件
	Dir string `cfg:"dir" validate:"required"`
}

// CSVStore 以 CSV 文件目录实现的表格存储
type CSVStore struct {
	dir string
}

func NewCSVStoreWithOptions(options *CSVStoreOptions) (*CSVStore, error) {
	if options == nil {
		return nil, errors.New("options is nil")
	}
	if err := validator.New().Struct(options); err != nil {
		return nil, errors.Wrap(err, "invalid options")
	}
	if err := os.MkdirAll(options.Dir, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create workbook directory")
	}
	return &CSVStore{dir: options.Dir}, nil
}

func (s *CSVStore) path(name string) string {
	return filepath.Join(s.dir, name+".csv")
}

func (s *CSVStore) ReadTable(name string) ([][]any, error) {
	f, err := os.Open(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithMessagef(ErrTableNotFound, "read table [%s]", name)
		}
		return nil, errors.Wrapf(err, "failed to open table [%s]", name)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse table [%s]", name)
	}

	data := make([][]any, len(records))
	for i, record := range records {
		cells := make([]any, len(record))
		for j, cell := range record {
			cells[j] = cell
		}
		data[i] = cells
	}
	return data, nil
}

func (s *CSVStore) WriteTable(name string, data [][]any) error {
	f, err := os.Create(s.path(name))
	if err != nil {
		return errors.Wrapf(err, "failed to create table [%s]", name)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	for _, row := range data {
		record := make([]string, len(row))
		for i, cell := range row {
			record[i] = cellString(cell)
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrapf(err, "failed to write table [%s]", name)
		}
	}
	writer.Flush()
	return errors.Wrapf(writer.Error(), "failed to flush table [%s]", name)
}

func (s *CSVStore) ClearTable(name string) error {
	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to clear table [%s]", name)
	}
	return nil
}

func (s *CSVStore) CopyTable(name string, target string) error {
	data, err := s.ReadTable(name)
	if err != nil {
		return err
	}
	return s.WriteTable(target, data)
}

func cellString(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return entity.AsString(cell)
}
