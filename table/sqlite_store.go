package table

import (
	"database/sql"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

type SQLiteStoreOptions struct {
	// DBPath 数据库文件路径
	DBPath string `cfg:"dbPath" validate:"required"`
}

// SQLiteStore 基于 sqlite 的表格存储。
// 所有逻辑表共用一张关系表，单元格行以 JSON 形式存储。
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sheets (
	name   TEXT    NOT NULL,
	rownum INTEGER NOT NULL,
	cells  TEXT    NOT NULL,
	PRIMARY KEY (name, rownum)
)`

func NewSQLiteStoreWithOptions(options *SQLiteStoreOptions) (*SQLiteStore, error) {
	if options == nil {
		return nil, errors.New("options is nil")
	}
	if err := validator.New().Struct(options); err != nil {
		return nil, errors.Wrap(err, "invalid options")
	}

	db, err := sql.Open("sqlite3", options.DBPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database [%s]", options.DBPath)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) ReadTable(name string) ([][]any, error) {
	rows, err := s.db.Query(`SELECT cells FROM sheets WHERE name = ? ORDER BY rownum`, name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read table [%s]", name)
	}
	defer rows.Close()

	var data [][]any
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, errors.Wrapf(err, "failed to scan table [%s]", name)
		}
		var cells []any
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return nil, errors.Wrapf(err, "failed to decode table [%s]", name)
		}
		data = append(data, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read table [%s]", name)
	}
	if data == nil {
		return nil, errors.WithMessagef(ErrTableNotFound, "read table [%s]", name)
	}
	return data, nil
}

func (s *SQLiteStore) WriteTable(name string, data [][]any) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrapf(err, "failed to write table [%s]", name)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM sheets WHERE name = ?`, name); err != nil {
		return errors.Wrapf(err, "failed to replace table [%s]", name)
	}
	for i, cells := range data {
		raw, err := json.Marshal(cells)
		if err != nil {
			return errors.Wrapf(err, "failed to encode table [%s]", name)
		}
		if _, err := tx.Exec(`INSERT INTO sheets (name, rownum, cells) VALUES (?, ?, ?)`, name, i, string(raw)); err != nil {
			return errors.Wrapf(err, "failed to insert into table [%s]", name)
		}
	}
	return errors.Wrapf(tx.Commit(), "failed to commit table [%s]", name)
}

func (s *SQLiteStore) ClearTable(name string) error {
	_, err := s.db.Exec(`DELETE FROM sheets WHERE name = ?`, name)
	return errors.Wrapf(err, "failed to clear table [%s]", name)
}

func (s *SQLiteStore) CopyTable(name string, target string) error {
	data, err := s.ReadTable(name)
	if err != nil {
		return err
	}
	return s.WriteTable(target, data)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
