// Package importer 实现从暂存表的导入：
// 按表头识别目标实体，整表覆盖或按唯一键增量合并，成功后清空暂存表。
package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/hatlonely/skux/entity"
	"github.com/hatlonely/skux/log"
	"github.com/hatlonely/skux/repo"
	"github.com/hatlonely/skux/table"
)

// Mode 导入模式
type Mode string

const (
	// ModeOverwrite 整表覆盖
	ModeOverwrite Mode = "overwrite"
	// ModeAppend 按唯一键增量合并
	ModeAppend Mode = "append"
)

type ServiceOptions struct {
	// StagingTable 暂存表的逻辑表名
	StagingTable string `validate:"required"`
	// Entities 可导入的实体名，按识别优先级无关的集合语义
	Entities []string `validate:"required,min=1"`
	// Modes 实体名 → 导入模式，缺省为 overwrite
	Modes map[string]Mode
	// SystemRecordEntity 导入时间戳落在该实体（可选）
	SystemRecordEntity string
}

// Service 导入服务
type Service struct {
	options *ServiceOptions

	repository *repo.Repository
	store      table.Store
	logger     log.Logger
	now        func() time.Time
}

func NewServiceWithOptions(repository *repo.Repository, store table.Store, options *ServiceOptions) (*Service, error) {
	if repository == nil {
		return nil, errors.New("repository is nil")
	}
	if store == nil {
		return nil, errors.New("store is nil")
	}
	if err := validator.New().Struct(options); err != nil {
		return nil, errors.Wrap(err, "options is invalid")
	}

	return &Service{
		options:    options,
		repository: repository,
		store:      store,
		logger:     log.Default().WithGroup("importer"),
		now:        time.Now,
	}, nil
}

// SetClock 注入时钟，仅测试使用
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// CanImport 实体是否在可导入集合内
func (s *Service) CanImport(name string) bool {
	for _, n := range s.options.Entities {
		if n == name {
			return true
		}
	}
	return false
}

// ImportMode 实体的导入模式，未配置时为 overwrite
func (s *Service) ImportMode(name string) Mode {
	if mode, ok := s.options.Modes[name]; ok {
		return mode
	}
	return ModeOverwrite
}

// Result 一次导入的结果记录
type Result struct {
	Entity  string
	Mode    Mode
	Total   int
	New     int
	Updated int
	Message string
}

// Execute 执行一次导入：读暂存表 → 识别实体 → 类型化 → 合并或覆盖 →
// 保存 → 记录导入时间 → 清空暂存表。暂存表只在全部成功后清空。
func (s *Service) Execute() (*Result, error) {
	data, err := s.store.ReadTable(s.options.StagingTable)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to read staging table [%s]", s.options.StagingTable)
	}
	if len(data) == 0 {
		return nil, errors.Errorf("staging table [%s] is empty", s.options.StagingTable)
	}

	headers := make([]string, 0, len(data[0]))
	for _, cell := range data[0] {
		headers = append(headers, entity.AsString(cell))
	}

	candidates := s.candidates()
	ent := Identify(candidates, headers)
	if ent == nil {
		return nil, errors.Errorf("unrecognized staging headers, candidates are:\n%s", describeCandidates(candidates))
	}

	rows, err := table.FromTable(data, ent)
	if err != nil {
		return nil, err
	}

	result := &Result{Entity: ent.Name, Mode: s.ImportMode(ent.Name), Total: len(rows)}
	switch result.Mode {
	case ModeAppend:
		if err := s.appendRows(ent, rows, result); err != nil {
			return nil, err
		}
	default:
		if err := s.overwriteRows(ent, rows); err != nil {
			return nil, err
		}
	}

	if err := s.stampImportDate(ent); err != nil {
		return nil, err
	}
	if err := s.store.ClearTable(s.options.StagingTable); err != nil {
		return nil, errors.WithMessagef(err, "failed to clear staging table [%s]", s.options.StagingTable)
	}

	switch result.Mode {
	case ModeAppend:
		result.Message = fmt.Sprintf("导入 [%s] 完成：共 %d 行，新增 %d 行，更新 %d 行", ent.Worksheet, result.Total, result.New, result.Updated)
	default:
		result.Message = fmt.Sprintf("导入 [%s] 完成：覆盖 %d 行", ent.Worksheet, result.Total)
	}
	s.logger.Info("import finished", "entity", ent.Name, "mode", string(result.Mode),
		"total", result.Total, "new", result.New, "updated", result.Updated)
	return result, nil
}

// overwriteRows 整表覆盖，Save 自带校验
func (s *Service) overwriteRows(ent *entity.Entity, rows []entity.Row) error {
	return s.repository.Save(ent.Name, rows)
}

// appendRows 按唯一键合并：已存在的行用新行字段覆盖（行号保留），
// 不存在的行追加到末尾。新行之间的唯一性冲突在校验阶段报错。
func (s *Service) appendRows(ent *entity.Entity, rows []entity.Row, result *Result) error {
	unique := ent.UniqueFields()
	if len(unique) == 0 {
		return errors.WithMessagef(repo.ErrMissingUniqueKey, "append import entity [%s]", ent.Name)
	}

	validation := entity.ValidateAll(rows, ent)
	if !validation.Valid {
		return errors.New(entity.FormatErrors(validation, ent.Worksheet))
	}

	// 目标实体可能从未写入过，按空表处理
	existing, err := s.repository.FindAll(ent.Name)
	if err != nil {
		if !errors.Is(err, table.ErrTableNotFound) {
			return err
		}
		existing = nil
	}

	merged := make([]entity.Row, 0, len(existing)+len(rows))
	position := make(map[string]int, len(existing))
	for _, row := range existing {
		key := entity.CompositeValue(row, unique)
		position[key] = len(merged)
		merged = append(merged, row)
	}

	next := 1
	for _, row := range merged {
		if n := row.RowNumber(); n >= next {
			next = n + 1
		}
	}

	for _, row := range rows {
		key := entity.CompositeValue(row, unique)
		if entity.IsEmptyComposite(key) {
			return errors.WithMessagef(repo.ErrMissingUniqueKey,
				"append import entity [%s]: row %d", ent.Name, row.RowNumber())
		}
		if i, ok := position[key]; ok {
			update := merged[i].Clone()
			for _, f := range ent.PersistedFields() {
				if v, exists := row[f.Name]; exists {
					update[f.Name] = v
				} else {
					delete(update, f.Name)
				}
			}
			update.SetRowNumber(merged[i].RowNumber())
			merged[i] = update
			result.Updated++
			continue
		}
		fresh := row.Clone()
		fresh.SetRowNumber(next)
		next++
		position[key] = len(merged)
		merged = append(merged, fresh)
		result.New++
	}

	return s.repository.Save(ent.Name, merged)
}

// stampImportDate 把导入时间写进系统记录表的对应字段
func (s *Service) stampImportDate(ent *entity.Entity) error {
	if s.options.SystemRecordEntity == "" || ent.ImportDateField == "" {
		return nil
	}
	stamp := s.now().Format(entity.TimestampLayout)
	records, err := s.repository.FindAll(s.options.SystemRecordEntity)
	if err != nil {
		if !errors.Is(err, table.ErrTableNotFound) {
			return err
		}
		records = nil
	}
	if len(records) == 0 {
		row := entity.Row{ent.ImportDateField: stamp}
		row.SetRowNumber(2)
		return s.repository.Save(s.options.SystemRecordEntity, []entity.Row{row})
	}
	update := records[0].Clone()
	update[ent.ImportDateField] = stamp
	all := append([]entity.Row{}, records...)
	all[0] = update
	return s.repository.Save(s.options.SystemRecordEntity, all)
}

func (s *Service) candidates() []*entity.Entity {
	entities := make([]*entity.Entity, 0, len(s.options.Entities))
	for _, name := range s.options.Entities {
		if ent, err := s.repository.Registry().Get(name); err == nil {
			entities = append(entities, ent)
		}
	}
	return entities
}

func describeCandidates(entities []*entity.Entity) string {
	lines := make([]string, 0, len(entities))
	for _, ent := range entities {
		lines = append(lines, fmt.Sprintf("  [%s] 需要列: %s", ent.Worksheet, strings.Join(ent.RequiredTitles(), ", ")))
	}
	return strings.Join(lines, "\n")
}
