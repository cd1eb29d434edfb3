package report

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/hatlonely/skux/entity"
	"github.com/hatlonely/skux/log"
	"github.com/hatlonely/skux/repo"
	"github.com/hatlonely/skux/stats"
)

type PlannerOptions struct {
	// Entity 报表的数据来源实体
	Entity string `validate:"required"`
	// Columns 输出的实体字段名，按输出顺序
	Columns []string `validate:"required,min=1"`
	// StatsFields 追加的统计字段名，可展开字段按 today 物化为多列
	StatsFields []string
}

// Planner 报表规划器：基础列取实体字段，统计列取统计目录，
// 可展开统计按显式传入的 today 物化。
type Planner struct {
	options *PlannerOptions

	repository *repo.Repository
	catalog    *stats.Catalog
	logger     log.Logger
}

func NewPlannerWithOptions(repository *repo.Repository, catalog *stats.Catalog, options *PlannerOptions) (*Planner, error) {
	if repository == nil {
		return nil, errors.New("repository is nil")
	}
	if catalog == nil {
		return nil, errors.New("catalog is nil")
	}
	if err := validator.New().Struct(options); err != nil {
		return nil, errors.Wrap(err, "options is invalid")
	}

	return &Planner{
		options:    options,
		repository: repository,
		catalog:    catalog,
		logger:     log.Default().WithGroup("planner"),
	}, nil
}

// Report 物化后的报表
type Report struct {
	Header []any
	Rows   [][]any
}

// Build 物化报表。列集合是 today 的纯函数，跨天后重新调用。
func (p *Planner) Build(today time.Time) (*Report, error) {
	ent, err := p.repository.Registry().Get(p.options.Entity)
	if err != nil {
		return nil, err
	}
	rows, err := p.repository.FindAll(p.options.Entity)
	if err != nil {
		return nil, err
	}

	columns, err := p.columns(ent, today)
	if err != nil {
		return nil, err
	}

	header := make([]any, 0, len(columns))
	for _, spec := range columns {
		header = append(header, spec.Title)
	}

	ctx := p.repository.Context()
	cells := make([][]any, 0, len(rows))
	for _, row := range rows {
		line := make([]any, 0, len(columns))
		for _, spec := range columns {
			line = append(line, cellValue(row, spec, ctx))
		}
		cells = append(cells, line)
	}
	return &Report{Header: header, Rows: cells}, nil
}

// Write 物化并输出报表
func (p *Planner) Write(name string, today time.Time, writer SheetWriter) error {
	built, err := p.Build(today)
	if err != nil {
		return err
	}
	if err := writer.WriteSheet(name, built.Header, built.Rows); err != nil {
		return err
	}
	p.logger.Info("report written", "sheet", name, "columns", len(built.Header), "rows", len(built.Rows))
	return nil
}

// columns 组装输出列：实体字段 + 统计字段（展开 expandable）
func (p *Planner) columns(ent *entity.Entity, today time.Time) ([]*entity.FieldSpec, error) {
	columns := make([]*entity.FieldSpec, 0, len(p.options.Columns))
	for _, name := range p.options.Columns {
		spec := ent.Field(name)
		if spec == nil {
			return nil, errors.Errorf("entity [%s] has no field [%s]", ent.Name, name)
		}
		columns = append(columns, spec)
	}

	for _, name := range p.options.StatsFields {
		f := p.catalog.Get(name)
		if f == nil {
			return nil, errors.Errorf("unknown statistics field [%s]", name)
		}
		switch f.Kind {
		case stats.KindSummary:
			columns = append(columns, &entity.FieldSpec{
				Name:    f.Name,
				Title:   f.Title,
				Type:    entity.FieldTypeComputed,
				Compute: f.Compute,
			})
		case stats.KindExpandable:
			expanded, err := stats.Expand(f, today)
			if err != nil {
				return nil, err
			}
			columns = append(columns, expanded...)
		}
	}
	return columns, nil
}

// cellValue 单元格取值，计算列即时求值，失败置空
func cellValue(row entity.Row, spec *entity.FieldSpec, ctx *entity.Context) (value any) {
	defer func() {
		if recover() != nil {
			value = ""
		}
	}()

	var v any
	if spec.Compute != nil {
		v = spec.Compute(row, ctx)
	} else {
		v = row[spec.Name]
	}
	if v == nil || entity.IsEmpty(v) {
		return ""
	}

	switch spec.Type {
	case entity.FieldTypeDate:
		if t, ok := entity.ParseDate(v); ok {
			return "'" + entity.FormatDate(t)
		}
		return ""
	case entity.FieldTypeNumber:
		if n, ok := entity.AsNumber(v); ok {
			return n
		}
		return ""
	}
	return v
}
