package repo

import (
	"reflect"

	"github.com/pkg/errors"

	"github.com/hatlonely/skux/entity"
	"github.com/hatlonely/skux/index"
	"github.com/hatlonely/skux/log"
	"github.com/hatlonely/skux/query"
	"github.com/hatlonely/skux/table"
)

var (
	ErrNoMatch          = errors.New("no rows matched")
	ErrMultipleMatch    = errors.New("multiple rows matched, set multi to update/delete more than one row")
	ErrMissingUniqueKey = errors.New("missing unique key")
)

type RepositoryOptions struct {
	// Store 表格存储端口
	Store table.Store
	// Registry 实体注册表
	Registry *entity.Registry
	// Logger 可选，默认使用全局日志器
	Logger log.Logger
}

// Repository 实体仓库：缓存、索引、校验和计算字段的协调者。
// 所有公开操作均为同步执行，调用方持有的行引用在下一次 Save 后失效。
type Repository struct {
	store    table.Store
	registry *entity.Registry
	logger   log.Logger

	cache   map[string][]entity.Row
	engines map[string]*index.Engine
	ctx     *entity.Context
}

func NewRepositoryWithOptions(options *RepositoryOptions) (*Repository, error) {
	if options == nil {
		return nil, errors.New("options is nil")
	}
	if options.Store == nil {
		return nil, errors.New("store is nil")
	}
	if options.Registry == nil {
		return nil, errors.New("registry is nil")
	}
	logger := options.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Repository{
		store:    options.Store,
		registry: options.Registry,
		logger:   logger.WithGroup("repository"),
		cache:    make(map[string][]entity.Row),
		engines:  make(map[string]*index.Engine),
	}, nil
}

// SetContext 注入计算字段上下文并重算已缓存的数据
func (r *Repository) SetContext(ctx *entity.Context) {
	r.ctx = ctx
	for name, rows := range r.cache {
		ent, err := r.registry.Get(name)
		if err != nil {
			continue
		}
		r.computeFields(ent, rows)
	}
}

// Context 当前计算上下文
func (r *Repository) Context() *entity.Context {
	return r.ctx
}

// Registry 实体注册表
func (r *Repository) Registry() *entity.Registry {
	return r.registry
}

// RegisterIndexes 注册额外索引，实体已缓存时立即重建
func (r *Repository) RegisterIndexes(name string, configs []entity.IndexDefinition) error {
	ent, err := r.registry.Get(name)
	if err != nil {
		return err
	}
	engine := r.engine(ent)
	for _, cfg := range configs {
		engine.Register(cfg.Fields, cfg.Unique)
	}
	if rows, ok := r.cache[name]; ok {
		engine.Rebuild(rows)
	}
	return nil
}

// engine 取实体的索引引擎，首次访问时注册声明的索引和唯一键索引
func (r *Repository) engine(ent *entity.Entity) *index.Engine {
	if engine, ok := r.engines[ent.Name]; ok {
		return engine
	}
	engine := index.NewEngine()
	if unique := ent.UniqueFields(); len(unique) > 0 {
		engine.Register(unique, true)
	}
	for _, cfg := range ent.Indexes {
		engine.Register(cfg.Fields, cfg.Unique)
	}
	r.engines[ent.Name] = engine
	return engine
}

// FindAll 读取实体全部行。已缓存时直接返回缓存；
// 否则经存储端口读出、类型化、计算、建索引后缓存。
func (r *Repository) FindAll(name string) ([]entity.Row, error) {
	ent, err := r.registry.Get(name)
	if err != nil {
		return nil, err
	}
	if rows, ok := r.cache[name]; ok {
		return rows, nil
	}

	data, err := r.store.ReadTable(ent.Worksheet)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to load entity [%s]", name)
	}
	rows, err := table.FromTable(data, ent)
	if err != nil {
		return nil, err
	}

	r.computeFields(ent, rows)
	r.cache[name] = rows
	r.engine(ent).Rebuild(rows)
	return rows, nil
}

// Find 结构化条件查询。优先走索引：条件字段集与某索引完全一致时精确查找，
// 否则在最长可用前缀上查找后对剩余条件全扫描；无可用索引时退化为全表扫描。
// 条件值为 nil 表示忽略该字段，列表表示任意命中。
func (r *Repository) Find(name string, cond query.Condition) ([]entity.Row, error) {
	rows, err := r.FindAll(name)
	if err != nil {
		return nil, err
	}

	fields := cond.Fields()
	if len(fields) == 0 {
		return rows, nil
	}

	// 索引只接受字面量条件字段
	litFields, litValues := literalCondition(cond)
	engine := r.engines[name]

	if engine != nil && len(litFields) == len(fields) {
		if idx := engine.Get(litFields); idx != nil {
			return append([]entity.Row{}, idx.Lookup(litValues)...), nil
		}
	}

	if engine != nil && len(litFields) > 0 {
		if idx, n := engine.BestPrefix(litFields); idx != nil {
			bucket := idx.LookupPrefix(litValues, n)
			return filterRows(bucket, cond), nil
		}
	}

	return filterRows(rows, cond), nil
}

// FindOne 返回第一个命中行，无命中时返回 nil。
// 条件恰为唯一键时直接走唯一索引。
func (r *Repository) FindOne(name string, cond query.Condition) (entity.Row, error) {
	ent, err := r.registry.Get(name)
	if err != nil {
		return nil, err
	}
	if _, err := r.FindAll(name); err != nil {
		return nil, err
	}

	unique := ent.UniqueFields()
	if len(unique) > 0 && sameFieldSet(cond.Fields(), unique) {
		if litFields, litValues := literalCondition(cond); len(litFields) == len(unique) {
			if idx := r.engines[name].Get(unique); idx != nil {
				if bucket := idx.Lookup(litValues); len(bucket) > 0 {
					return bucket[0], nil
				}
				return nil, nil
			}
		}
	}

	rows, err := r.Find(name, cond)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Query 全量物化后执行 过滤 → 排序 → 分页
func (r *Repository) Query(name string, options *query.Options) ([]entity.Row, error) {
	rows, err := r.FindAll(name)
	if err != nil {
		return nil, err
	}
	return query.Apply(rows, options)
}

// Refresh 丢弃缓存并重新读取
func (r *Repository) Refresh(name string) ([]entity.Row, error) {
	delete(r.cache, name)
	return r.FindAll(name)
}

// ClearAllCache 丢弃全部缓存
func (r *Repository) ClearAllCache() {
	r.cache = make(map[string][]entity.Row)
}

// computeFields 重算全部计算字段。
// 单行计算失败只影响该行该字段（保持未定义），不中断整表。
func (r *Repository) computeFields(ent *entity.Entity, rows []entity.Row) {
	computed := ent.ComputedFields()
	if len(computed) == 0 {
		return
	}
	for _, row := range rows {
		for _, f := range computed {
			if value, ok := safeCompute(f, row, r.ctx); ok && value != nil {
				row[f.Name] = value
			} else {
				delete(row, f.Name)
			}
		}
	}
}

func safeCompute(f *entity.FieldSpec, row entity.Row, ctx *entity.Context) (value any, ok bool) {
	defer func() {
		if recover() != nil {
			value, ok = nil, false
		}
	}()
	return f.Compute(row, ctx), true
}

// literalCondition 提取条件中的字面量字段，供索引查找使用
func literalCondition(cond query.Condition) ([]string, entity.Row) {
	fields := make([]string, 0, len(cond))
	values := entity.Row{}
	for field, value := range cond {
		if value == nil {
			continue
		}
		switch value.(type) {
		case query.Query, func(any) bool:
			continue
		}
		if isSlice(value) {
			continue
		}
		fields = append(fields, field)
		values[field] = value
	}
	return fields, values
}

func isSlice(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array, reflect.Func:
		return true
	}
	return false
}

func filterRows(rows []entity.Row, cond query.Condition) []entity.Row {
	result := make([]entity.Row, 0)
	for _, row := range rows {
		if cond.Match(row) {
			result = append(result, row)
		}
	}
	return result
}

func sameFieldSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, f := range a {
		set[f] = true
	}
	for _, f := range b {
		if !set[f] {
			return false
		}
	}
	return true
}
