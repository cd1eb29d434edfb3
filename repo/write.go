package repo

import (
	"reflect"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/hatlonely/skux/entity"
	"github.com/hatlonely/skux/query"
	"github.com/hatlonely/skux/table"
)

// Save 全量写入：校验 → 重算计算字段 → 默认排序 → 落表 → 替换缓存 → 重建索引。
// 任一步失败时缓存保持原状。
func (r *Repository) Save(name string, rows []entity.Row) error {
	ent, err := r.registry.Get(name)
	if err != nil {
		return err
	}

	result := entity.ValidateAll(rows, ent)
	if !result.Valid {
		return errors.New(entity.FormatErrors(result, ent.Worksheet))
	}

	r.computeFields(ent, rows)
	if len(ent.DefaultSort) > 0 {
		query.SortRows(rows, ent.DefaultSort)
	}

	if err := r.store.WriteTable(ent.Worksheet, table.ToTable(rows, ent)); err != nil {
		return errors.WithMessagef(err, "failed to persist entity [%s]", name)
	}

	r.cache[name] = rows
	r.engine(ent).Rebuild(rows)
	r.logger.Debug("entity saved", "entity", name, "rows", len(rows))
	return nil
}

// Clear 清空实体：清表、丢缓存、清索引
func (r *Repository) Clear(name string) error {
	ent, err := r.registry.Get(name)
	if err != nil {
		return err
	}
	if err := r.store.ClearTable(ent.Worksheet); err != nil {
		return errors.WithMessagef(err, "failed to clear entity [%s]", name)
	}
	delete(r.cache, name)
	r.engine(ent).Rebuild(nil)
	return nil
}

type AddOptions struct {
	// ValidateOnly 只做校验不落表
	ValidateOnly bool
}

// Add 插入单行：合成行号、应用默认值、对现有数据校验后追加保存
func (r *Repository) Add(name string, row entity.Row, options *AddOptions) error {
	return r.AddMany(name, []entity.Row{row}, options)
}

// AddMany 批量插入。每行都对「已有数据 + 先前接受的新行」做校验；
// 任一行失败时聚合为一个错误，不做部分写入。
func (r *Repository) AddMany(name string, rows []entity.Row, options *AddOptions) error {
	if options == nil {
		options = &AddOptions{}
	}
	ent, err := r.registry.Get(name)
	if err != nil {
		return err
	}
	existing, err := r.FindAll(name)
	if err != nil {
		return err
	}

	next := maxRowNumber(existing) + 1
	accepted := append([]entity.Row{}, existing...)
	result := entity.Result{Valid: true}
	for _, row := range rows {
		row.SetRowNumber(next)
		next++
		applyDefaults(row, ent)

		item := entity.ValidateRow(row, ent, append(accepted, row))
		if !item.Valid {
			result.Valid = false
			result.Items = append(result.Items, item)
			continue
		}
		accepted = append(accepted, row)
	}
	if !result.Valid {
		return errors.New(entity.FormatErrors(result, ent.Worksheet))
	}
	if options.ValidateOnly {
		return nil
	}
	return r.Save(name, accepted)
}

type UpdateOptions struct {
	// Upsert 无命中时按 条件+补丁 插入
	Upsert bool
	// Multi 允许更新多行
	Multi bool
	// ValidateOnly 只做校验不落表
	ValidateOnly bool
}

// Update 按条件定位并应用补丁，返回更新的行数。
// 命中多行且未设置 Multi 时失败；行号在更新中保持不变。
func (r *Repository) Update(name string, cond query.Condition, patch entity.Row, options *UpdateOptions) (int, error) {
	if options == nil {
		options = &UpdateOptions{}
	}
	ent, err := r.registry.Get(name)
	if err != nil {
		return 0, err
	}

	located, err := r.Find(name, cond)
	if err != nil {
		return 0, err
	}
	if len(located) == 0 {
		if !options.Upsert {
			return 0, errors.WithMessagef(ErrNoMatch, "update entity [%s]", name)
		}
		row := entity.Row{}
		_, litValues := literalCondition(cond)
		for k, v := range litValues {
			row[k] = v
		}
		for k, v := range patch {
			row[k] = v
		}
		return 1, r.Add(name, row, &AddOptions{ValidateOnly: options.ValidateOnly})
	}
	if len(located) > 1 && !options.Multi {
		return 0, errors.WithMessagef(ErrMultipleMatch, "update entity [%s] matched %d rows", name, len(located))
	}

	all, err := r.FindAll(name)
	if err != nil {
		return 0, err
	}
	newAll := append([]entity.Row{}, all...)
	merged := make([]entity.Row, 0, len(located))
	for _, target := range located {
		for i, row := range newAll {
			if !sameRow(row, target) {
				continue
			}
			update := target.Clone()
			for k, v := range patch {
				update[k] = v
			}
			update.SetRowNumber(target.RowNumber())
			newAll[i] = update
			merged = append(merged, update)
			break
		}
	}

	result := entity.Result{Valid: true}
	for _, row := range merged {
		item := entity.ValidateRow(row, ent, newAll)
		if !item.Valid {
			result.Valid = false
			result.Items = append(result.Items, item)
		}
	}
	if !result.Valid {
		return 0, errors.New(entity.FormatErrors(result, ent.Worksheet))
	}
	if options.ValidateOnly {
		return len(merged), nil
	}
	return len(merged), r.Save(name, newAll)
}

// Upsert 按唯一键插入或更新。uniqueFields 缺省为实体唯一键；
// 唯一键字段必须全部有值。
func (r *Repository) Upsert(name string, row entity.Row, uniqueFields ...string) error {
	ent, err := r.registry.Get(name)
	if err != nil {
		return err
	}
	if len(uniqueFields) == 0 {
		uniqueFields = ent.UniqueFields()
	}
	if len(uniqueFields) == 0 {
		return errors.WithMessagef(ErrMissingUniqueKey, "upsert entity [%s]", name)
	}

	cond := query.Condition{}
	for _, f := range uniqueFields {
		if entity.IsEmpty(row[f]) {
			return errors.WithMessagef(ErrMissingUniqueKey, "upsert entity [%s]: field [%s] is empty", name, f)
		}
		cond[f] = row[f]
	}

	located, err := r.Find(name, cond)
	if err != nil {
		return err
	}
	if len(located) > 1 {
		return errors.WithMessagef(ErrMultipleMatch, "upsert entity [%s] matched %d rows", name, len(located))
	}
	if len(located) == 1 {
		_, err := r.Update(name, cond, row, nil)
		return err
	}
	return r.Add(name, row, nil)
}

type DeleteOptions struct {
	// Multi 允许删除多行
	Multi bool
}

// Delete 按条件删除，返回删除的行数。零命中视为状态错误。
func (r *Repository) Delete(name string, cond query.Condition, options *DeleteOptions) (int, error) {
	if options == nil {
		options = &DeleteOptions{}
	}
	located, err := r.Find(name, cond)
	if err != nil {
		return 0, err
	}
	if len(located) == 0 {
		return 0, errors.WithMessagef(ErrNoMatch, "delete entity [%s]", name)
	}
	if len(located) > 1 && !options.Multi {
		return 0, errors.WithMessagef(ErrMultipleMatch, "delete entity [%s] matched %d rows", name, len(located))
	}

	all, err := r.FindAll(name)
	if err != nil {
		return 0, err
	}
	remaining := make([]entity.Row, 0, len(all))
	for _, row := range all {
		if containsRow(located, row) {
			continue
		}
		remaining = append(remaining, row)
	}
	return len(located), r.Save(name, remaining)
}

// Transaction 逐实体保存。原子性以实体为单位：单个 Save 全量成功或失败，
// 实体之间不做回滚；任一失败时聚合为一个错误。
func (r *Repository) Transaction(ops map[string][]entity.Row) error {
	names := make([]string, 0, len(ops))
	for name := range ops {
		names = append(names, name)
	}
	sort.Strings(names)

	var failures []string
	for _, name := range names {
		if err := r.Save(name, ops[name]); err != nil {
			failures = append(failures, errors.WithMessagef(err, "entity [%s]", name).Error())
		}
	}
	if len(failures) > 0 {
		return errors.Errorf("transaction failed:\n%s", strings.Join(failures, "\n"))
	}
	return nil
}

func applyDefaults(row entity.Row, ent *entity.Entity) {
	for _, f := range ent.PersistedFields() {
		if f.Default == nil {
			continue
		}
		if _, exists := row[f.Name]; exists {
			continue
		}
		if value := f.DefaultValue(row); value != nil {
			row[f.Name] = value
		}
	}
}

func maxRowNumber(rows []entity.Row) int {
	max := 1
	for _, row := range rows {
		if n := row.RowNumber(); n > max {
			max = n
		}
	}
	return max
}

func sameRow(a, b entity.Row) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

func containsRow(rows []entity.Row, target entity.Row) bool {
	for _, row := range rows {
		if sameRow(row, target) {
			return true
		}
	}
	return false
}
