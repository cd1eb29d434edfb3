package stats

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/hatlonely/skux/entity"
)

// MaxISOWeek 一年的 ISO 周数。
// ISO 周以周一开始，第 1 周为包含当年第一个周四的那一周，
// 因此 12 月 28 日总落在最后一周。
func MaxISOWeek(year int) int {
	_, week := time.Date(year, 12, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return week
}

// ISOWeekStart 某年第 week 个 ISO 周的周一
func ISOWeekStart(year, week int) time.Time {
	jan4 := time.Date(year, 1, 4, 0, 0, 0, 0, time.UTC)
	monday := jan4.AddDate(0, 0, -((int(jan4.Weekday()) + 6) % 7))
	return monday.AddDate(0, 0, (week-1)*7)
}

// Expand 将可展开统计字段物化为一组具体的计算字段。
// 展开仅依赖显式传入的 today，跨天后由调用方重建。
func Expand(f *Field, today time.Time) ([]*entity.FieldSpec, error) {
	if f.Kind != KindExpandable || f.Plan == nil {
		return nil, errors.Errorf("field [%s] is not expandable", f.Name)
	}
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	plan := f.Plan
	switch plan.Type {
	case PlanTypeMonth:
		return expandMonth(f, plan, today), nil
	case PlanTypeWeek:
		return expandWeek(f, plan), nil
	case PlanTypeDay:
		return expandDay(f, plan, today), nil
	case PlanTypeRecent:
		return expandRecent(f, plan, today), nil
	}
	return nil, errors.Errorf("unknown plan type [%s]", plan.Type)
}

// expandMonth 年内逐月展开，当年截止到当前月份
func expandMonth(f *Field, plan *Plan, today time.Time) []*entity.FieldSpec {
	maxMonth := 12
	if plan.Year == today.Year() {
		maxMonth = int(today.Month())
	}
	fields := make([]*entity.FieldSpec, 0, maxMonth)
	for m := 1; m <= maxMonth; m++ {
		from := time.Date(plan.Year, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 1, -1)
		fields = append(fields, periodField(
			f,
			fmt.Sprintf("%s_%d%02d", f.Name, plan.Year, m),
			fmt.Sprintf("%d年%02d月%s", plan.Year, m, f.Title),
			plan, from, to,
		))
	}
	return fields
}

// expandWeek 年内逐 ISO 周展开
func expandWeek(f *Field, plan *Plan) []*entity.FieldSpec {
	maxWeek := MaxISOWeek(plan.Year)
	fields := make([]*entity.FieldSpec, 0, maxWeek)
	for w := 1; w <= maxWeek; w++ {
		from := ISOWeekStart(plan.Year, w)
		to := from.AddDate(0, 0, 6)
		fields = append(fields, periodField(
			f,
			fmt.Sprintf("%s_%dw%02d", f.Name, plan.Year, w),
			fmt.Sprintf("%d年第%02d周%s", plan.Year, w, f.Title),
			plan, from, to,
		))
	}
	return fields
}

// expandDay 年内逐日展开，当年截止到今天
func expandDay(f *Field, plan *Plan, today time.Time) []*entity.FieldSpec {
	last := time.Date(plan.Year, 12, 31, 0, 0, 0, 0, time.UTC)
	if plan.Year == today.Year() {
		last = today
	}
	var fields []*entity.FieldSpec
	for d := time.Date(plan.Year, 1, 1, 0, 0, 0, 0, time.UTC); !d.After(last); d = d.AddDate(0, 0, 1) {
		fields = append(fields, periodField(
			f,
			fmt.Sprintf("%s_%s", f.Name, d.Format("20060102")),
			fmt.Sprintf("%d年%02d月%02d日%s", d.Year(), int(d.Month()), d.Day(), f.Title),
			plan, d, d,
		))
	}
	return fields
}

// expandRecent 最近 N 天展开（含今天），从最早到最晚
func expandRecent(f *Field, plan *Plan, today time.Time) []*entity.FieldSpec {
	fields := make([]*entity.FieldSpec, 0, plan.Days)
	for i := plan.Days - 1; i >= 0; i-- {
		d := today.AddDate(0, 0, -i)
		fields = append(fields, periodField(
			f,
			fmt.Sprintf("%s_%s", f.Name, d.Format("20060102")),
			fmt.Sprintf("%02d月%02d日%s", int(d.Month()), d.Day(), f.Title),
			plan, d, d,
		))
	}
	return fields
}

// periodField 构造单个周期的计算字段，值为该周期内销售指标的总和
func periodField(f *Field, name, title string, plan *Plan, from, to time.Time) *entity.FieldSpec {
	itemField := plan.ItemField
	metric := plan.Metric
	return &entity.FieldSpec{
		Name:  name,
		Title: title,
		Type:  entity.FieldTypeComputed,
		Compute: func(row entity.Row, ctx *entity.Context) any {
			if ctx == nil || ctx.SalesTotal == nil {
				return nil
			}
			item := entity.AsString(row[itemField])
			if item == "" {
				return nil
			}
			return ctx.SalesTotal(item, from, to, metric)
		},
	}
}
