package catalog

import (
	"time"

	"github.com/hatlonely/skux/entity"
	"github.com/hatlonely/skux/stats"
)

// NewStatsCatalog 报表用统计字段目录。
// 展开计划依赖显式传入的 today，跨天后需要重建。
func NewStatsCatalog(today time.Time) *stats.Catalog {
	return stats.NewCatalog(
		&stats.Field{
			Name:  "averageDailyQty",
			Title: "日均销量",
			Kind:  stats.KindSummary,
			Compute: func(row entity.Row, ctx *entity.Context) any {
				qty, ok := entity.AsNumber(row["last7Qty"])
				if !ok {
					return nil
				}
				return qty / 7
			},
		},
		&stats.Field{
			Name:  "lastYearMonthlyQty",
			Title: "销量",
			Kind:  stats.KindExpandable,
			Plan: &stats.Plan{
				Type:      stats.PlanTypeMonth,
				Year:      today.Year() - 1,
				Metric:    "qty",
				ItemField: "itemNumber",
			},
		},
		&stats.Field{
			Name:  "monthlyQty",
			Title: "销量",
			Kind:  stats.KindExpandable,
			Plan: &stats.Plan{
				Type:      stats.PlanTypeMonth,
				Year:      today.Year(),
				Metric:    "qty",
				ItemField: "itemNumber",
			},
		},
		&stats.Field{
			Name:  "weeklyQty",
			Title: "销量",
			Kind:  stats.KindExpandable,
			Plan: &stats.Plan{
				Type:      stats.PlanTypeWeek,
				Year:      today.Year(),
				Metric:    "qty",
				ItemField: "itemNumber",
			},
		},
		&stats.Field{
			Name:  "dailyQty",
			Title: "销量",
			Kind:  stats.KindExpandable,
			Plan: &stats.Plan{
				Type:      stats.PlanTypeDay,
				Year:      today.Year(),
				Metric:    "qty",
				ItemField: "itemNumber",
			},
		},
		&stats.Field{
			Name:  "recent14Qty",
			Title: "销量",
			Kind:  stats.KindExpandable,
			Plan: &stats.Plan{
				Type:      stats.PlanTypeRecent,
				Days:      14,
				Metric:    "qty",
				ItemField: "itemNumber",
			},
		},
		&stats.Field{
			Name:  "recent14Amount",
			Title: "销售额",
			Kind:  stats.KindExpandable,
			Plan: &stats.Plan{
				Type:      stats.PlanTypeRecent,
				Days:      14,
				Metric:    "amount",
				ItemField: "itemNumber",
			},
		},
	)
}
