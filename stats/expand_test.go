package stats

import (
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/hatlonely/skux/entity"
)

func TestMaxISOWeek(t *testing.T) {
	convey.Convey("ISO 周数", t, func() {
		convey.Convey("53 周的年份", func() {
			for _, year := range []int{1903, 1981, 2004, 2009, 2015, 2020, 2026} {
				convey.So(MaxISOWeek(year), convey.ShouldEqual, 53)
			}
		})

		convey.Convey("52 周的年份", func() {
			for _, year := range []int{1900, 1999, 2021, 2023, 2024, 2100} {
				convey.So(MaxISOWeek(year), convey.ShouldEqual, 52)
			}
		})

		convey.Convey("与标准库 ISOWeek 一致", func() {
			for year := 1900; year <= 2100; year += 7 {
				start := ISOWeekStart(year, 1)
				y, w := start.ISOWeek()
				convey.So(y, convey.ShouldEqual, year)
				convey.So(w, convey.ShouldEqual, 1)
				convey.So(start.Weekday(), convey.ShouldEqual, time.Monday)
			}
		})
	})
}

func TestISOWeekStart(t *testing.T) {
	convey.Convey("ISO 周起始日", t, func() {
		// 2024 年第 1 周从 2024-01-01（周一）开始
		convey.So(ISOWeekStart(2024, 1).Format("2006-01-02"), convey.ShouldEqual, "2024-01-01")
		// 2016 年 1 月 1 日是周五，第 1 周从 1 月 4 日开始
		convey.So(ISOWeekStart(2016, 1).Format("2006-01-02"), convey.ShouldEqual, "2016-01-04")
		// 2021 年第 1 周从 2021-01-04 开始
		convey.So(ISOWeekStart(2021, 1).Format("2006-01-02"), convey.ShouldEqual, "2021-01-04")
	})
}

func expandableField(planType PlanType, year, days int) *Field {
	return &Field{
		Name:  "qtyStat",
		Title: "销量",
		Kind:  KindExpandable,
		Plan: &Plan{
			Type:      planType,
			Year:      year,
			Days:      days,
			Metric:    "qty",
			ItemField: "item",
		},
	}
}

func TestExpand(t *testing.T) {
	convey.Convey("可展开统计字段物化", t, func() {
		today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

		convey.Convey("月计划：历史年份 12 个月", func() {
			fields, err := Expand(expandableField(PlanTypeMonth, 2023, 0), today)
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(fields), convey.ShouldEqual, 12)
			convey.So(fields[0].Name, convey.ShouldEqual, "qtyStat_202301")
			convey.So(fields[0].Title, convey.ShouldEqual, "2023年01月销量")
		})

		convey.Convey("月计划：当年截止到当前月份", func() {
			fields, err := Expand(expandableField(PlanTypeMonth, 2024, 0), today)
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(fields), convey.ShouldEqual, 6)
		})

		convey.Convey("周计划：按当年 ISO 周数展开", func() {
			fields, err := Expand(expandableField(PlanTypeWeek, 2020, 0), today)
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(fields), convey.ShouldEqual, 53)
			convey.So(fields[0].Name, convey.ShouldEqual, "qtyStat_2020w01")
		})

		convey.Convey("日计划：当年截止到今天", func() {
			fields, err := Expand(expandableField(PlanTypeDay, 2024, 0), today)
			convey.So(err, convey.ShouldBeNil)
			// 2024 年闰年：1-5 月 152 天 + 6 月 15 天
			convey.So(len(fields), convey.ShouldEqual, 167)
			convey.So(fields[len(fields)-1].Name, convey.ShouldEqual, "qtyStat_20240615")
		})

		convey.Convey("近 N 天计划：从最早到最晚且包含今天", func() {
			fields, err := Expand(expandableField(PlanTypeRecent, 0, 14), today)
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(fields), convey.ShouldEqual, 14)
			convey.So(fields[0].Name, convey.ShouldEqual, "qtyStat_20240602")
			convey.So(fields[13].Name, convey.ShouldEqual, "qtyStat_20240615")
		})

		convey.Convey("summary 字段不可展开", func() {
			_, err := Expand(&Field{Name: "s", Kind: KindSummary}, today)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestExpandedCompute(t *testing.T) {
	convey.Convey("展开字段的计算闭包", t, func() {
		today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
		fields, err := Expand(expandableField(PlanTypeMonth, 2024, 0), today)
		convey.So(err, convey.ShouldBeNil)

		ctx := &entity.Context{
			Today: today,
			SalesTotal: func(item string, from, to time.Time, metric string) float64 {
				// 核对边界：6 月的字段聚合 [2024-06-01, 2024-06-30]
				if from.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)) &&
					to.Equal(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)) {
					return 42
				}
				return 0
			},
		}

		row := entity.Row{"item": "A"}
		june := fields[5]
		convey.So(june.Compute(row, ctx), convey.ShouldEqual, 42.0)

		convey.Convey("货号为空时不计算", func() {
			convey.So(june.Compute(entity.Row{}, ctx), convey.ShouldBeNil)
		})

		convey.Convey("上下文缺失时不计算", func() {
			convey.So(june.Compute(row, nil), convey.ShouldBeNil)
		})
	})
}
