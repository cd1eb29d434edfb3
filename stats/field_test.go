package stats

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestCatalog(t *testing.T) {
	convey.Convey("统计字段目录", t, func() {
		summary := &Field{Name: "avgQty", Title: "日均销量", Kind: KindSummary}
		expandable := &Field{Name: "monthlyQty", Title: "销量", Kind: KindExpandable, Plan: &Plan{
			Type: PlanTypeMonth, Year: 2024, Metric: "qty", ItemField: "itemNumber",
		}}
		c := NewCatalog(summary, expandable)

		convey.Convey("按名称查找", func() {
			convey.So(c.Get("avgQty"), convey.ShouldEqual, summary)
			convey.So(c.Get("monthlyQty"), convey.ShouldEqual, expandable)
			convey.So(c.Get("nope"), convey.ShouldBeNil)
		})

		convey.Convey("保持注册顺序", func() {
			fields := c.Fields()
			convey.So(len(fields), convey.ShouldEqual, 2)
			convey.So(fields[0].Name, convey.ShouldEqual, "avgQty")
			convey.So(fields[1].Name, convey.ShouldEqual, "monthlyQty")
		})
	})
}
