package entity

import (
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
)

func TestParseDate(t *testing.T) {
	convey.Convey("宽松日期解析", t, func() {
		convey.Convey("常见格式归一化到同一天", func() {
			for _, input := range []any{
				"2024-06-01",
				"2024/06/01",
				"2024-6-1",
				"2024-06-01 13:45:00",
				"'2024-06-01",
				time.Date(2024, 6, 1, 19, 30, 0, 0, time.Local),
			} {
				d, ok := ParseDate(input)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(FormatDate(d), convey.ShouldEqual, "2024-06-01")
			}
		})

		convey.Convey("非日期值解析失败", func() {
			for _, input := range []any{"", "   ", "abc", nil, true, 123456} {
				_, ok := ParseDate(input)
				convey.So(ok, convey.ShouldBeFalse)
			}
		})
	})
}

func TestAsNumber(t *testing.T) {
	convey.Convey("数值转换", t, func() {
		convey.Convey("标准类型", func() {
			n, ok := AsNumber(3.5)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(n, convey.ShouldEqual, 3.5)

			n, ok = AsNumber(" 42 ")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(n, convey.ShouldEqual, 42)

			n, ok = AsNumber(int64(7))
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(n, convey.ShouldEqual, 7)
		})

		convey.Convey("反序列化层产出的其他整型宽度", func() {
			n, ok := AsNumber(int8(5))
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(n, convey.ShouldEqual, 5)

			n, ok = AsNumber(uint32(9))
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(n, convey.ShouldEqual, 9)
		})

		convey.Convey("非数值失败", func() {
			_, ok := AsNumber("abc")
			convey.So(ok, convey.ShouldBeFalse)
			_, ok = AsNumber(nil)
			convey.So(ok, convey.ShouldBeFalse)
			_, ok = AsNumber(true)
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestAsString(t *testing.T) {
	convey.Convey("字符串转换", t, func() {
		convey.So(AsString("abc"), convey.ShouldEqual, "abc")
		convey.So(AsString(3.0), convey.ShouldEqual, "3")
		convey.So(AsString(3.14), convey.ShouldEqual, "3.14")
		convey.So(AsString(int32(7)), convey.ShouldEqual, "7")
		convey.So(AsString(nil), convey.ShouldEqual, "")
		convey.So(AsString(true), convey.ShouldEqual, "")
	})
}

func TestRowHelpers(t *testing.T) {
	convey.Convey("行内部字段", t, func() {
		row := Row{"a": 1}
		row.SetRowNumber(5)
		convey.So(row.RowNumber(), convey.ShouldEqual, 5)

		clone := row.Clone()
		clone["a"] = 2
		convey.So(row["a"], convey.ShouldEqual, 1)

		convey.So(IsEmpty(""), convey.ShouldBeTrue)
		convey.So(IsEmpty("  "), convey.ShouldBeTrue)
		convey.So(IsEmpty(nil), convey.ShouldBeTrue)
		convey.So(IsEmpty(false), convey.ShouldBeTrue)
		convey.So(IsEmpty(0.0), convey.ShouldBeFalse)
		convey.So(IsEmpty("x"), convey.ShouldBeFalse)
	})
}
