package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/hatlonely/skux/entity"
)

func TestNewRegistry(t *testing.T) {
	convey.Convey("注册表组装", t, func() {
		registry, err := NewRegistry()
		convey.So(err, convey.ShouldBeNil)

		for _, name := range []string{
			EntityProduct, EntityRegularProduct, EntityProductPrice,
			EntityInventory, EntityComboProduct, EntityProductSales, EntitySystemRecord,
		} {
			ent, err := registry.Get(name)
			convey.So(err, convey.ShouldBeNil)
			convey.So(ent.Name, convey.ShouldEqual, name)
		}
	})
}

func TestPromoProfitCalculator(t *testing.T) {
	convey.Convey("活动价利润计算", t, func() {
		calculator := &PromoProfitCalculator{}

		convey.Convey("利润 = 活动价×(1-佣金-损耗) - 成本 - 运费", func() {
			row := entity.Row{"promoPrice": 100.0, "costPrice": 40.0}
			rate := &entity.BrandRate{Commission: 0.05, FreightCost: 6.0, LossRate: 0.02}
			profit, ok := calculator.Profit(row, rate)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(profit, convey.ShouldAlmostEqual, 100.0*0.93-40.0-6.0, 1e-9)
		})

		convey.Convey("无费率配置时按零费率计算", func() {
			row := entity.Row{"promoPrice": 100.0, "costPrice": 40.0}
			profit, ok := calculator.Profit(row, nil)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(profit, convey.ShouldEqual, 60.0)
		})

		convey.Convey("缺活动价或成本价时无结果", func() {
			_, ok := calculator.Profit(entity.Row{"costPrice": 40.0}, nil)
			convey.So(ok, convey.ShouldBeFalse)
			_, ok = calculator.Profit(entity.Row{"promoPrice": 100.0}, nil)
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestLoadBrandRates(t *testing.T) {
	convey.Convey("品牌费率加载", t, func() {
		convey.Convey("正常解析", func() {
			path := filepath.Join(t.TempDir(), "rates.yaml")
			content := `
brands:
  "品牌A":
    commission: 0.05
    freightCost: 6
    lossRate: 0.02
  "品牌B":
    commission: 0.1
`
			convey.So(os.WriteFile(path, []byte(content), 0644), convey.ShouldBeNil)

			rates, err := LoadBrandRates(path)
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(rates), convey.ShouldEqual, 2)
			convey.So(rates["品牌A"].Commission, convey.ShouldEqual, 0.05)
			convey.So(rates["品牌A"].FreightCost, convey.ShouldEqual, 6.0)
			convey.So(rates["品牌B"].LossRate, convey.ShouldEqual, 0.0)
		})

		convey.Convey("文件不存在", func() {
			_, err := LoadBrandRates(filepath.Join(t.TempDir(), "missing.yaml"))
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("格式错误", func() {
			path := filepath.Join(t.TempDir(), "broken.yaml")
			convey.So(os.WriteFile(path, []byte("brands: [not a map"), 0644), convey.ShouldBeNil)
			_, err := LoadBrandRates(path)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestProductComputedFields(t *testing.T) {
	convey.Convey("产品表计算字段", t, func() {
		ent := NewProductEntity()
		field := func(name string) *entity.FieldSpec {
			for _, f := range ent.Fields {
				if f.Name == name {
					return f
				}
			}
			return nil
		}

		ctx := NewContext(
			time.Date(2024, 6, 15, 8, 30, 0, 0, time.Local),
			map[string]entity.BrandRate{"X": {Commission: 0.05, FreightCost: 6.0, LossRate: 0.02}},
			nil,
		)

		convey.Convey("商品链接按货号拼搜索地址", func() {
			link := field("productLink").Compute(entity.Row{"itemNumber": "A 1"}, ctx)
			convey.So(link, convey.ShouldEqual, "https://search.example.com/item?keyword=A+1")
			convey.So(field("productLink").Compute(entity.Row{}, ctx), convey.ShouldBeNil)
		})

		convey.Convey("上架天数按上市日期到今天计算", func() {
			row := entity.Row{"listingDate": "2024-06-01"}
			convey.So(field("salesAgeDays").Compute(row, ctx), convey.ShouldEqual, 14.0)
			convey.So(field("salesAgeDays").Compute(entity.Row{}, ctx), convey.ShouldBeNil)
			convey.So(field("salesAgeDays").Compute(entity.Row{"listingDate": "2099-01-01"}, ctx), convey.ShouldBeNil)
		})

		convey.Convey("库存合计按仓位桶求和", func() {
			row := entity.Row{
				FinishedGoodsField("main"): 10.0,
				FinishedGoodsField("east"): 5.0,
				GeneralGoodsField("main"):  3.0,
			}
			convey.So(field("finishedGoodsTotal").Compute(row, ctx), convey.ShouldEqual, 15.0)
			convey.So(field("generalGoodsTotal").Compute(row, ctx), convey.ShouldEqual, 3.0)
			convey.So(field("totalInventory").Compute(row, ctx), convey.ShouldEqual, 18.0)
		})

		convey.Convey("利润与利润率按品牌费率计算", func() {
			row := entity.Row{"brand": "X", "promoPrice": 100.0, "costPrice": 40.0}
			profit := field("profit").Compute(row, ctx)
			convey.So(profit, convey.ShouldAlmostEqual, 47.0, 1e-9)
			convey.So(field("profitRate").Compute(row, ctx), convey.ShouldAlmostEqual, 0.47, 1e-9)

			convey.Convey("缺上下文时无结果", func() {
				convey.So(field("profit").Compute(row, nil), convey.ShouldBeNil)
			})
			convey.Convey("活动价为零时利润率无定义", func() {
				zero := entity.Row{"brand": "X", "promoPrice": 0.0, "costPrice": 40.0}
				convey.So(field("profitRate").Compute(zero, ctx), convey.ShouldBeNil)
			})
		})
	})
}

func TestNewContextSalesTotal(t *testing.T) {
	convey.Convey("销售聚合闭包", t, func() {
		ctx := NewContext(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), nil, []entity.Row{
			{"itemNumber": "A", "date": "2024-06-01", "qty": 3.0, "amount": 30.0},
			{"itemNumber": "A", "date": "2024-06-10", "qty": 4.0, "amount": 40.0},
			{"itemNumber": "A", "date": "2024-07-01", "qty": 9.0},
			{"itemNumber": "B", "date": "2024-06-10", "qty": 100.0},
		})

		from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

		convey.Convey("闭区间内按货号与指标求和", func() {
			convey.So(ctx.SalesTotal("A", from, to, "qty"), convey.ShouldEqual, 7.0)
			convey.So(ctx.SalesTotal("A", from, to, "amount"), convey.ShouldEqual, 70.0)
			convey.So(ctx.SalesTotal("B", from, to, "qty"), convey.ShouldEqual, 100.0)
			convey.So(ctx.SalesTotal("C", from, to, "qty"), convey.ShouldEqual, 0.0)
		})

		convey.Convey("今天归一化到零点", func() {
			convey.So(ctx.Today, convey.ShouldEqual, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
		})
	})
}
