package consolidate

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/smartystreets/goconvey/convey"

	"github.com/hatlonely/skux/catalog"
	"github.com/hatlonely/skux/entity"
	"github.com/hatlonely/skux/query"
	"github.com/hatlonely/skux/repo"
	"github.com/hatlonely/skux/table"
)

var testNow = time.Date(2024, 6, 9, 10, 0, 0, 0, time.Local)

func newTestService() (*Service, *repo.Repository) {
	registry, err := catalog.NewRegistry()
	if err != nil {
		panic(err)
	}
	repository, err := repo.NewRepositoryWithOptions(&repo.RepositoryOptions{
		Store:    table.NewMemStore(),
		Registry: registry,
	})
	if err != nil {
		panic(err)
	}
	service, err := NewServiceWithOptions(repository, nil)
	if err != nil {
		panic(err)
	}
	service.SetClock(func() time.Time { return testNow })
	return service, repository
}

// seedSystemRecord 把全部导入时间戳写成 offset 之前
func seedSystemRecord(repository *repo.Repository, offset time.Duration) {
	stamp := testNow.Add(-offset).Format(entity.TimestampLayout)
	row := entity.Row{
		"regularImportDate":   stamp,
		"priceImportDate":     stamp,
		"inventoryImportDate": stamp,
		"comboImportDate":     stamp,
		"salesImportDate":     stamp,
	}
	row.SetRowNumber(2)
	if err := repository.Save(catalog.EntitySystemRecord, []entity.Row{row}); err != nil {
		panic(err)
	}
}

func TestFreshness(t *testing.T) {
	convey.Convey("来源新鲜度检查", t, func() {
		service, repository := newTestService()

		convey.Convey("从未导入时报过期错误", func() {
			_, err := service.FromRegular()
			convey.So(errors.Is(err, ErrStale), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "never been imported")
		})

		convey.Convey("超过 12 小时报过期错误", func() {
			seedSystemRecord(repository, 13*time.Hour)
			_, err := service.FromRegular()
			convey.So(errors.Is(err, ErrStale), convey.ShouldBeTrue)
		})

		convey.Convey("12 小时内通过", func() {
			seedSystemRecord(repository, time.Hour)
			convey.So(repository.Save(catalog.EntityRegularProduct, nil), convey.ShouldBeNil)
			_, err := service.FromRegular()
			convey.So(err, convey.ShouldBeNil)
		})
	})
}

func TestCheckPromotionFreshness(t *testing.T) {
	convey.Convey("活动提报的收紧检查", t, func() {
		service, repository := newTestService()

		convey.Convey("正装 5 小时内、库存当天导入时通过", func() {
			seedSystemRecord(repository, 2*time.Hour)
			convey.So(service.CheckPromotionFreshness(), convey.ShouldBeNil)
		})

		convey.Convey("正装超过 5 小时拒绝", func() {
			seedSystemRecord(repository, 6*time.Hour)
			err := service.CheckPromotionFreshness()
			convey.So(errors.Is(err, ErrStale), convey.ShouldBeTrue)
		})

		convey.Convey("库存非当天导入拒绝", func() {
			stamp := testNow.Format(entity.TimestampLayout)
			yesterday := testNow.AddDate(0, 0, -1).Format(entity.TimestampLayout)
			row := entity.Row{
				"regularImportDate":   stamp,
				"inventoryImportDate": yesterday,
			}
			row.SetRowNumber(2)
			convey.So(repository.Save(catalog.EntitySystemRecord, []entity.Row{row}), convey.ShouldBeNil)

			err := service.CheckPromotionFreshness()
			convey.So(errors.Is(err, ErrStale), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "same-day")
		})
	})
}

func TestFromRegular(t *testing.T) {
	convey.Convey("正装归集", t, func() {
		service, repository := newTestService()
		seedSystemRecord(repository, time.Hour)

		convey.So(repository.Save(catalog.EntityRegularProduct, []entity.Row{
			{"productCode": "P110", "itemNumber": "A", "size": "110", "brand": "X", "productName": "连衣裙", "status": "online", "sellableInventory": 0.0},
			{"productCode": "P100", "itemNumber": "A", "size": "100", "brand": "X", "productName": "连衣裙", "status": "online", "sellableInventory": 2.0},
			{"productCode": "P120", "itemNumber": "A", "size": "120", "brand": "X", "productName": "连衣裙", "status": "online", "sellableInventory": 0.0},
		}), convey.ShouldBeNil)

		summary, err := service.FromRegular()
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("未见过的货号插入新品并默认利润款", func() {
			convey.So(summary.NewProducts, convey.ShouldEqual, 1)
			product, _ := repository.FindOne(catalog.EntityProduct, query.Condition{"itemNumber": "A"})
			convey.So(product, convey.ShouldNotBeNil)
			convey.So(product["marketingPositioning"], convey.ShouldEqual, catalog.PositioningProfit)
			convey.So(product["brand"], convey.ShouldEqual, "X")
			convey.So(product["productName"], convey.ShouldEqual, "连衣裙")
		})

		convey.Convey("可售库存跨尺码求和", func() {
			product, _ := repository.FindOne(catalog.EntityProduct, query.Condition{"itemNumber": "A"})
			convey.So(product["sellableInventory"], convey.ShouldEqual, 2.0)
		})

		convey.Convey("断码尺码为在售零库存尺码的数值有序列表", func() {
			product, _ := repository.FindOne(catalog.EntityProduct, query.Condition{"itemNumber": "A"})
			convey.So(product["isOutOfStock"], convey.ShouldEqual, "110/120")
		})

		convey.Convey("全部尺码有库存时断码字段为空", func() {
			convey.So(repository.Save(catalog.EntityRegularProduct, []entity.Row{
				{"productCode": "P110", "itemNumber": "A", "size": "110", "status": "online", "sellableInventory": 1.0},
			}), convey.ShouldBeNil)
			_, err := service.FromRegular()
			convey.So(err, convey.ShouldBeNil)
			product, _ := repository.FindOne(catalog.EntityProduct, query.Condition{"itemNumber": "A"})
			convey.So(entity.IsEmpty(product["isOutOfStock"]), convey.ShouldBeTrue)
		})

		convey.Convey("非下架产品清空下架原因", func() {
			product, _ := repository.FindOne(catalog.EntityProduct, query.Condition{"itemNumber": "A"})
			convey.So(entity.IsEmpty(product["offlineReason"]), convey.ShouldBeTrue)
		})
	})
}

func TestFromInventory(t *testing.T) {
	convey.Convey("库存归集", t, func() {
		service, repository := newTestService()
		seedSystemRecord(repository, time.Hour)

		product := entity.Row{"itemNumber": "A"}
		product.SetRowNumber(2)
		convey.So(repository.Save(catalog.EntityProduct, []entity.Row{product}), convey.ShouldBeNil)
		convey.So(repository.Save(catalog.EntityRegularProduct, []entity.Row{
			{"productCode": "P1", "itemNumber": "A"},
		}), convey.ShouldBeNil)

		convey.Convey("正装库存进成品桶，组合装按单套数量拆进通货桶", func() {
			convey.So(repository.Save(catalog.EntityInventory, []entity.Row{
				{"productCode": "P1", "main": 10.0},
				{"productCode": "P2", "main": 20.0},
			}), convey.ShouldBeNil)
			convey.So(repository.Save(catalog.EntityComboProduct, []entity.Row{
				{"comboCode": "P1", "childCode": "P2", "childQuantity": 2.0},
			}), convey.ShouldBeNil)

			_, err := service.FromInventory()
			convey.So(err, convey.ShouldBeNil)

			got, _ := repository.FindOne(catalog.EntityProduct, query.Condition{"itemNumber": "A"})
			convey.So(got["finishedGoodsMain"], convey.ShouldEqual, 10.0)
			convey.So(got["generalGoodsMain"], convey.ShouldEqual, 10.0)
			convey.So(got["totalInventory"], convey.ShouldEqual, 20.0)
		})

		convey.Convey("保留前缀的子商品跳过", func() {
			convey.So(repository.Save(catalog.EntityInventory, []entity.Row{
				{"productCode": "P1", "main": 10.0},
				{"productCode": "YH123", "main": 20.0},
			}), convey.ShouldBeNil)
			convey.So(repository.Save(catalog.EntityComboProduct, []entity.Row{
				{"comboCode": "P1", "childCode": "YH123", "childQuantity": 2.0},
			}), convey.ShouldBeNil)

			_, err := service.FromInventory()
			convey.So(err, convey.ShouldBeNil)

			got, _ := repository.FindOne(catalog.EntityProduct, query.Condition{"itemNumber": "A"})
			convey.So(got["generalGoodsMain"], convey.ShouldEqual, 0.0)
			convey.So(got["totalInventory"], convey.ShouldEqual, 10.0)
		})

		convey.Convey("归集前清零所有仓位桶", func() {
			stale := entity.Row{"itemNumber": "A", "finishedGoodsEast": 99.0}
			stale.SetRowNumber(2)
			convey.So(repository.Save(catalog.EntityProduct, []entity.Row{stale}), convey.ShouldBeNil)
			convey.So(repository.Save(catalog.EntityInventory, nil), convey.ShouldBeNil)
			convey.So(repository.Save(catalog.EntityComboProduct, nil), convey.ShouldBeNil)

			_, err := service.FromInventory()
			convey.So(err, convey.ShouldBeNil)

			got, _ := repository.FindOne(catalog.EntityProduct, query.Condition{"itemNumber": "A"})
			convey.So(got["finishedGoodsEast"], convey.ShouldEqual, 0.0)
		})
	})
}

func TestFromPriceAndSales(t *testing.T) {
	convey.Convey("价格与销售归集", t, func() {
		service, repository := newTestService()
		seedSystemRecord(repository, time.Hour)

		product := entity.Row{"itemNumber": "A", "tagPrice": 100.0}
		product.SetRowNumber(2)
		convey.So(repository.Save(catalog.EntityProduct, []entity.Row{product}), convey.ShouldBeNil)

		convey.Convey("价格逐字段覆盖并统计变化", func() {
			convey.So(repository.Save(catalog.EntityProductPrice, []entity.Row{
				{"itemNumber": "A", "tagPrice": 199.0, "retailPrice": 159.0},
			}), convey.ShouldBeNil)

			summary, err := service.FromPrice()
			convey.So(err, convey.ShouldBeNil)
			convey.So(summary.PriceChanged, convey.ShouldEqual, 1)

			got, _ := repository.FindOne(catalog.EntityProduct, query.Condition{"itemNumber": "A"})
			convey.So(got["tagPrice"], convey.ShouldEqual, 199.0)
			convey.So(got["retailPrice"], convey.ShouldEqual, 159.0)

			convey.Convey("再次归集无变化", func() {
				summary, err := service.FromPrice()
				convey.So(err, convey.ShouldBeNil)
				convey.So(summary.PriceChanged, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("销售窗口为近 7 天不含今天", func() {
			convey.So(repository.Save(catalog.EntityProductSales, []entity.Row{
				{"itemNumber": "A", "date": "2024-06-02", "qty": 3.0, "amount": 30.0, "impressions": 100.0, "clicks": 10.0},
				{"itemNumber": "A", "date": "2024-06-08", "qty": 4.0, "amount": 60.0, "impressions": 100.0, "clicks": 30.0},
				{"itemNumber": "A", "date": "2024-06-09", "qty": 100.0, "amount": 999.0},
				{"itemNumber": "A", "date": "2024-06-01", "qty": 50.0, "amount": 500.0},
			}), convey.ShouldBeNil)

			_, err := service.FromSales()
			convey.So(err, convey.ShouldBeNil)

			got, _ := repository.FindOne(catalog.EntityProduct, query.Condition{"itemNumber": "A"})
			convey.So(got["last7Qty"], convey.ShouldEqual, 7.0)
			convey.So(got["last7Amount"], convey.ShouldEqual, 90.0)
			convey.So(got["last7UnitPrice"], convey.ShouldAlmostEqual, 90.0/7.0, 1e-9)
			convey.So(got["last7ClickRate"], convey.ShouldEqual, 0.2)

			convey.Convey("零分母的比率为未定义", func() {
				convey.So(entity.IsEmpty(got["last7CartRate"]), convey.ShouldBeTrue)
			})
		})
	})
}

func TestUpdateAll(t *testing.T) {
	convey.Convey("全量归集", t, func() {
		service, repository := newTestService()
		seedSystemRecord(repository, time.Hour)

		convey.So(repository.Save(catalog.EntityRegularProduct, []entity.Row{
			{"productCode": "P1", "itemNumber": "A", "status": "online", "sellableInventory": 2.0},
		}), convey.ShouldBeNil)
		convey.So(repository.Save(catalog.EntityProductPrice, []entity.Row{
			{"itemNumber": "A", "tagPrice": 199.0},
		}), convey.ShouldBeNil)
		convey.So(repository.Save(catalog.EntityInventory, []entity.Row{
			{"productCode": "P1", "main": 10.0},
		}), convey.ShouldBeNil)
		convey.So(repository.Save(catalog.EntityComboProduct, nil), convey.ShouldBeNil)
		convey.So(repository.Save(catalog.EntityProductSales, []entity.Row{
			{"itemNumber": "A", "date": "2024-06-08", "qty": 4.0, "amount": 60.0},
		}), convey.ShouldBeNil)

		summary, err := service.UpdateAll()
		convey.So(err, convey.ShouldBeNil)
		convey.So(summary.NewProducts, convey.ShouldEqual, 1)
		convey.So(summary.Errors, convey.ShouldBeEmpty)

		got, _ := repository.FindOne(catalog.EntityProduct, query.Condition{"itemNumber": "A"})
		convey.So(got["tagPrice"], convey.ShouldEqual, 199.0)
		convey.So(got["finishedGoodsMain"], convey.ShouldEqual, 10.0)
		convey.So(got["last7Qty"], convey.ShouldEqual, 4.0)

		convey.Convey("更新时间已记录", func() {
			records, _ := repository.FindAll(catalog.EntitySystemRecord)
			stamp := testNow.Format(entity.TimestampLayout)
			convey.So(records[0]["regularUpdateDate"], convey.ShouldEqual, stamp)
			convey.So(records[0]["salesUpdateDate"], convey.ShouldEqual, stamp)
		})

		convey.Convey("单阶段失败不阻断后续阶段", func() {
			// 把销售表导入时间戳改旧，其余保持新鲜
			records, _ := repository.FindAll(catalog.EntitySystemRecord)
			update := records[0].Clone()
			update["salesImportDate"] = testNow.Add(-20 * time.Hour).Format(entity.TimestampLayout)
			convey.So(repository.Save(catalog.EntitySystemRecord, []entity.Row{update}), convey.ShouldBeNil)

			summary, err := service.UpdateAll()
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(len(summary.Errors), convey.ShouldEqual, 1)
			convey.So(summary.Errors[0], convey.ShouldContainSubstring, "stage [sales]")

			// 其余阶段照常写入
			got, _ := repository.FindOne(catalog.EntityProduct, query.Condition{"itemNumber": "A"})
			convey.So(got["tagPrice"], convey.ShouldEqual, 199.0)
		})
	})
}
