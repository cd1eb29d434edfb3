package importer

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

func TestIdentify(t *testing.T) {
	convey.Convey("按表头识别实体", t, func() {
		registry, err := catalog.NewRegistry()
		convey.So(err, convey.ShouldBeNil)
		entities := registry.Entities()

		convey.Convey("识别标题齐全时命中", func() {
			ent := Identify(entities, []string{"商品编码", "货号", "尺码", "品牌"})
			convey.So(ent, convey.ShouldNotBeNil)
			convey.So(ent.Name, convey.ShouldEqual, catalog.EntityRegularProduct)
		})

		convey.Convey("多个候选取识别集合最大的", func() {
			// 同时覆盖价格表（2 列）和销售表（3 列）的识别标题
			ent := Identify(entities, []string{"货号", "吊牌价", "日期", "销量"})
			convey.So(ent, convey.ShouldNotBeNil)
			convey.So(ent.Name, convey.ShouldEqual, catalog.EntityProductSales)
		})

		convey.Convey("无候选返回 nil", func() {
			convey.So(Identify(entities, []string{"未知列"}), convey.ShouldBeNil)
		})
	})
}

func newImportService(modes map[string]Mode) (*Service, *repo.Repository, table.Store) {
	registry, err := catalog.NewRegistry()
	if err != nil {
		panic(err)
	}
	store := table.NewMemStore()
	repository, err := repo.NewRepositoryWithOptions(&repo.RepositoryOptions{
		Store:    store,
		Registry: registry,
	})
	if err != nil {
		panic(err)
	}
	service, err := NewServiceWithOptions(repository, store, &ServiceOptions{
		StagingTable: catalog.WorksheetStaging,
		Entities: []string{
			catalog.EntityRegularProduct,
			catalog.EntityProductPrice,
			catalog.EntityProductSales,
		},
		Modes:              modes,
		SystemRecordEntity: catalog.EntitySystemRecord,
	})
	if err != nil {
		panic(err)
	}
	service.SetClock(func() time.Time {
		return time.Date(2024, 6, 9, 10, 0, 0, 0, time.Local)
	})
	return service, repository, store
}

func TestImportModes(t *testing.T) {
	convey.Convey("导入模式配置", t, func() {
		service, _, _ := newImportService(map[string]Mode{catalog.EntityProductSales: ModeAppend})
		convey.So(service.CanImport(catalog.EntityProductSales), convey.ShouldBeTrue)
		convey.So(service.CanImport(catalog.EntityInventory), convey.ShouldBeFalse)
		convey.So(service.ImportMode(catalog.EntityProductSales), convey.ShouldEqual, ModeAppend)
		convey.So(service.ImportMode(catalog.EntityProductPrice), convey.ShouldEqual, ModeOverwrite)
	})
}

func TestExecuteOverwrite(t *testing.T) {
	convey.Convey("整表覆盖导入", t, func() {
		service, repository, store := newImportService(nil)

		convey.So(repository.Save(catalog.EntityProductPrice, []entity.Row{
			{"itemNumber": "OLD", "tagPrice": 100.0},
		}), convey.ShouldBeNil)

		staging := [][]any{
			{"货号", "吊牌价", "零售价"},
			{"A", 199.0, 159.0},
			{"B", 299.0, 259.0},
		}
		convey.So(store.WriteTable(catalog.WorksheetStaging, staging), convey.ShouldBeNil)

		result, err := service.Execute()
		convey.So(err, convey.ShouldBeNil)
		convey.So(result.Entity, convey.ShouldEqual, catalog.EntityProductPrice)
		convey.So(result.Mode, convey.ShouldEqual, ModeOverwrite)
		convey.So(result.Total, convey.ShouldEqual, 2)

		rows, _ := repository.FindAll(catalog.EntityProductPrice)
		convey.So(len(rows), convey.ShouldEqual, 2)
		row, _ := repository.FindOne(catalog.EntityProductPrice, query.Condition{"itemNumber": "A"})
		convey.So(row["tagPrice"], convey.ShouldEqual, 199.0)

		convey.Convey("暂存表已清空", func() {
			_, err := store.ReadTable(catalog.WorksheetStaging)
			convey.So(errors.Is(err, table.ErrTableNotFound), convey.ShouldBeTrue)
		})

		convey.Convey("导入时间已记录", func() {
			records, _ := repository.FindAll(catalog.EntitySystemRecord)
			convey.So(len(records), convey.ShouldEqual, 1)
			convey.So(records[0]["priceImportDate"], convey.ShouldEqual, "2024-06-09 10:00:00")
		})
	})
}

func TestExecuteAppend(t *testing.T) {
	convey.Convey("按唯一键增量合并导入", t, func() {
		service, repository, store := newImportService(map[string]Mode{catalog.EntityProductSales: ModeAppend})

		convey.So(repository.Save(catalog.EntityProductSales, []entity.Row{
			{"itemNumber": "A", "date": "2024-06-01", "qty": 3.0},
			{"itemNumber": "A", "date": "2024-06-02", "qty": 4.0},
		}), convey.ShouldBeNil)

		staging := [][]any{
			{"货号", "日期", "销量"},
			{"A", "2024-06-02", 5.0},
			{"B", "2024-06-02", 1.0},
		}
		convey.So(store.WriteTable(catalog.WorksheetStaging, staging), convey.ShouldBeNil)

		result, err := service.Execute()
		convey.So(err, convey.ShouldBeNil)
		convey.So(result.Mode, convey.ShouldEqual, ModeAppend)
		convey.So(result.New, convey.ShouldEqual, 1)
		convey.So(result.Updated, convey.ShouldEqual, 1)

		rows, _ := repository.FindAll(catalog.EntityProductSales)
		convey.So(len(rows), convey.ShouldEqual, 3)

		updated, _ := repository.FindOne(catalog.EntityProductSales, query.Condition{
			"itemNumber": "A", "date": "2024-06-02",
		})
		convey.So(updated["qty"], convey.ShouldEqual, 5.0)

		added, _ := repository.FindOne(catalog.EntityProductSales, query.Condition{
			"itemNumber": "B", "date": "2024-06-02",
		})
		convey.So(added["qty"], convey.ShouldEqual, 1.0)
	})
}

func TestExecuteFailures(t *testing.T) {
	convey.Convey("导入失败路径", t, func() {
		service, repository, store := newImportService(map[string]Mode{catalog.EntityProductSales: ModeAppend})

		convey.Convey("表头无法识别时列出候选", func() {
			convey.So(store.WriteTable(catalog.WorksheetStaging, [][]any{
				{"未知列1", "未知列2"},
				{"x", "y"},
			}), convey.ShouldBeNil)

			_, err := service.Execute()
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "unrecognized staging headers")
			convey.So(err.Error(), convey.ShouldContainSubstring, catalog.WorksheetProductSales)
		})

		convey.Convey("暂存表为空时失败", func() {
			_, err := service.Execute()
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("校验失败时目标实体与暂存表都保持原状", func() {
			convey.So(repository.Save(catalog.EntityProductSales, []entity.Row{
				{"itemNumber": "A", "date": "2024-06-01", "qty": 3.0},
			}), convey.ShouldBeNil)

			convey.So(store.WriteTable(catalog.WorksheetStaging, [][]any{
				{"货号", "日期", "销量"},
				{"B", "2024-06-02", -5.0},
			}), convey.ShouldBeNil)

			_, err := service.Execute()
			convey.So(err, convey.ShouldNotBeNil)

			rows, _ := repository.FindAll(catalog.EntityProductSales)
			convey.So(len(rows), convey.ShouldEqual, 1)

			// 失败后暂存表保留，修正后可重试
			data, err := store.ReadTable(catalog.WorksheetStaging)
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(data), convey.ShouldEqual, 2)
		})
	})
}
