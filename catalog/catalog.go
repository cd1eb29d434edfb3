// Package catalog 声明零售 SKU 系统的全部实体：
// 规范化的产品总表、四张来源表、组合装关系和系统记录表。
package catalog

import (
	"github.com/hatlonely/skux/entity"
)

// 实体名
const (
	EntityProduct        = "Product"
	EntityRegularProduct = "RegularProduct"
	EntityProductPrice   = "ProductPrice"
	EntityInventory      = "Inventory"
	EntityComboProduct   = "ComboProduct"
	EntityProductSales   = "ProductSales"
	EntitySystemRecord   = "SystemRecord"
)

// 逻辑表名
const (
	WorksheetProduct        = "产品表"
	WorksheetRegularProduct = "正装产品表"
	WorksheetProductPrice   = "价格表"
	WorksheetInventory      = "库存表"
	WorksheetComboProduct   = "组合装表"
	WorksheetProductSales   = "销售表"
	WorksheetSystemRecord   = "系统记录表"
	WorksheetStaging        = "导入表"
)

// 产品状态
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// 营销定位
const (
	PositioningProfit  = "profit-style"
	PositioningTraffic = "traffic-style"
)

// 组合装子商品编码的保留前缀，库存归集时跳过
var ReservedChildPrefixes = []string{"YH", "FL"}

// 库存仓位桶，成品与通货各一组
var StockingBuckets = []string{"main", "east", "south", "transit", "factory", "returns", "defects"}

// NewRegistry 组装全部实体的注册表
func NewRegistry() (*entity.Registry, error) {
	return entity.NewRegistry(
		NewProductEntity(),
		NewRegularProductEntity(),
		NewProductPriceEntity(),
		NewInventoryEntity(),
		NewComboProductEntity(),
		NewProductSalesEntity(),
		NewSystemRecordEntity(),
	)
}
