package catalog

import (
	"github.com/hatlonely/skux/entity"
)

// NewRegularProductEntity 正装产品表：货号 × 尺码 的 SKU 明细
func NewRegularProductEntity() *entity.Entity {
	return &entity.Entity{
		Name:      EntityRegularProduct,
		Worksheet: WorksheetRegularProduct,
		Fields: []*entity.FieldSpec{
			{Name: "productCode", Title: "商品编码", Type: entity.FieldTypeString, Validators: []entity.Validator{entity.Required()}},
			{Name: "itemNumber", Title: "货号", Type: entity.FieldTypeString, Validators: []entity.Validator{entity.Required()}},
			{Name: "size", Title: "尺码", Type: entity.FieldTypeString},
			{Name: "brand", Title: "品牌", Type: entity.FieldTypeString},
			{Name: "category", Title: "品类", Type: entity.FieldTypeString},
			{Name: "productName", Title: "品名", Type: entity.FieldTypeString},
			{Name: "year", Title: "年份", Type: entity.FieldTypeString},
			{Name: "season", Title: "季节", Type: entity.FieldTypeString},
			{Name: "status", Title: "状态", Type: entity.FieldTypeString, Validators: []entity.Validator{entity.Enum(StatusOnline, StatusOffline)}},
			{Name: "offlineReason", Title: "下架原因", Type: entity.FieldTypeString},
			{Name: "listingDate", Title: "上市日期", Type: entity.FieldTypeDate, Validators: []entity.Validator{entity.Date()}},
			{Name: "sellableInventory", Title: "可售库存", Type: entity.FieldTypeNumber, Validators: []entity.Validator{entity.NonNegative()}},
		},
		RequiredFields:  []string{"productCode", "itemNumber", "size"},
		UniqueKey:       "productCode",
		DefaultSort:     []entity.SortKey{{Field: "itemNumber"}, {Field: "size"}},
		Indexes:         []entity.IndexDefinition{{Fields: []string{"itemNumber"}}},
		ImportDateField: "regularImportDate",
	}
}

// NewProductPriceEntity 价格表
func NewProductPriceEntity() *entity.Entity {
	return &entity.Entity{
		Name:      EntityProductPrice,
		Worksheet: WorksheetProductPrice,
		Fields: []*entity.FieldSpec{
			{Name: "itemNumber", Title: "货号", Type: entity.FieldTypeString, Validators: []entity.Validator{entity.Required()}},
			{Name: "tagPrice", Title: "吊牌价", Type: entity.FieldTypeNumber, Validators: []entity.Validator{entity.Positive()}},
			{Name: "retailPrice", Title: "零售价", Type: entity.FieldTypeNumber, Validators: []entity.Validator{entity.NonNegative()}},
			{Name: "promoPrice", Title: "活动价", Type: entity.FieldTypeNumber, Validators: []entity.Validator{entity.NonNegative()}},
			{Name: "costPrice", Title: "成本价", Type: entity.FieldTypeNumber, Validators: []entity.Validator{entity.NonNegative()}},
		},
		RequiredFields:  []string{"itemNumber", "tagPrice"},
		UniqueKey:       "itemNumber",
		DefaultSort:     []entity.SortKey{{Field: "itemNumber"}},
		ImportDateField: "priceImportDate",
	}
}

// NewInventoryEntity 库存表：商品编码 × 各仓位的实物库存
func NewInventoryEntity() *entity.Entity {
	fields := []*entity.FieldSpec{
		{Name: "productCode", Title: "商品编码", Type: entity.FieldTypeString, Validators: []entity.Validator{entity.Required()}},
	}
	for _, bucket := range StockingBuckets {
		fields = append(fields, &entity.FieldSpec{
			Name:       bucket,
			Title:      bucketTitles[bucket],
			Type:       entity.FieldTypeNumber,
			Validators: []entity.Validator{entity.NonNegative()},
		})
	}
	return &entity.Entity{
		Name:            EntityInventory,
		Worksheet:       WorksheetInventory,
		Fields:          fields,
		RequiredFields:  []string{"productCode", "main"},
		UniqueKey:       "productCode",
		DefaultSort:     []entity.SortKey{{Field: "productCode"}},
		ImportDateField: "inventoryImportDate",
	}
}

// NewComboProductEntity 组合装表：父商品编码与子商品的拆分关系
func NewComboProductEntity() *entity.Entity {
	return &entity.Entity{
		Name:      EntityComboProduct,
		Worksheet: WorksheetComboProduct,
		Fields: []*entity.FieldSpec{
			{Name: "comboCode", Title: "组合编码", Type: entity.FieldTypeString, Validators: []entity.Validator{entity.Required()}},
			{Name: "childCode", Title: "子商品编码", Type: entity.FieldTypeString, Validators: []entity.Validator{entity.Required()}},
			{Name: "childQuantity", Title: "单套数量", Type: entity.FieldTypeNumber, Validators: []entity.Validator{entity.Positive()}},
		},
		RequiredFields:  []string{"comboCode", "childCode", "childQuantity"},
		UniqueKey:       "comboCode,childCode",
		DefaultSort:     []entity.SortKey{{Field: "comboCode"}, {Field: "childCode"}},
		Indexes:         []entity.IndexDefinition{{Fields: []string{"comboCode"}}},
		ImportDateField: "comboImportDate",
	}
}

// NewProductSalesEntity 销售表：货号 × 日期 的逐日销售指标
func NewProductSalesEntity() *entity.Entity {
	return &entity.Entity{
		Name:      EntityProductSales,
		Worksheet: WorksheetProductSales,
		Fields: []*entity.FieldSpec{
			{Name: "itemNumber", Title: "货号", Type: entity.FieldTypeString, Validators: []entity.Validator{entity.Required()}},
			{Name: "date", Title: "日期", Type: entity.FieldTypeDate, Validators: []entity.Validator{entity.Required(), entity.Date()}},
			{Name: "qty", Title: "销量", Type: entity.FieldTypeNumber, Validators: []entity.Validator{entity.NonNegative()}},
			{Name: "amount", Title: "销售额", Type: entity.FieldTypeNumber, Validators: []entity.Validator{entity.NonNegative()}},
			{Name: "impressions", Title: "曝光量", Type: entity.FieldTypeNumber, Validators: []entity.Validator{entity.NonNegative()}},
			{Name: "clicks", Title: "点击量", Type: entity.FieldTypeNumber, Validators: []entity.Validator{entity.NonNegative()}},
			{Name: "visitors", Title: "访客数", Type: entity.FieldTypeNumber, Validators: []entity.Validator{entity.NonNegative()}},
			{Name: "cartAdds", Title: "加购件数", Type: entity.FieldTypeNumber, Validators: []entity.Validator{entity.NonNegative()}},
			{Name: "buyers", Title: "成交人数", Type: entity.FieldTypeNumber, Validators: []entity.Validator{entity.NonNegative()}},
			{Name: "returns", Title: "退款件数", Type: entity.FieldTypeNumber, Validators: []entity.Validator{entity.NonNegative()}},
		},
		RequiredFields:  []string{"itemNumber", "date", "qty"},
		UniqueKey:       "itemNumber,date",
		DefaultSort:     []entity.SortKey{{Field: "itemNumber"}, {Field: "date"}},
		Indexes:         []entity.IndexDefinition{{Fields: []string{"itemNumber"}}},
		ImportDateField: "salesImportDate",
	}
}

// NewSystemRecordEntity 系统记录表：单行的导入/更新时间戳
func NewSystemRecordEntity() *entity.Entity {
	return &entity.Entity{
		Name:      EntitySystemRecord,
		Worksheet: WorksheetSystemRecord,
		Fields: []*entity.FieldSpec{
			{Name: "regularImportDate", Title: "正装导入时间", Type: entity.FieldTypeString},
			{Name: "priceImportDate", Title: "价格导入时间", Type: entity.FieldTypeString},
			{Name: "inventoryImportDate", Title: "库存导入时间", Type: entity.FieldTypeString},
			{Name: "comboImportDate", Title: "组合装导入时间", Type: entity.FieldTypeString},
			{Name: "salesImportDate", Title: "销售导入时间", Type: entity.FieldTypeString},
			{Name: "regularUpdateDate", Title: "正装更新时间", Type: entity.FieldTypeString},
			{Name: "priceUpdateDate", Title: "价格更新时间", Type: entity.FieldTypeString},
			{Name: "inventoryUpdateDate", Title: "库存更新时间", Type: entity.FieldTypeString},
			{Name: "salesUpdateDate", Title: "销售更新时间", Type: entity.FieldTypeString},
		},
		RequiredFields: []string{"regularImportDate"},
	}
}
