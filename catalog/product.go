package catalog

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/hatlonely/skux/entity"
)

// 仓位桶的中文标题
var bucketTitles = map[string]string{
	"main":    "主仓",
	"east":    "东仓",
	"south":   "南仓",
	"transit": "在途",
	"factory": "工厂仓",
	"returns": "退货仓",
	"defects": "次品仓",
}

// FinishedGoodsField 成品仓位桶的字段名
func FinishedGoodsField(bucket string) string {
	return "finishedGoods" + capitalize(bucket)
}

// GeneralGoodsField 通货仓位桶的字段名
func GeneralGoodsField(bucket string) string {
	return "generalGoods" + capitalize(bucket)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// NewProductEntity 产品总表：系统的规范化 SKU 视图
func NewProductEntity() *entity.Entity {
	fields := []*entity.FieldSpec{
		{Name: "itemNumber", Title: "货号", Type: entity.FieldTypeString, Validators: []entity.Validator{entity.Required()}},
		{Name: "brand", Title: "品牌", Type: entity.FieldTypeString},
		{Name: "category", Title: "品类", Type: entity.FieldTypeString},
		{Name: "productName", Title: "品名", Type: entity.FieldTypeString},
		{Name: "year", Title: "年份", Type: entity.FieldTypeString},
		{Name: "season", Title: "季节", Type: entity.FieldTypeString},
		{Name: "status", Title: "状态", Type: entity.FieldTypeString, Validators: []entity.Validator{entity.Enum(StatusOnline, StatusOffline)}},
		{Name: "offlineReason", Title: "下架原因", Type: entity.FieldTypeString},
		{Name: "marketingPositioning", Title: "营销定位", Type: entity.FieldTypeString, Default: PositioningProfit},
		{Name: "listingDate", Title: "上市日期", Type: entity.FieldTypeDate, Validators: []entity.Validator{entity.Date()}},
		{Name: "sellableInventory", Title: "可售库存", Type: entity.FieldTypeNumber, Validators: []entity.Validator{entity.NonNegative()}},
		{Name: "isOutOfStock", Title: "断码尺码", Type: entity.FieldTypeString},
		{Name: "tagPrice", Title: "吊牌价", Type: entity.FieldTypeNumber, Validators: []entity.Validator{entity.NonNegative()}},
		{Name: "retailPrice", Title: "零售价", Type: entity.FieldTypeNumber, Validators: []entity.Validator{entity.NonNegative()}},
		{Name: "promoPrice", Title: "活动价", Type: entity.FieldTypeNumber, Validators: []entity.Validator{entity.NonNegative()}},
		{Name: "costPrice", Title: "成本价", Type: entity.FieldTypeNumber, Validators: []entity.Validator{entity.NonNegative()}},
	}

	// 14 个仓位桶：成品 7 个 + 通货 7 个
	for _, bucket := range StockingBuckets {
		fields = append(fields, &entity.FieldSpec{
			Name:  FinishedGoodsField(bucket),
			Title: bucketTitles[bucket] + "成品",
			Type:  entity.FieldTypeNumber,
		})
	}
	for _, bucket := range StockingBuckets {
		fields = append(fields, &entity.FieldSpec{
			Name:  GeneralGoodsField(bucket),
			Title: bucketTitles[bucket] + "通货",
			Type:  entity.FieldTypeNumber,
		})
	}

	fields = append(fields,
		&entity.FieldSpec{Name: "last7Qty", Title: "近7天销量", Type: entity.FieldTypeNumber},
		&entity.FieldSpec{Name: "last7Amount", Title: "近7天销售额", Type: entity.FieldTypeNumber},
		&entity.FieldSpec{Name: "last7UnitPrice", Title: "近7天客单价", Type: entity.FieldTypeNumber},
		&entity.FieldSpec{Name: "last7ClickRate", Title: "近7天点击率", Type: entity.FieldTypeNumber},
		&entity.FieldSpec{Name: "last7CartRate", Title: "近7天加购率", Type: entity.FieldTypeNumber},
		&entity.FieldSpec{Name: "last7PurchaseRate", Title: "近7天转化率", Type: entity.FieldTypeNumber},
		&entity.FieldSpec{Name: "last7ReturnRate", Title: "近7天退款率", Type: entity.FieldTypeNumber},

		// 计算字段，不持久化
		&entity.FieldSpec{Name: "productLink", Title: "商品链接", Type: entity.FieldTypeComputed, Compute: computeProductLink},
		&entity.FieldSpec{Name: "salesAgeDays", Title: "上架天数", Type: entity.FieldTypeComputed, Compute: computeSalesAgeDays},
		&entity.FieldSpec{Name: "finishedGoodsTotal", Title: "成品库存", Type: entity.FieldTypeComputed, Compute: computeFinishedGoodsTotal},
		&entity.FieldSpec{Name: "generalGoodsTotal", Title: "通货库存", Type: entity.FieldTypeComputed, Compute: computeGeneralGoodsTotal},
		&entity.FieldSpec{Name: "totalInventory", Title: "总库存", Type: entity.FieldTypeComputed, Compute: computeTotalInventory},
		&entity.FieldSpec{Name: "profit", Title: "单件利润", Type: entity.FieldTypeComputed, Compute: computeProfit},
		&entity.FieldSpec{Name: "profitRate", Title: "利润率", Type: entity.FieldTypeComputed, Compute: computeProfitRate},
	)

	return &entity.Entity{
		Name:           EntityProduct,
		Worksheet:      WorksheetProduct,
		Fields:         fields,
		RequiredFields: []string{"itemNumber", "productName"},
		UniqueKey:      "itemNumber",
		DefaultSort:    []entity.SortKey{{Field: "brand"}, {Field: "itemNumber"}},
		Indexes: []entity.IndexDefinition{
			{Fields: []string{"brand", "status"}},
		},
	}
}

func computeProductLink(row entity.Row, ctx *entity.Context) any {
	item := entity.AsString(row["itemNumber"])
	if item == "" {
		return nil
	}
	return fmt.Sprintf("https://search.example.com/item?keyword=%s", url.QueryEscape(item))
}

func computeSalesAgeDays(row entity.Row, ctx *entity.Context) any {
	if ctx == nil || ctx.Today.IsZero() {
		return nil
	}
	listed, ok := entity.ParseDate(row["listingDate"])
	if !ok {
		return nil
	}
	days := int(ctx.Today.Sub(listed).Hours() / 24)
	if days < 0 {
		return nil
	}
	return float64(days)
}

func sumBuckets(row entity.Row, field func(string) string) float64 {
	total := 0.0
	for _, bucket := range StockingBuckets {
		if n, ok := entity.AsNumber(row[field(bucket)]); ok {
			total += n
		}
	}
	return total
}

func computeFinishedGoodsTotal(row entity.Row, ctx *entity.Context) any {
	return sumBuckets(row, FinishedGoodsField)
}

func computeGeneralGoodsTotal(row entity.Row, ctx *entity.Context) any {
	return sumBuckets(row, GeneralGoodsField)
}

func computeTotalInventory(row entity.Row, ctx *entity.Context) any {
	return sumBuckets(row, FinishedGoodsField) + sumBuckets(row, GeneralGoodsField)
}

func computeProfit(row entity.Row, ctx *entity.Context) any {
	if ctx == nil || ctx.Profit == nil {
		return nil
	}
	rate := ctx.BrandRate(entity.AsString(row["brand"]))
	profit, ok := ctx.Profit.Profit(row, rate)
	if !ok {
		return nil
	}
	return profit
}

func computeProfitRate(row entity.Row, ctx *entity.Context) any {
	profit, ok := computeProfit(row, ctx).(float64)
	if !ok {
		return nil
	}
	price, ok := entity.AsNumber(row["promoPrice"])
	if !ok || price == 0 {
		return nil
	}
	return profit / price
}
