package entity

import (
	"time"
)

// BrandRate 品牌费率参数
type BrandRate struct {
	// Commission 平台佣金率
	Commission float64 `yaml:"commission"`
	// FreightCost 单件运费
	FreightCost float64 `yaml:"freightCost"`
	// LossRate 退换货损耗率
	LossRate float64 `yaml:"lossRate"`
}

// ProfitCalculator 利润计算器，按品牌费率计算单件利润
type ProfitCalculator interface {
	Profit(row Row, rate *BrandRate) (float64, bool)
}

// SalesTotalFunc 周期销售聚合：统计某货号在 [from, to] 内指定指标的总和
type SalesTotalFunc func(item string, from, to time.Time, metric string) float64

// Context 计算字段的全局上下文。
// 由仓库注入，计算过程中只读，禁止在 Compute 中修改。
type Context struct {
	// Today 当前日期。计算函数禁止自行读取系统时钟，统一从这里取
	Today time.Time
	// BrandRates 品牌费率表，键为品牌名
	BrandRates map[string]BrandRate
	// Profit 利润计算器，可选
	Profit ProfitCalculator
	// SalesTotal 周期销售聚合，供统计字段使用，可选
	SalesTotal SalesTotalFunc
}

// BrandRate 查询品牌费率，未配置时返回 nil
func (c *Context) BrandRate(brand string) *BrandRate {
	if c == nil || c.BrandRates == nil {
		return nil
	}
	if rate, ok := c.BrandRates[brand]; ok {
		return &rate
	}
	return nil
}
