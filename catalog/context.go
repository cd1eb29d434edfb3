package catalog

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/hatlonely/skux/entity"
)

// brandRateFile 品牌费率配置文件结构
type brandRateFile struct {
	Brands map[string]entity.BrandRate `yaml:"brands"`
}

// LoadBrandRates 从 YAML 文件加载品牌费率表
func LoadBrandRates(path string) (map[string]entity.BrandRate, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read brand rate file [%s]", path)
	}
	var file brandRateFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, errors.Wrapf(err, "failed to parse brand rate file [%s]", path)
	}
	return file.Brands, nil
}

// PromoProfitCalculator 活动价利润计算器。
// 单件利润 = 活动价 ×（1 - 佣金率 - 损耗率）- 成本价 - 运费。
type PromoProfitCalculator struct{}

func (c *PromoProfitCalculator) Profit(row entity.Row, rate *entity.BrandRate) (float64, bool) {
	promo, ok := entity.AsNumber(row["promoPrice"])
	if !ok {
		return 0, false
	}
	cost, ok := entity.AsNumber(row["costPrice"])
	if !ok {
		return 0, false
	}
	var commission, freight, loss float64
	if rate != nil {
		commission = rate.Commission
		freight = rate.FreightCost
		loss = rate.LossRate
	}
	return promo*(1-commission-loss) - cost - freight, true
}

// NewContext 组装计算上下文。
// salesRows 为销售表全量数据，用于周期销售聚合。
func NewContext(today time.Time, brandRates map[string]entity.BrandRate, salesRows []entity.Row) *entity.Context {
	// 按货号分组，聚合时避免整表扫描
	byItem := make(map[string][]entity.Row)
	for _, row := range salesRows {
		item := entity.AsString(row["itemNumber"])
		if item == "" {
			continue
		}
		byItem[item] = append(byItem[item], row)
	}

	return &entity.Context{
		Today:      time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC),
		BrandRates: brandRates,
		Profit:     &PromoProfitCalculator{},
		SalesTotal: func(item string, from, to time.Time, metric string) float64 {
			total := 0.0
			for _, row := range byItem[item] {
				date, ok := entity.ParseDate(row["date"])
				if !ok || date.Before(from) || date.After(to) {
					continue
				}
				if n, ok := entity.AsNumber(row[metric]); ok {
					total += n
				}
			}
			return total
		},
	}
}
