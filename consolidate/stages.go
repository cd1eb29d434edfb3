package consolidate

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hatlonely/skux/catalog"
	"github.com/hatlonely/skux/entity"
)

// 正装表里随货号走的描述字段
var descriptorFields = []string{
	"brand", "category", "productName", "year", "season",
	"status", "offlineReason", "listingDate",
}

// 价格表里逐字段覆盖的价格字段
var priceFields = []string{"tagPrice", "retailPrice", "promoPrice", "costPrice"}

// applyRegular 正装归集：描述字段取第一条正装行，可售库存跨尺码求和，
// 断码尺码为在售且零库存的尺码列表；未见过的货号插入新品。
func (s *Service) applyRegular(products []entity.Row, summary *Summary) ([]entity.Row, error) {
	regulars, err := s.repository.FindAll(catalog.EntityRegularProduct)
	if err != nil {
		return nil, err
	}

	byItem := make(map[string][]entity.Row)
	itemOrder := make([]string, 0)
	for _, row := range regulars {
		item := entity.AsString(row["itemNumber"])
		if item == "" {
			continue
		}
		if _, ok := byItem[item]; !ok {
			itemOrder = append(itemOrder, item)
		}
		byItem[item] = append(byItem[item], row)
	}

	seen := make(map[string]bool, len(products))
	next := 1
	for _, product := range products {
		seen[entity.AsString(product["itemNumber"])] = true
		if n := product.RowNumber(); n >= next {
			next = n + 1
		}
	}

	for _, product := range products {
		group := byItem[entity.AsString(product["itemNumber"])]
		if len(group) == 0 {
			continue
		}
		mergeRegularGroup(product, group)
	}

	for _, item := range itemOrder {
		if seen[item] {
			continue
		}
		product := entity.Row{
			"itemNumber":           item,
			"marketingPositioning": catalog.PositioningProfit,
		}
		product.SetRowNumber(next)
		next++
		mergeRegularGroup(product, byItem[item])
		products = append(products, product)
		summary.NewProducts++
	}
	return products, nil
}

func mergeRegularGroup(product entity.Row, group []entity.Row) {
	first := group[0]
	for _, field := range descriptorFields {
		if v, ok := first[field]; ok {
			product[field] = v
		} else {
			delete(product, field)
		}
	}

	sellable := 0.0
	var zeroStockSizes []string
	for _, row := range group {
		stock, _ := entity.AsNumber(row["sellableInventory"])
		sellable += stock
		if entity.AsString(row["status"]) == catalog.StatusOnline && stock == 0 {
			if size := entity.AsString(row["size"]); size != "" {
				zeroStockSizes = append(zeroStockSizes, size)
			}
		}
	}
	product["sellableInventory"] = sellable

	sortSizes(zeroStockSizes)
	if len(zeroStockSizes) > 0 {
		product["isOutOfStock"] = strings.Join(zeroStockSizes, "/")
	} else {
		delete(product, "isOutOfStock")
	}

	if entity.AsString(product["status"]) != catalog.StatusOffline {
		delete(product, "offlineReason")
	}
}

// sortSizes 数值尺码按大小排序，其余按字典序
func sortSizes(sizes []string) {
	sort.SliceStable(sizes, func(i, j int) bool {
		a, errA := strconv.ParseFloat(sizes[i], 64)
		b, errB := strconv.ParseFloat(sizes[j], 64)
		if errA == nil && errB == nil {
			return a < b
		}
		return sizes[i] < sizes[j]
	})
}

// applyPrice 价格归集：按货号逐字段覆盖价格，统计发生变化的产品数
func (s *Service) applyPrice(products []entity.Row, summary *Summary) ([]entity.Row, error) {
	prices, err := s.repository.FindAll(catalog.EntityProductPrice)
	if err != nil {
		return nil, err
	}

	byItem := make(map[string]entity.Row, len(prices))
	for _, row := range prices {
		item := entity.AsString(row["itemNumber"])
		if _, ok := byItem[item]; !ok {
			byItem[item] = row
		}
	}

	for _, product := range products {
		price, ok := byItem[entity.AsString(product["itemNumber"])]
		if !ok {
			continue
		}
		changed := false
		for _, field := range priceFields {
			v, has := price[field]
			old, hadOld := product[field]
			if has {
				if !hadOld || entity.AsString(old) != entity.AsString(v) {
					changed = true
				}
				product[field] = v
			} else if hadOld {
				changed = true
				delete(product, field)
			}
		}
		if changed {
			summary.PriceChanged++
		}
	}
	return products, nil
}

// applyInventory 库存归集：清零全部仓位桶后重新累加。
// 正装编码的库存进成品桶；组合装子商品按 子商品库存/单套数量 进通货桶，
// 保留前缀（赠品、福利装）的子商品跳过。
func (s *Service) applyInventory(products []entity.Row, summary *Summary) ([]entity.Row, error) {
	regulars, err := s.repository.FindAll(catalog.EntityRegularProduct)
	if err != nil {
		return nil, err
	}
	inventories, err := s.repository.FindAll(catalog.EntityInventory)
	if err != nil {
		return nil, err
	}
	combos, err := s.repository.FindAll(catalog.EntityComboProduct)
	if err != nil {
		return nil, err
	}

	regularsByItem := make(map[string][]entity.Row)
	for _, row := range regulars {
		item := entity.AsString(row["itemNumber"])
		regularsByItem[item] = append(regularsByItem[item], row)
	}
	inventoryByCode := make(map[string]entity.Row, len(inventories))
	for _, row := range inventories {
		code := entity.AsString(row["productCode"])
		if _, ok := inventoryByCode[code]; !ok {
			inventoryByCode[code] = row
		}
	}
	combosByCode := make(map[string][]entity.Row)
	for _, row := range combos {
		code := entity.AsString(row["comboCode"])
		combosByCode[code] = append(combosByCode[code], row)
	}

	for _, product := range products {
		for _, bucket := range catalog.StockingBuckets {
			product[catalog.FinishedGoodsField(bucket)] = 0.0
			product[catalog.GeneralGoodsField(bucket)] = 0.0
		}

		for _, regular := range regularsByItem[entity.AsString(product["itemNumber"])] {
			code := entity.AsString(regular["productCode"])

			if inv, ok := inventoryByCode[code]; ok {
				addBuckets(product, catalog.FinishedGoodsField, inv, 1)
			}

			for _, child := range combosByCode[code] {
				childCode := entity.AsString(child["childCode"])
				if hasReservedPrefix(childCode) {
					continue
				}
				qty, ok := entity.AsNumber(child["childQuantity"])
				if !ok || qty <= 0 {
					continue
				}
				if inv, ok := inventoryByCode[childCode]; ok {
					addBuckets(product, catalog.GeneralGoodsField, inv, qty)
				}
			}
		}
	}
	return products, nil
}

func addBuckets(product entity.Row, field func(string) string, inv entity.Row, divisor float64) {
	for _, bucket := range catalog.StockingBuckets {
		n, ok := entity.AsNumber(inv[bucket])
		if !ok {
			continue
		}
		current, _ := entity.AsNumber(product[field(bucket)])
		product[field(bucket)] = current + n/divisor
	}
}

func hasReservedPrefix(code string) bool {
	for _, prefix := range catalog.ReservedChildPrefixes {
		if strings.HasPrefix(code, prefix) {
			return true
		}
	}
	return false
}

// salesTotals 近 7 天窗口内的累计指标
type salesTotals struct {
	qty, amount, impressions, clicks, visitors, cartAdds, buyers, returns float64
}

// applySales 销售归集：窗口为 [今天-7, 昨天]，
// 各比率在分母为零时置为未定义。
func (s *Service) applySales(products []entity.Row, summary *Summary) ([]entity.Row, error) {
	sales, err := s.repository.FindAll(catalog.EntityProductSales)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := today.AddDate(0, 0, -7)

	totals := make(map[string]*salesTotals)
	for _, row := range sales {
		date, ok := entity.ParseDate(row["date"])
		if !ok || date.Before(from) || !date.Before(today) {
			continue
		}
		item := entity.AsString(row["itemNumber"])
		agg := totals[item]
		if agg == nil {
			agg = &salesTotals{}
			totals[item] = agg
		}
		agg.qty += numberOf(row, "qty")
		agg.amount += numberOf(row, "amount")
		agg.impressions += numberOf(row, "impressions")
		agg.clicks += numberOf(row, "clicks")
		agg.visitors += numberOf(row, "visitors")
		agg.cartAdds += numberOf(row, "cartAdds")
		agg.buyers += numberOf(row, "buyers")
		agg.returns += numberOf(row, "returns")
	}

	for _, product := range products {
		agg := totals[entity.AsString(product["itemNumber"])]
		if agg == nil {
			agg = &salesTotals{}
		}
		product["last7Qty"] = agg.qty
		product["last7Amount"] = agg.amount
		setRate(product, "last7UnitPrice", agg.amount, agg.qty)
		setRate(product, "last7ClickRate", agg.clicks, agg.impressions)
		setRate(product, "last7CartRate", agg.cartAdds, agg.visitors)
		setRate(product, "last7PurchaseRate", agg.buyers, agg.visitors)
		setRate(product, "last7ReturnRate", agg.returns, agg.qty)
	}
	return products, nil
}

func numberOf(row entity.Row, field string) float64 {
	n, _ := entity.AsNumber(row[field])
	return n
}

func setRate(row entity.Row, field string, numerator, denominator float64) {
	if denominator == 0 {
		delete(row, field)
		return
	}
	row[field] = numerator / denominator
}
