// Package consolidate 实现产品总表的四段归集：
// 正装 → 价格 → 库存+组合装 → 销售，依次把来源表的事实写回产品总表。
package consolidate

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hatlonely/skux/catalog"
	"github.com/hatlonely/skux/entity"
	"github.com/hatlonely/skux/log"
	"github.com/hatlonely/skux/repo"
	"github.com/hatlonely/skux/table"
)

var ErrStale = errors.New("source table is stale")

type ServiceOptions struct {
	// FreshnessThreshold 来源表导入时间的最大年龄
	FreshnessThreshold time.Duration
	// PromotionRegularThreshold 活动提报时正装表的最大年龄
	PromotionRegularThreshold time.Duration
}

// Service 归集服务，串起来源表与产品总表
type Service struct {
	options *ServiceOptions

	repository *repo.Repository
	logger     log.Logger
	now        func() time.Time
}

func NewServiceWithOptions(repository *repo.Repository, options *ServiceOptions) (*Service, error) {
	if repository == nil {
		return nil, errors.New("repository is nil")
	}
	if options == nil {
		options = &ServiceOptions{}
	}
	if options.FreshnessThreshold <= 0 {
		options.FreshnessThreshold = 12 * time.Hour
	}
	if options.PromotionRegularThreshold <= 0 {
		options.PromotionRegularThreshold = 5 * time.Hour
	}

	return &Service{
		options:    options,
		repository: repository,
		logger:     log.Default().WithGroup("consolidate"),
		now:        time.Now,
	}, nil
}

// SetClock 注入时钟，仅测试使用
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Summary 一次归集的结果统计
type Summary struct {
	NewProducts  int
	PriceChanged int
	Errors       []string
}

// stage 单个归集阶段。apply 在工作副本上就地变换，可能追加新行。
type stage struct {
	name        string
	importField string
	updateField string
	apply       func(products []entity.Row, summary *Summary) ([]entity.Row, error)
}

func (s *Service) stages() []stage {
	return []stage{
		{"regular", "regularImportDate", "regularUpdateDate", s.applyRegular},
		{"price", "priceImportDate", "priceUpdateDate", s.applyPrice},
		{"inventory", "inventoryImportDate", "inventoryUpdateDate", s.applyInventory},
		{"sales", "salesImportDate", "salesUpdateDate", s.applySales},
	}
}

// UpdateAll 按固定顺序执行四个阶段。单阶段失败只记录错误，
// 后续阶段继续执行；产品表在最后一次尝试之后统一写入一次。
func (s *Service) UpdateAll() (*Summary, error) {
	products, err := s.workingProducts()
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	var succeeded []string
	for _, st := range s.stages() {
		if err := s.checkFreshness(st.importField, s.options.FreshnessThreshold); err != nil {
			summary.Errors = append(summary.Errors, errors.WithMessagef(err, "stage [%s]", st.name).Error())
			continue
		}
		next, err := st.apply(products, summary)
		if err != nil {
			summary.Errors = append(summary.Errors, errors.WithMessagef(err, "stage [%s]", st.name).Error())
			continue
		}
		products = next
		succeeded = append(succeeded, st.updateField)
	}

	if err := s.repository.Save(catalog.EntityProduct, products); err != nil {
		return summary, err
	}
	for _, field := range succeeded {
		if err := s.stampUpdateDate(field); err != nil {
			return summary, err
		}
	}

	s.logger.Info("consolidation finished",
		"new", summary.NewProducts, "priceChanged", summary.PriceChanged, "errors", len(summary.Errors))
	if len(summary.Errors) > 0 {
		return summary, errors.Errorf("consolidation finished with errors:\n%s", strings.Join(summary.Errors, "\n"))
	}
	return summary, nil
}

// FromRegular 单独执行正装归集并落表
func (s *Service) FromRegular() (*Summary, error) {
	return s.runStage(s.stages()[0])
}

// FromPrice 单独执行价格归集并落表
func (s *Service) FromPrice() (*Summary, error) {
	return s.runStage(s.stages()[1])
}

// FromInventory 单独执行库存归集并落表
func (s *Service) FromInventory() (*Summary, error) {
	return s.runStage(s.stages()[2])
}

// FromSales 单独执行销售归集并落表
func (s *Service) FromSales() (*Summary, error) {
	return s.runStage(s.stages()[3])
}

func (s *Service) runStage(st stage) (*Summary, error) {
	if err := s.checkFreshness(st.importField, s.options.FreshnessThreshold); err != nil {
		return nil, errors.WithMessagef(err, "stage [%s]", st.name)
	}
	products, err := s.workingProducts()
	if err != nil {
		return nil, err
	}
	summary := &Summary{}
	products, err = st.apply(products, summary)
	if err != nil {
		return nil, errors.WithMessagef(err, "stage [%s]", st.name)
	}
	if err := s.repository.Save(catalog.EntityProduct, products); err != nil {
		return nil, err
	}
	if err := s.stampUpdateDate(st.updateField); err != nil {
		return nil, err
	}
	return summary, nil
}

// CheckPromotionFreshness 活动提报前的收紧检查：
// 正装表 5 小时内导入，库存表当天导入。
func (s *Service) CheckPromotionFreshness() error {
	if err := s.checkFreshness("regularImportDate", s.options.PromotionRegularThreshold); err != nil {
		return err
	}
	stamp, err := s.importStamp("inventoryImportDate")
	if err != nil {
		return err
	}
	now := s.now()
	if stamp.Year() != now.Year() || stamp.YearDay() != now.YearDay() {
		return errors.WithMessagef(ErrStale,
			"[inventoryImportDate] imported at %s, promotion submission requires a same-day import",
			stamp.Format(entity.TimestampLayout))
	}
	return nil
}

// workingProducts 读产品表并克隆为可变工作副本，首次归集时按空表处理
func (s *Service) workingProducts() ([]entity.Row, error) {
	cached, err := s.repository.FindAll(catalog.EntityProduct)
	if err != nil {
		if !errors.Is(err, table.ErrTableNotFound) {
			return nil, err
		}
		cached = nil
	}
	products := make([]entity.Row, 0, len(cached))
	for _, row := range cached {
		products = append(products, row.Clone())
	}
	return products, nil
}

func (s *Service) checkFreshness(field string, threshold time.Duration) error {
	stamp, err := s.importStamp(field)
	if err != nil {
		return err
	}
	if age := s.now().Sub(stamp); age > threshold {
		return errors.WithMessagef(ErrStale, "[%s] imported at %s, age %s exceeds threshold %s",
			field, stamp.Format(entity.TimestampLayout), age.Truncate(time.Minute), threshold)
	}
	return nil
}

// importStamp 读系统记录表里的导入时间戳
func (s *Service) importStamp(field string) (time.Time, error) {
	records, err := s.repository.FindAll(catalog.EntitySystemRecord)
	if err != nil {
		if !errors.Is(err, table.ErrTableNotFound) {
			return time.Time{}, err
		}
		records = nil
	}
	if len(records) == 0 {
		return time.Time{}, errors.WithMessagef(ErrStale, "[%s] has never been imported", field)
	}
	raw := entity.AsString(records[0][field])
	if raw == "" {
		return time.Time{}, errors.WithMessagef(ErrStale, "[%s] has never been imported", field)
	}
	stamp, err := time.ParseInLocation(entity.TimestampLayout, raw, time.Local)
	if err != nil {
		if t, ok := entity.ParseDate(raw); ok {
			return t, nil
		}
		return time.Time{}, errors.Wrapf(err, "invalid timestamp in system record field [%s]", field)
	}
	return stamp, nil
}

func (s *Service) stampUpdateDate(field string) error {
	if field == "" {
		return nil
	}
	stamp := s.now().Format(entity.TimestampLayout)
	records, err := s.repository.FindAll(catalog.EntitySystemRecord)
	if err != nil {
		if !errors.Is(err, table.ErrTableNotFound) {
			return err
		}
		records = nil
	}
	if len(records) == 0 {
		row := entity.Row{field: stamp}
		row.SetRowNumber(2)
		return s.repository.Save(catalog.EntitySystemRecord, []entity.Row{row})
	}
	update := records[0].Clone()
	update[field] = stamp
	all := append([]entity.Row{}, records...)
	all[0] = update
	return s.repository.Save(catalog.EntitySystemRecord, all)
}
