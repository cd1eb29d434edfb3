package report

import (
	"github.com/pkg/errors"

	"github.com/hatlonely/skux/catalog"
	"github.com/hatlonely/skux/entity"
	"github.com/hatlonely/skux/log"
	"github.com/hatlonely/skux/repo"
)

// FreshnessChecker 提报前的数据新鲜度检查
type FreshnessChecker interface {
	CheckPromotionFreshness() error
}

type PromotionSubmissionOptions struct {
	// Worksheet 提报产物的逻辑表名
	Worksheet string
	// SkipUnprofitable 跳过利润为负的产品
	SkipUnprofitable bool
}

// PromotionSubmission 活动提报产物：在售且报了活动价的产品清单，
// 附带按品牌费率算出的单件利润。
type PromotionSubmission struct {
	options *PromotionSubmissionOptions

	repository *repo.Repository
	checker    FreshnessChecker
	logger     log.Logger
}

func NewPromotionSubmissionWithOptions(repository *repo.Repository, checker FreshnessChecker, options *PromotionSubmissionOptions) (*PromotionSubmission, error) {
	if repository == nil {
		return nil, errors.New("repository is nil")
	}
	if options == nil {
		options = &PromotionSubmissionOptions{}
	}
	if options.Worksheet == "" {
		options.Worksheet = "活动提报表"
	}

	return &PromotionSubmission{
		options:    options,
		repository: repository,
		checker:    checker,
		logger:     log.Default().WithGroup("promotionSubmission"),
	}, nil
}

var promotionColumns = []struct {
	field string
	title string
}{
	{"itemNumber", "货号"},
	{"productName", "品名"},
	{"tagPrice", "吊牌价"},
	{"retailPrice", "零售价"},
	{"promoPrice", "活动价"},
	{"profit", "单件利润"},
	{"profitRate", "利润率"},
}

// Build 生成提报行。先做收紧的新鲜度检查，
// 只收录在售且报了活动价的产品。
func (p *PromotionSubmission) Build() (*Report, error) {
	if p.checker != nil {
		if err := p.checker.CheckPromotionFreshness(); err != nil {
			return nil, errors.WithMessage(err, "promotion submission rejected")
		}
	}

	products, err := p.repository.FindAll(catalog.EntityProduct)
	if err != nil {
		return nil, err
	}

	header := make([]any, 0, len(promotionColumns))
	for _, col := range promotionColumns {
		header = append(header, col.title)
	}

	rows := make([][]any, 0, len(products))
	for _, product := range products {
		if entity.AsString(product["status"]) != catalog.StatusOnline {
			continue
		}
		if entity.IsEmpty(product["promoPrice"]) {
			continue
		}
		if p.options.SkipUnprofitable {
			if profit, ok := entity.AsNumber(product["profit"]); ok && profit < 0 {
				continue
			}
		}
		line := make([]any, 0, len(promotionColumns))
		for _, col := range promotionColumns {
			v := product[col.field]
			if entity.IsEmpty(v) {
				line = append(line, "")
				continue
			}
			if n, ok := entity.AsNumber(v); ok {
				line = append(line, n)
			} else {
				line = append(line, entity.AsString(v))
			}
		}
		rows = append(rows, line)
	}
	return &Report{Header: header, Rows: rows}, nil
}

// Write 生成并输出提报产物
func (p *PromotionSubmission) Write(writer SheetWriter) error {
	built, err := p.Build()
	if err != nil {
		return err
	}
	if err := writer.WriteSheet(p.options.Worksheet, built.Header, built.Rows); err != nil {
		return err
	}
	p.logger.Info("promotion submission written", "sheet", p.options.Worksheet, "rows", len(built.Rows))
	return nil
}
