package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hatlonely/skux/catalog"
	"github.com/hatlonely/skux/consolidate"
	"github.com/hatlonely/skux/importer"
	"github.com/hatlonely/skux/log"
	"github.com/hatlonely/skux/report"
)

// withApp 加载配置、组装运行时并保证资源释放
func withApp(run func(a *app) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return run(a)
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "从暂存表执行一次导入",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			result, err := a.importer.Execute()
			if err != nil {
				return err
			}
			fmt.Println(result.Message)
			return nil
		})
	},
}

var consolidateStage string

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "执行产品总表归集",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			summary, err := runConsolidation(a.service, consolidateStage)
			if err != nil {
				return err
			}
			fmt.Printf("归集完成：新增产品 %d，价格变化 %d\n", summary.NewProducts, summary.PriceChanged)
			return nil
		})
	},
}

func runConsolidation(service *consolidate.Service, stage string) (*consolidate.Summary, error) {
	switch stage {
	case "":
		return service.UpdateAll()
	case "regular":
		return service.FromRegular()
	case "price":
		return service.FromPrice()
	case "inventory":
		return service.FromInventory()
	case "sales":
		return service.FromSales()
	}
	return nil, errors.Errorf("unknown stage [%s], expect regular, price, inventory or sales", stage)
}

var reportPromotion bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "生成报表或活动提报产物",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			writer, err := report.NewStoreSheetWriter(a.store)
			if err != nil {
				return err
			}

			if reportPromotion {
				submission, err := report.NewPromotionSubmissionWithOptions(a.repository, a.service, &report.PromotionSubmissionOptions{
					Worksheet:        a.cfg.Promotion.Worksheet,
					SkipUnprofitable: a.cfg.Promotion.SkipUnprofitable,
				})
				if err != nil {
					return err
				}
				return submission.Write(writer)
			}

			today := time.Now()
			planner, err := report.NewPlannerWithOptions(a.repository, catalog.NewStatsCatalog(today), &report.PlannerOptions{
				Entity:      catalog.EntityProduct,
				Columns:     a.cfg.Report.Columns,
				StatsFields: a.cfg.Report.StatsFields,
			})
			if err != nil {
				return err
			}
			return planner.Write(a.cfg.Report.Worksheet, today, writer)
		})
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "监听暂存文件变化并自动导入",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			if a.cfg.Staging.File == "" {
				return errors.New("staging.file is required for watch mode")
			}
			trigger, err := importer.NewStagingTriggerWithOptions(&importer.StagingTriggerOptions{
				FilePath: a.cfg.Staging.File,
			})
			if err != nil {
				return err
			}
			defer trigger.Close()

			err = trigger.OnChange(func() error {
				result, err := a.importer.Execute()
				if err != nil {
					return err
				}
				log.Default().Info("staging imported", "message", result.Message)
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Printf("watching %s, press Ctrl-C to stop\n", a.cfg.Staging.File)
			ch := make(chan os.Signal, 1)
			signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
			<-ch
			return nil
		})
	},
}

func init() {
	consolidateCmd.Flags().StringVar(&consolidateStage, "stage", "",
		"只执行单个阶段："+strings.Join([]string{"regular", "price", "inventory", "sales"}, ", "))
	reportCmd.Flags().BoolVar(&reportPromotion, "promotion", false, "生成活动提报产物")
}
