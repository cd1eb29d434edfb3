package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/hatlonely/skux/catalog"
	"github.com/hatlonely/skux/log"
)

// Config skux 的全量配置，从 YAML 文件加载
type Config struct {
	Store struct {
		// Type 存储后端：mem, csv, bolt, sqlite
		Type string `mapstructure:"type"`
		// Dir csv 后端的工作簿目录
		Dir string `mapstructure:"dir"`
		// DBPath bolt / sqlite 后端的数据库文件
		DBPath string `mapstructure:"dbPath"`
		// Codec bolt 后端的序列化格式
		Codec string `mapstructure:"codec"`
		// Observable 是否包一层观测装饰器
		Observable bool `mapstructure:"observable"`
	} `mapstructure:"store"`

	Log log.SLogOptions `mapstructure:"log"`

	Staging struct {
		// Table 暂存表的逻辑表名
		Table string `mapstructure:"table"`
		// File watch 模式监听的文件路径
		File string `mapstructure:"file"`
	} `mapstructure:"staging"`

	// BrandRateFile 品牌费率 YAML 文件
	BrandRateFile string `mapstructure:"brandRateFile"`

	Import struct {
		// Entities 可导入的实体集合
		Entities []string `mapstructure:"entities"`
		// Modes 实体名 → 导入模式
		Modes map[string]string `mapstructure:"modes"`
	} `mapstructure:"import"`

	Report struct {
		Worksheet   string   `mapstructure:"worksheet"`
		Columns     []string `mapstructure:"columns"`
		StatsFields []string `mapstructure:"statsFields"`
	} `mapstructure:"report"`

	Promotion struct {
		Worksheet        string `mapstructure:"worksheet"`
		SkipUnprofitable bool   `mapstructure:"skipUnprofitable"`
	} `mapstructure:"promotion"`
}

// loadConfig 读配置文件并填默认值。文件缺失时使用纯默认配置。
func loadConfig() (*Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("skux")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if cfg.Store.Type == "" {
		cfg.Store.Type = "csv"
	}
	if cfg.Store.Dir == "" {
		cfg.Store.Dir = "data"
	}
	if cfg.Staging.Table == "" {
		cfg.Staging.Table = catalog.WorksheetStaging
	}
	if len(cfg.Import.Entities) == 0 {
		cfg.Import.Entities = []string{
			catalog.EntityRegularProduct,
			catalog.EntityProductPrice,
			catalog.EntityInventory,
			catalog.EntityComboProduct,
			catalog.EntityProductSales,
		}
	}
	if len(cfg.Import.Modes) == 0 {
		cfg.Import.Modes = map[string]string{
			catalog.EntityProductSales: "append",
		}
	}
	if cfg.Report.Worksheet == "" {
		cfg.Report.Worksheet = "销售报表"
	}
	if len(cfg.Report.Columns) == 0 {
		cfg.Report.Columns = []string{
			"itemNumber", "brand", "category", "productName", "status",
			"sellableInventory", "totalInventory", "last7Qty", "profit", "profitRate",
		}
	}
	if len(cfg.Report.StatsFields) == 0 {
		cfg.Report.StatsFields = []string{"averageDailyQty", "recent14Qty"}
	}
	return cfg, nil
}
