package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hatlonely/skux/catalog"
)

func TestLoadConfigDefaults(t *testing.T) {
	configFile = filepath.Join(t.TempDir(), "missing.yaml")
	defer func() { configFile = "" }()

	// 指定的文件不存在时直接报错
	_, err := loadConfig()
	assert.Error(t, err)

	// 不指定文件时使用纯默认配置
	configFile = ""
	cfg, err := loadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "csv", cfg.Store.Type)
	assert.Equal(t, "data", cfg.Store.Dir)
	assert.Equal(t, catalog.WorksheetStaging, cfg.Staging.Table)
	assert.Len(t, cfg.Import.Entities, 5)
	assert.Equal(t, "append", cfg.Import.Modes[catalog.EntityProductSales])
	assert.Equal(t, "销售报表", cfg.Report.Worksheet)
	assert.NotEmpty(t, cfg.Report.Columns)
	assert.Equal(t, []string{"averageDailyQty", "recent14Qty"}, cfg.Report.StatsFields)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skux.yaml")
	content := `
store:
  type: bolt
  dbPath: /tmp/skux.db
  codec: msgpack
  observable: true
staging:
  table: 导入暂存
  file: /tmp/staging.csv
brandRateFile: /tmp/rates.yaml
import:
  entities:
    - RegularProduct
    - ProductSales
  modes:
    RegularProduct: overwrite
report:
  worksheet: 周报
  columns:
    - itemNumber
promotion:
  worksheet: 提报
  skipUnprofitable: true
`
	assert.NoError(t, os.WriteFile(path, []byte(content), 0644))

	configFile = path
	defer func() { configFile = "" }()

	cfg, err := loadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "bolt", cfg.Store.Type)
	assert.Equal(t, "/tmp/skux.db", cfg.Store.DBPath)
	assert.Equal(t, "msgpack", cfg.Store.Codec)
	assert.True(t, cfg.Store.Observable)
	assert.Equal(t, "导入暂存", cfg.Staging.Table)
	assert.Equal(t, "/tmp/staging.csv", cfg.Staging.File)
	assert.Equal(t, "/tmp/rates.yaml", cfg.BrandRateFile)
	assert.Equal(t, []string{"RegularProduct", "ProductSales"}, cfg.Import.Entities)
	assert.Equal(t, "overwrite", cfg.Import.Modes["RegularProduct"])
	assert.Equal(t, "周报", cfg.Report.Worksheet)
	assert.Equal(t, []string{"itemNumber"}, cfg.Report.Columns)
	assert.Equal(t, "提报", cfg.Promotion.Worksheet)
	assert.True(t, cfg.Promotion.SkipUnprofitable)
}
