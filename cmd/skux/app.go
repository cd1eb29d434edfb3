package main

import (
	"time"

	"github.com/pkg/errors"

	"github.com/hatlonely/skux/catalog"
	"github.com/hatlonely/skux/consolidate"
	"github.com/hatlonely/skux/entity"
	"github.com/hatlonely/skux/importer"
	"github.com/hatlonely/skux/log"
	"github.com/hatlonely/skux/repo"
	"github.com/hatlonely/skux/table"
)

// app 按配置组装的运行时：存储、仓库与各服务
type app struct {
	cfg *Config

	store      table.Store
	repository *repo.Repository
	importer   *importer.Service
	service    *consolidate.Service

	closers []func() error
}

func newApp(cfg *Config) (*app, error) {
	logger, err := log.NewLoggerWithOptions(&cfg.Log)
	if err != nil {
		return nil, err
	}
	log.SetDefault(logger)

	a := &app{cfg: cfg}
	if err := a.initStore(); err != nil {
		return nil, err
	}

	registry, err := catalog.NewRegistry()
	if err != nil {
		return nil, err
	}
	a.repository, err = repo.NewRepositoryWithOptions(&repo.RepositoryOptions{
		Store:    a.store,
		Registry: registry,
	})
	if err != nil {
		return nil, err
	}
	a.repository.SetContext(a.buildContext())

	modes := make(map[string]importer.Mode, len(cfg.Import.Modes))
	for name, mode := range cfg.Import.Modes {
		modes[name] = importer.Mode(mode)
	}
	a.importer, err = importer.NewServiceWithOptions(a.repository, a.store, &importer.ServiceOptions{
		StagingTable:       cfg.Staging.Table,
		Entities:           cfg.Import.Entities,
		Modes:              modes,
		SystemRecordEntity: catalog.EntitySystemRecord,
	})
	if err != nil {
		return nil, err
	}

	a.service, err = consolidate.NewServiceWithOptions(a.repository, nil)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) initStore() error {
	var store table.Store
	switch a.cfg.Store.Type {
	case "mem":
		store = table.NewMemStore()
	case "csv":
		s, err := table.NewCSVStoreWithOptions(&table.CSVStoreOptions{Dir: a.cfg.Store.Dir})
		if err != nil {
			return err
		}
		store = s
	case "bolt":
		s, err := table.NewBoltStoreWithOptions(&table.BoltStoreOptions{
			DBPath: a.cfg.Store.DBPath,
			Codec:  a.cfg.Store.Codec,
		})
		if err != nil {
			return err
		}
		a.closers = append(a.closers, s.Close)
		store = s
	case "sqlite":
		s, err := table.NewSQLiteStoreWithOptions(&table.SQLiteStoreOptions{DBPath: a.cfg.Store.DBPath})
		if err != nil {
			return err
		}
		a.closers = append(a.closers, s.Close)
		store = s
	default:
		return errors.Errorf("unknown store type [%s]", a.cfg.Store.Type)
	}

	if a.cfg.Store.Observable {
		observable, err := table.NewObservableStoreWithOptions(store, &table.ObservableStoreOptions{
			EnableMetrics: true,
			EnableLogging: true,
			Name:          "skux",
		})
		if err != nil {
			return err
		}
		store = observable
	}
	a.store = store
	return nil
}

// buildContext 组装计算上下文，来源数据缺失时降级为空数据
func (a *app) buildContext() *entity.Context {
	var rates map[string]entity.BrandRate
	if a.cfg.BrandRateFile != "" {
		loaded, err := catalog.LoadBrandRates(a.cfg.BrandRateFile)
		if err != nil {
			log.Default().Warn("failed to load brand rates", "error", err)
		} else {
			rates = loaded
		}
	}

	var salesRows []entity.Row
	if rows, err := a.repository.FindAll(catalog.EntityProductSales); err == nil {
		salesRows = rows
	}
	return catalog.NewContext(time.Now(), rates, salesRows)
}

func (a *app) Close() error {
	var firstErr error
	for _, closer := range a.closers {
		if err := closer(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
