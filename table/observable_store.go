package table

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hatlonely/skux/log"
)

type ObservableStoreOptions struct {
	// EnableMetrics 是否启用指标收集
	EnableMetrics bool `cfg:"enableMetrics"`

	// EnableLogging 是否启用日志记录
	EnableLogging bool `cfg:"enableLogging"`

	// EnableTracing 是否启用分布式追踪
	EnableTracing bool `cfg:"enableTracing"`

	// Name 组件名称标识，用于所有观测维度
	Name string `cfg:"name"`

	// Registerer 指标注册器，默认使用全局注册器
	Registerer prometheus.Registerer
}

// ObservableMetrics 封装 prometheus 指标
type ObservableMetrics struct {
	operationCounter  *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
}

// NewObservableMetrics 创建并注册指标收集器
func NewObservableMetrics(name string, registerer prometheus.Registerer) *ObservableMetrics {
	metrics := &ObservableMetrics{
		operationCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: name + "_operations_total",
				Help: "Total number of table store operations",
			},
			[]string{"operation", "table", "status"},
		),
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    name + "_operation_duration_seconds",
				Help:    "Duration of table store operations in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"operation", "table"},
		),
	}

	registerer.MustRegister(
		metrics.operationCounter,
		metrics.operationDuration,
	)

	return metrics
}

// ObservableStore 装饰器，为任何 Store 添加观测能力
type ObservableStore struct {
	store Store

	logger        log.Logger
	metrics       *ObservableMetrics
	tracer        trace.Tracer
	name          string
	enableMetrics bool
	enableLogging bool
	enableTracing bool
}

func NewObservableStoreWithOptions(store Store, options *ObservableStoreOptions) (*ObservableStore, error) {
	if store == nil {
		return nil, errors.New("store is nil")
	}
	if options == nil {
		options = &ObservableStoreOptions{}
	}
	if options.Name == "" {
		options.Name = "table_store"
	}

	obs := &ObservableStore{
		store:         store,
		name:          options.Name,
		enableMetrics: options.EnableMetrics,
		enableLogging: options.EnableLogging,
		enableTracing: options.EnableTracing,
	}

	if options.EnableLogging {
		obs.logger = log.Default().WithGroup("observableStore").With("component", options.Name)
	}

	if options.EnableMetrics {
		registerer := options.Registerer
		if registerer == nil {
			registerer = prometheus.DefaultRegisterer
		}
		obs.metrics = NewObservableMetrics(options.Name, registerer)
	}

	if options.EnableTracing {
		obs.tracer = otel.Tracer(fmt.Sprintf("table.%s", options.Name))
	}

	return obs, nil
}

// observeOperation 统一的操作观测逻辑
func (obs *ObservableStore) observeOperation(operation string, table string, fn func() error) error {
	start := time.Now()
	ctx := context.Background()

	var span trace.Span
	if obs.enableTracing && obs.tracer != nil {
		ctx, span = obs.tracer.Start(ctx, fmt.Sprintf("table.%s", operation),
			trace.WithAttributes(
				attribute.String("component", obs.name),
				attribute.String("operation", operation),
				attribute.String("table", table),
			),
		)
		defer span.End()
	}

	err := fn()
	duration := time.Since(start)

	if obs.enableTracing && span != nil {
		span.SetAttributes(attribute.Int64("duration_ms", duration.Milliseconds()))
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			span.RecordError(err)
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}

	if obs.enableMetrics && obs.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		obs.metrics.operationCounter.WithLabelValues(operation, table, status).Inc()
		obs.metrics.operationDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	}

	if obs.enableLogging && obs.logger != nil {
		if err != nil {
			obs.logger.ErrorContext(ctx, "table operation failed",
				"operation", operation,
				"table", table,
				"duration_ms", duration.Milliseconds(),
				"error", err.Error(),
			)
		} else {
			obs.logger.DebugContext(ctx, "table operation completed",
				"operation", operation,
				"table", table,
				"duration_ms", duration.Milliseconds(),
			)
		}
	}

	return err
}

func (obs *ObservableStore) ReadTable(name string) ([][]any, error) {
	var result [][]any
	err := obs.observeOperation("read", name, func() error {
		var readErr error
		result, readErr = obs.store.ReadTable(name)
		return readErr
	})
	return result, err
}

func (obs *ObservableStore) WriteTable(name string, data [][]any) error {
	return obs.observeOperation("write", name, func() error {
		return obs.store.WriteTable(name, data)
	})
}

func (obs *ObservableStore) ClearTable(name string) error {
	return obs.observeOperation("clear", name, func() error {
		return obs.store.ClearTable(name)
	})
}

func (obs *ObservableStore) CopyTable(name string, target string) error {
	return obs.observeOperation("copy", name, func() error {
		return obs.store.CopyTable(name, target)
	})
}
