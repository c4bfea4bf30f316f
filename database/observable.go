package database

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

	"github.com/hatlonely/metax/log"
)

type ObservableOptions struct {
	// Logger 日志配置
	Logger *log.SLogOptions `cfg:"logger"`

	// EnableMetrics 是否启用指标收集
	EnableMetrics bool `cfg:"enableMetrics" def:"true"`

	// EnableLogging 是否启用日志记录
	EnableLogging bool `cfg:"enableLogging" def:"true"`

	// EnableTracing 是否启用分布式追踪
	EnableTracing bool `cfg:"enableTracing" def:"false"`

	// Name 组件名称标识，用于所有观测维度
	Name string `cfg:"name" def:"database"`
}

// ObservableMetrics 封装 prometheus 指标
type ObservableMetrics struct {
	operationCounter  *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	activeOperations  *prometheus.GaugeVec
}

// NewObservableMetrics 创建并注册指标收集器
func NewObservableMetrics(name string) *ObservableMetrics {
	metrics := &ObservableMetrics{
		operationCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: name + "_operations_total",
				Help: "Total number of database operations",
			},
			[]string{"operation", "status"},
		),
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    name + "_operation_duration_seconds",
				Help:    "Duration of database operations in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"operation"},
		),
		activeOperations: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: name + "_active_operations",
				Help: "Number of active database operations",
			},
			[]string{"operation"},
		),
	}

	prometheus.MustRegister(
		metrics.operationCounter,
		metrics.operationDuration,
		metrics.activeOperations,
	)

	return metrics
}

// Observable 装饰器，为任何 Database 添加观测能力
type Observable struct {
	db Database

	logger        log.Logger
	metrics       *ObservableMetrics
	tracer        trace.Tracer
	name          string
	enableMetrics bool
	enableLogging bool
	enableTracing bool
}

func NewObservable(db Database, options *ObservableOptions) (*Observable, error) {
	if db == nil {
		return nil, errors.New("database is nil")
	}
	if options == nil {
		return nil, errors.New("options is nil")
	}

	name := options.Name
	if name == "" {
		name = "database"
	}

	obs := &Observable{
		db:            db,
		name:          name,
		enableMetrics: options.EnableMetrics,
		enableLogging: options.EnableLogging,
		enableTracing: options.EnableTracing,
	}

	if options.EnableLogging {
		if options.Logger != nil {
			l, err := log.NewSLogWithOptions(options.Logger)
			if err != nil {
				return nil, errors.WithMessage(err, "failed to create logger")
			}
			obs.logger = l.WithGroup("observableDatabase")
		} else {
			obs.logger = log.Default().WithGroup("observableDatabase")
		}
	}

	if options.EnableMetrics {
		obs.metrics = NewObservableMetrics(name)
	}

	if options.EnableTracing {
		obs.tracer = otel.Tracer(fmt.Sprintf("database.%s", name))
	}

	return obs, nil
}

// observeOperation 统一的操作观测逻辑
func (obs *Observable) observeOperation(ctx context.Context, operation string, fn func(context.Context) error) error {
	start := time.Now()

	var span trace.Span
	if obs.enableTracing && obs.tracer != nil {
		ctx, span = obs.tracer.Start(ctx, fmt.Sprintf("database.%s", operation),
			trace.WithAttributes(
				attribute.String("component", obs.name),
				attribute.String("operation", operation),
			),
		)
		defer span.End()
	}

	if obs.enableMetrics && obs.metrics != nil {
		obs.metrics.activeOperations.WithLabelValues(operation).Inc()
		defer obs.metrics.activeOperations.WithLabelValues(operation).Dec()
	}

	err := fn(ctx)
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
		obs.metrics.operationCounter.WithLabelValues(operation, status).Inc()
		obs.metrics.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	}

	if obs.enableLogging && obs.logger != nil {
		if err != nil {
			obs.logger.ErrorContext(ctx, "database operation failed",
				"component", obs.name,
				"operation", operation,
				"duration_ms", duration.Milliseconds(),
				"error", err.Error(),
			)
		} else {
			obs.logger.DebugContext(ctx, "database operation completed",
				"component", obs.name,
				"operation", operation,
				"duration_ms", duration.Milliseconds(),
			)
		}
	}

	return err
}

func (obs *Observable) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	var rows []Row
	err := obs.observeOperation(ctx, "Query", func(ctx context.Context) error {
		var err error
		rows, err = obs.db.Query(ctx, query, args...)
		return err
	})
	return rows, err
}

func (obs *Observable) Execute(ctx context.Context, query string, args ...any) (*ExecResult, error) {
	var result *ExecResult
	err := obs.observeOperation(ctx, "Execute", func(ctx context.Context) error {
		var err error
		result, err = obs.db.Execute(ctx, query, args...)
		return err
	})
	return result, err
}

func (obs *Observable) ListTables(ctx context.Context) ([]string, error) {
	var tables []string
	err := obs.observeOperation(ctx, "ListTables", func(ctx context.Context) error {
		var err error
		tables, err = obs.db.ListTables(ctx)
		return err
	})
	return tables, err
}

func (obs *Observable) DescribeTable(ctx context.Context, table string) ([]ColumnSchema, error) {
	var columns []ColumnSchema
	err := obs.observeOperation(ctx, "DescribeTable", func(ctx context.Context) error {
		var err error
		columns, err = obs.db.DescribeTable(ctx, table)
		return err
	})
	return columns, err
}

func (obs *Observable) Close() error {
	return obs.db.Close()
}
