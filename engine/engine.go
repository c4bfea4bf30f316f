// Package engine 是元数据驱动的数据访问引擎。
//
// 引擎连接两个库：元数据库持久化实体模型（EntityMeta/FieldMeta），
// 领域库存放真正的业务数据。首次访问时引擎对领域库做一次 introspect，
// 把没有元数据的表推断成实体并持久化，之后的 CRUD 都以元数据为准。
package engine

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hatlonely/metax/database"
	"github.com/hatlonely/metax/log"
	"github.com/hatlonely/metax/meta"
	"github.com/hatlonely/metax/validator"
)

type Options struct {
	// Meta 元数据库配置
	Meta *meta.StoreOptions `cfg:"meta" validate:"required"`

	// Database 领域库配置
	Database *database.SQLOptions `cfg:"database" validate:"required"`

	// Logger 日志配置，缺省使用默认日志器
	Logger *log.SLogOptions `cfg:"logger"`

	// SystemTables 额外忽略的系统表名，与内置列表合并
	SystemTables []string `cfg:"systemTables"`
}

// 驱动自身的簿记表不会被推断成实体
var defaultSystemTables = []string{"sqlite_sequence"}

// Engine 元数据驱动的数据访问引擎
//
// 一个引擎实例对应一对（元数据库，领域库）连接。引擎对写操作不做
// 进程内加锁，并发写依赖底层存储自身的并发控制；"恰好影响一行"的
// 校验是事后一致性检查，不是并发保护
type Engine struct {
	metaStore    *meta.Store
	db           database.Database
	logger       log.Logger
	systemTables map[string]struct{}
	cache        entityCache
}

// NewEngine 用已有的存储连接创建引擎
func NewEngine(metaStore *meta.Store, db database.Database) *Engine {
	return newEngine(metaStore, db, log.Default(), defaultSystemTables)
}

// NewEngineWithOptions 按配置创建引擎，自动建立元数据表结构
func NewEngineWithOptions(options *Options) (*Engine, error) {
	if options == nil {
		return nil, errors.New("options is nil")
	}
	if err := validator.ValidateStruct(options); err != nil {
		return nil, errors.WithMessage(err, "invalid engine options")
	}

	metaStore, err := meta.NewStoreWithOptions(options.Meta)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create metadata store")
	}
	if err := metaStore.AutoMigrate(context.Background()); err != nil {
		_ = metaStore.Close()
		return nil, err
	}

	db, err := database.NewSQLWithOptions(options.Database)
	if err != nil {
		_ = metaStore.Close()
		return nil, errors.WithMessage(err, "failed to create domain database")
	}

	logger := log.Default()
	if options.Logger != nil {
		l, err := log.NewSLogWithOptions(options.Logger)
		if err != nil {
			_ = metaStore.Close()
			_ = db.Close()
			return nil, errors.WithMessage(err, "failed to create logger")
		}
		logger = l
	}

	systemTables := make([]string, 0, len(defaultSystemTables)+len(options.SystemTables))
	systemTables = append(systemTables, defaultSystemTables...)
	systemTables = append(systemTables, options.SystemTables...)

	return newEngine(metaStore, db, logger, systemTables), nil
}

func newEngine(metaStore *meta.Store, db database.Database, logger log.Logger, systemTables []string) *Engine {
	tables := make(map[string]struct{}, len(systemTables))
	for _, t := range systemTables {
		tables[t] = struct{}{}
	}
	return &Engine{
		metaStore:    metaStore,
		db:           db,
		logger:       logger.WithGroup("engine"),
		systemTables: tables,
	}
}

// Invalidate 清空实体缓存，下一次访问重新加载元数据并补充 introspect
// 元数据库被外部修改（如实体改名）之后调用
func (e *Engine) Invalidate() {
	e.cache.invalidate()
}

// Close 关闭两个库的连接
func (e *Engine) Close() error {
	dbErr := e.db.Close()
	metaErr := e.metaStore.Close()
	if dbErr != nil {
		return dbErr
	}
	return metaErr
}
