// Package database 提供引擎依赖的最小关系型数据库能力：
// 执行查询、执行写语句、列出表名、描述表结构。
// 连接池管理和底层错误分类交给驱动，引擎把任何适配层失败视为当次操作失败。
package database

import (
	"context"
)

// Row 一行查询结果，按列名取值
type Row map[string]any

// ExecResult 写语句的执行反馈
type ExecResult struct {
	AffectedRows int64
	LastInsertID int64
}

// ColumnSchema 一列的物理结构描述
type ColumnSchema struct {
	// Name 列名
	Name string
	// NativeType 数据库声明的原生类型，如 INTEGER、varchar
	NativeType string
	// PrimaryKey 列是否属于主键
	PrimaryKey bool
	// NotNull 列是否声明为 NOT NULL
	NotNull bool
}

// Database 关系型数据库适配接口
type Database interface {
	// Query 执行参数化查询并返回所有行
	Query(ctx context.Context, query string, args ...any) ([]Row, error)

	// Execute 执行参数化写语句，返回影响行数和最后插入的自增 id
	Execute(ctx context.Context, query string, args ...any) (*ExecResult, error)

	// ListTables 按固定顺序列出所有业务表，驱动内部的簿记表不包含在内
	ListTables(ctx context.Context) ([]string, error)

	// DescribeTable 按物理列顺序描述一张表的所有列
	DescribeTable(ctx context.Context, table string) ([]ColumnSchema, error)

	// Close 关闭底层连接
	Close() error
}
