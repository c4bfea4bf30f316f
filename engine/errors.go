package engine

import (
	"github.com/pkg/errors"
)

var (
	// ErrEntityTypeNotFound 按 code 找不到实体
	ErrEntityTypeNotFound = errors.New("entity type not found")

	// ErrUnknownFields 入参里有不属于实体的字段 code
	ErrUnknownFields = errors.New("unknown fields")

	// ErrMissingMandatoryField 创建时缺少必填字段
	ErrMissingMandatoryField = errors.New("missing mandatory field")

	// ErrMissingIdentifierField 读取过滤条件里缺少标识字段
	ErrMissingIdentifierField = errors.New("missing identifier field")

	// ErrMissingIdentifierValue 更新/删除入参里缺少标识字段的值
	ErrMissingIdentifierValue = errors.New("missing identifier value")

	// ErrUnsupportedColumnType introspect 遇到没有语义映射的原生类型
	ErrUnsupportedColumnType = errors.New("unsupported column type")

	// ErrUnexpectedAffectedRowCount 单行写操作影响的行数不是 1
	// 这是一致性缺陷，不是可重试的状态
	ErrUnexpectedAffectedRowCount = errors.New("unexpected affected row count")

	// ErrUnexpectedReadCount 更新后按标识回读的行数不是 1
	ErrUnexpectedReadCount = errors.New("unexpected read count")
)
