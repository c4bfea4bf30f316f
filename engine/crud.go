package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hatlonely/metax/meta"
	"github.com/hatlonely/metax/sqlbuilder"
)

// ReadOptions 读取的过滤条件
type ReadOptions struct {
	// IDs 按字段 code 给出标识值，提供时必须覆盖所有标识字段，
	// 非标识字段的键被忽略
	IDs map[string]any

	// Limit 返回的最大行数
	Limit *int
}

// EntityTypes 返回所有实体元数据，首次调用触发 introspect-and-persist
func (e *Engine) EntityTypes(ctx context.Context) ([]*meta.EntityMeta, error) {
	return e.cache.get(ctx, e.loadEntityTypes)
}

// EntityType 按 code 返回单个实体元数据
func (e *Engine) EntityType(ctx context.Context, code string) (*meta.EntityMeta, error) {
	entities, err := e.EntityTypes(ctx)
	if err != nil {
		return nil, err
	}
	for _, entity := range entities {
		if entity.Code == code {
			return entity, nil
		}
	}
	return nil, errors.Wrapf(ErrEntityTypeNotFound, "code %s", code)
}

// Create 插入一行。data 按字段 code 取值，缺失的键交给存储填默认值。
// 返回入参加上存储生成的标识值
func (e *Engine) Create(ctx context.Context, code string, data map[string]any) (map[string]any, error) {
	entity, err := e.EntityType(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := checkKnownFields(entity, data); err != nil {
		return nil, err
	}

	builder := sqlbuilder.NewInsert().Into(entity.Table)
	for _, field := range entity.Fields {
		value, present := data[field.Code]
		if field.Mandatory && !field.Generated && (!present || value == nil) {
			return nil, errors.Wrapf(ErrMissingMandatoryField, "field %s", field.Code)
		}
		if present {
			builder.Set(field.Column, value)
		}
	}

	sqlStr, args, err := builder.ToSQL()
	if err != nil {
		return nil, err
	}
	res, err := e.db.Execute(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	if res.AffectedRows != 1 {
		return nil, errors.Wrapf(ErrUnexpectedAffectedRowCount,
			"insert into %s affected %d rows", entity.Table, res.AffectedRows)
	}

	result := make(map[string]any, len(data)+1)
	for k, v := range data {
		result[k] = v
	}
	if generated := entity.GeneratedField(); generated != nil && res.LastInsertID != 0 {
		result[generated.Code] = res.LastInsertID
	}
	return result, nil
}

// Read 查询多行，每行按字段 code 取值，字段顺序以 EntityMeta.Fields 为准
func (e *Engine) Read(ctx context.Context, code string, options *ReadOptions) ([]map[string]any, error) {
	entity, err := e.EntityType(ctx, code)
	if err != nil {
		return nil, err
	}

	builder := sqlbuilder.NewSelect().From(entity.Table)
	if options != nil && options.IDs != nil {
		for _, field := range entity.IdentifierFields() {
			value, ok := options.IDs[field.Code]
			if !ok || value == nil {
				return nil, errors.Wrapf(ErrMissingIdentifierField, "field %s", field.Code)
			}
			builder.WhereEqual(field.Column, value)
		}
	}
	if options != nil && options.Limit != nil {
		builder.Limit(*options.Limit)
	}

	sqlStr, args, err := builder.ToSQL()
	if err != nil {
		return nil, err
	}
	rows, err := e.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}

	records := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		record := make(map[string]any, len(entity.Fields))
		for _, field := range entity.Fields {
			record[field.Code] = decodeValue(field.Type, row[field.Column])
		}
		records = append(records, record)
	}
	return records, nil
}

// Update 按标识更新一行并回读。data 里缺失的键保持不变，显式的 nil 置为 NULL
func (e *Engine) Update(ctx context.Context, code string, data map[string]any) (map[string]any, error) {
	entity, err := e.EntityType(ctx, code)
	if err != nil {
		return nil, err
	}

	builder := sqlbuilder.NewUpdate().Table(entity.Table)
	for _, field := range entity.Fields {
		if field.Identifier {
			continue
		}
		if value, present := data[field.Code]; present {
			builder.Set(field.Column, value)
		}
	}
	restrictions, err := identifierValues(entity, data)
	if err != nil {
		return nil, err
	}
	for _, r := range restrictions {
		builder.WhereEqual(r.column, r.value)
	}

	sqlStr, args, err := builder.ToSQL()
	if err != nil {
		return nil, err
	}
	res, err := e.db.Execute(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	if res.AffectedRows != 1 {
		return nil, errors.Wrapf(ErrUnexpectedAffectedRowCount,
			"update %s affected %d rows", entity.Table, res.AffectedRows)
	}

	rows, err := e.Read(ctx, code, &ReadOptions{IDs: data})
	if err != nil {
		return nil, err
	}
	if len(rows) != 1 {
		return nil, errors.Wrapf(ErrUnexpectedReadCount,
			"read %d rows from %s after update", len(rows), entity.Table)
	}
	return rows[0], nil
}

// Delete 按标识删除一行
func (e *Engine) Delete(ctx context.Context, code string, ids map[string]any) error {
	entity, err := e.EntityType(ctx, code)
	if err != nil {
		return err
	}

	builder := sqlbuilder.NewDelete().Table(entity.Table)
	restrictions, err := identifierValues(entity, ids)
	if err != nil {
		return err
	}
	for _, r := range restrictions {
		builder.WhereEqual(r.column, r.value)
	}

	sqlStr, args, err := builder.ToSQL()
	if err != nil {
		return err
	}
	res, err := e.db.Execute(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	if res.AffectedRows != 1 {
		return errors.Wrapf(ErrUnexpectedAffectedRowCount,
			"delete from %s affected %d rows", entity.Table, res.AffectedRows)
	}
	return nil
}

// checkKnownFields 拒绝不属于实体的字段 code，一次报出所有未知键
func checkKnownFields(entity *meta.EntityMeta, data map[string]any) error {
	var unknown []string
	for key := range data {
		if entity.FieldByCode(key) == nil {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return errors.Wrapf(ErrUnknownFields, "fields %s", strings.Join(unknown, ", "))
	}
	return nil
}

// columnValue 一个标识列及其过滤值
type columnValue struct {
	column string
	value  any
}

// identifierValues 要求每个标识字段在 data 里都有非 nil 的值，
// 按声明顺序返回对应的列和值
func identifierValues(entity *meta.EntityMeta, data map[string]any) ([]columnValue, error) {
	values := make([]columnValue, 0, len(entity.Fields))
	for _, field := range entity.IdentifierFields() {
		value, ok := data[field.Code]
		if !ok || value == nil {
			return nil, errors.Wrapf(ErrMissingIdentifierValue, "field %s", field.Code)
		}
		values = append(values, columnValue{column: field.Column, value: value})
	}
	return values, nil
}

const (
	dateLayout     = "2006-01-02"
	datetimeLayout = "2006-01-02 15:04:05"
	timeLayout     = "15:04:05"
)

// decodeValue 按字段的语义类型归一化驱动返回的原始值：
// number 归一到 int64/float64，其余类型归一到 string，NULL 保持 nil
func decodeValue(fieldType meta.FieldType, value any) any {
	if value == nil {
		return nil
	}

	switch fieldType {
	case meta.FieldTypeNumber:
		switch v := value.(type) {
		case int64:
			return v
		case int:
			return int64(v)
		case int32:
			return int64(v)
		case uint64:
			// 超出 int64 范围的无符号值原样返回，避免回绕
			if v > math.MaxInt64 {
				return v
			}
			return int64(v)
		case float64:
			return v
		case float32:
			return float64(v)
		case string:
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				return n
			}
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
			return v
		}
		return value
	case meta.FieldTypeDate:
		if t, ok := value.(time.Time); ok {
			return t.Format(dateLayout)
		}
	case meta.FieldTypeDatetime:
		if t, ok := value.(time.Time); ok {
			return t.Format(datetimeLayout)
		}
	case meta.FieldTypeTime:
		if t, ok := value.(time.Time); ok {
			return t.Format(timeLayout)
		}
	}

	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}
