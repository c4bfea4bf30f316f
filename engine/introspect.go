package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/hatlonely/metax/database"
	"github.com/hatlonely/metax/meta"
	"github.com/hatlonely/metax/sqlbuilder"
)

// loadEntityTypes 读取已持久化的实体，再把领域库里还没有元数据的表
// introspect 成新实体并持久化。新实体追加在已有实体之后
func (e *Engine) loadEntityTypes(ctx context.Context) ([]*meta.EntityMeta, error) {
	entities, err := e.metaStore.ListEntityTypes(ctx)
	if err != nil {
		return nil, err
	}

	tables, err := e.db.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(entities))
	for _, entity := range entities {
		known[entity.Table] = struct{}{}
	}

	for _, table := range tables {
		if _, ok := e.systemTables[table]; ok {
			continue
		}
		if _, ok := known[table]; ok {
			continue
		}

		entity, err := e.introspectTable(ctx, table)
		if err != nil {
			return nil, err
		}
		if err := e.metaStore.SaveEntityType(ctx, entity); err != nil {
			return nil, err
		}
		e.logger.InfoContext(ctx, "introspected table",
			"table", table,
			"fields", len(entity.Fields),
		)
		entities = append(entities, entity)
	}

	return entities, nil
}

// introspectTable 把一张表的物理结构推断成实体元数据
func (e *Engine) introspectTable(ctx context.Context, table string) (*meta.EntityMeta, error) {
	columns, err := e.db.DescribeTable(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, errors.Errorf("table %s has no columns", table)
	}

	sample, err := e.sampleRow(ctx, table)
	if err != nil {
		return nil, err
	}

	fields := make([]*meta.FieldMeta, 0, len(columns))
	for _, column := range columns {
		fieldType, ok := mapNativeType(column.NativeType)
		if !ok {
			return nil, errors.Wrapf(ErrUnsupportedColumnType,
				"table %s column %s type %s", table, column.Name, column.NativeType)
		}

		field := &meta.FieldMeta{
			Code:       column.Name,
			Column:     column.Name,
			Name:       meta.DisplayName(column.Name),
			Type:       fieldType,
			Identifier: column.PrimaryKey,
			Hidden:     column.PrimaryKey,
			Mandatory:  column.NotNull,
		}
		if !column.PrimaryKey && sample != nil {
			if v := sample[column.Name]; v != nil {
				placeholder := fmt.Sprintf("%v", v)
				field.Placeholder = &placeholder
			}
		}
		fields = append(fields, field)
	}

	// 单一数值主键视为存储生成（自增）
	var identifiers []*meta.FieldMeta
	for _, f := range fields {
		if f.Identifier {
			identifiers = append(identifiers, f)
		}
	}
	if len(identifiers) == 1 && identifiers[0].Type == meta.FieldTypeNumber {
		identifiers[0].Generated = true
	}

	return &meta.EntityMeta{
		Code:        table,
		Name:        meta.DisplayName(table),
		Table:       table,
		TitleFormat: meta.DeriveTitleFormat(fields),
		Fields:      fields,
	}, nil
}

// sampleRow 任取一行现有数据作为示例值来源，空表返回 nil
func (e *Engine) sampleRow(ctx context.Context, table string) (database.Row, error) {
	sqlStr, args, err := sqlbuilder.NewSelect().From(table).Limit(1).ToSQL()
	if err != nil {
		return nil, err
	}
	rows, err := e.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// mapNativeType 把原生列类型映射到语义类型，没有映射的类型推断失败
func mapNativeType(nativeType string) (meta.FieldType, bool) {
	t := strings.ToLower(nativeType)
	if i := strings.Index(t, "("); i >= 0 {
		t = t[:i]
	}
	t = strings.TrimSpace(t)

	switch t {
	case "int", "integer", "bigint", "smallint", "mediumint", "tinyint":
		return meta.FieldTypeNumber, true
	case "char", "varchar", "nchar", "nvarchar", "text", "tinytext", "mediumtext", "longtext", "clob":
		return meta.FieldTypeString, true
	case "date":
		return meta.FieldTypeDate, true
	case "datetime", "timestamp":
		return meta.FieldTypeDatetime, true
	case "time":
		return meta.FieldTypeTime, true
	}
	return "", false
}
