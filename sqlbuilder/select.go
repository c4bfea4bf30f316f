package sqlbuilder

import (
	"fmt"
)

// SelectBuilder 构造 SELECT 语句
//
//	sql, args, err := sqlbuilder.NewSelect().
//		From("users").
//		WhereEqual("id", 1).
//		Limit(1).
//		ToSQL()
type SelectBuilder struct {
	from         string
	restrictions []restriction
	limit        *int
	err          error
}

func NewSelect() *SelectBuilder {
	return &SelectBuilder{}
}

// From 设置查询的表，只允许调用一次
func (b *SelectBuilder) From(table string) *SelectBuilder {
	if b.err != nil {
		return b
	}
	if b.from != "" {
		b.err = ErrFromAlreadySet
		return b
	}
	b.from = table
	return b
}

// WhereEqual 追加一个等值条件，nil 值在 ToSQL 时报 ErrNullNotAccepted
func (b *SelectBuilder) WhereEqual(column string, value any) *SelectBuilder {
	b.restrictions = append(b.restrictions, restriction{column: column, value: value})
	return b
}

// WhereEqualNullable 追加一个允许 nil 值的等值条件
func (b *SelectBuilder) WhereEqualNullable(column string, value any) *SelectBuilder {
	b.restrictions = append(b.restrictions, restriction{column: column, value: value, acceptNull: true})
	return b
}

// Limit 设置返回的最大行数
func (b *SelectBuilder) Limit(n int) *SelectBuilder {
	b.limit = &n
	return b
}

// ToSQL 校验并渲染语句，子句顺序：投影、FROM、WHERE、LIMIT
func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if b.err != nil {
		return "", nil, b.err
	}
	if b.from == "" {
		return "", nil, ErrFromNotSet
	}

	sqlStr := fmt.Sprintf("SELECT * FROM %s", quoteIdent(b.from))

	where, args, err := renderWhere(b.restrictions)
	if err != nil {
		return "", nil, err
	}
	sqlStr += where

	if b.limit != nil {
		sqlStr += " LIMIT ?"
		args = append(args, *b.limit)
	}

	return sqlStr, args, nil
}
