package sqlbuilder

import (
	"fmt"
)

// DeleteBuilder 构造 DELETE 语句，参数只有 WHERE 值
type DeleteBuilder struct {
	table        string
	restrictions []restriction
	err          error
}

func NewDelete() *DeleteBuilder {
	return &DeleteBuilder{}
}

// Table 设置删除的表，只允许调用一次
func (b *DeleteBuilder) Table(table string) *DeleteBuilder {
	if b.err != nil {
		return b
	}
	if b.table != "" {
		b.err = ErrTableAlreadySet
		return b
	}
	b.table = table
	return b
}

// WhereEqual 追加一个等值条件，nil 值在 ToSQL 时报 ErrNullNotAccepted
func (b *DeleteBuilder) WhereEqual(column string, value any) *DeleteBuilder {
	b.restrictions = append(b.restrictions, restriction{column: column, value: value})
	return b
}

func (b *DeleteBuilder) ToSQL() (string, []any, error) {
	if b.err != nil {
		return "", nil, b.err
	}
	if b.table == "" {
		return "", nil, ErrTableNotSet
	}
	if len(b.restrictions) == 0 {
		return "", nil, ErrNoWhereRestrictions
	}

	where, args, err := renderWhere(b.restrictions)
	if err != nil {
		return "", nil, err
	}

	return fmt.Sprintf("DELETE FROM %s%s", quoteIdent(b.table), where), args, nil
}
