package sqlbuilder

import (
	"fmt"
	"strings"
)

// UpdateBuilder 构造 UPDATE 语句，参数顺序先 SET 值后 WHERE 值
type UpdateBuilder struct {
	table        string
	assignments  []assignment
	restrictions []restriction
	err          error
}

func NewUpdate() *UpdateBuilder {
	return &UpdateBuilder{}
}

// Table 设置更新的表，只允许调用一次
func (b *UpdateBuilder) Table(table string) *UpdateBuilder {
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

// Set 追加一列的赋值，nil 表示把该列置为 NULL
func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.assignments = append(b.assignments, assignment{column: column, value: value})
	return b
}

// WhereEqual 追加一个等值条件，nil 值在 ToSQL 时报 ErrNullNotAccepted
func (b *UpdateBuilder) WhereEqual(column string, value any) *UpdateBuilder {
	b.restrictions = append(b.restrictions, restriction{column: column, value: value})
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if b.err != nil {
		return "", nil, b.err
	}
	if b.table == "" {
		return "", nil, ErrTableNotSet
	}
	if len(b.assignments) == 0 {
		return "", nil, ErrNoAttributionsSet
	}
	if len(b.restrictions) == 0 {
		return "", nil, ErrNoWhereRestrictions
	}

	setParts := make([]string, 0, len(b.assignments))
	args := make([]any, 0, len(b.assignments)+len(b.restrictions))
	for _, a := range b.assignments {
		setParts = append(setParts, fmt.Sprintf("%s = ?", quoteIdent(a.column)))
		args = append(args, a.value)
	}

	where, whereArgs, err := renderWhere(b.restrictions)
	if err != nil {
		return "", nil, err
	}
	args = append(args, whereArgs...)

	sqlStr := fmt.Sprintf("UPDATE %s SET %s%s",
		quoteIdent(b.table), strings.Join(setParts, ", "), where)

	return sqlStr, args, nil
}
