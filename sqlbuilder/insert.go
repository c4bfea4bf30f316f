package sqlbuilder

import (
	"fmt"
	"strings"
)

// InsertBuilder 构造 INSERT 语句，参数顺序与 Set 调用顺序一致
type InsertBuilder struct {
	into        string
	assignments []assignment
	err         error
}

func NewInsert() *InsertBuilder {
	return &InsertBuilder{}
}

// Into 设置写入的表，只允许调用一次
func (b *InsertBuilder) Into(table string) *InsertBuilder {
	if b.err != nil {
		return b
	}
	if b.into != "" {
		b.err = ErrIntoAlreadySet
		return b
	}
	b.into = table
	return b
}

// Set 追加一列的写入值，nil 表示显式写入 NULL
func (b *InsertBuilder) Set(column string, value any) *InsertBuilder {
	b.assignments = append(b.assignments, assignment{column: column, value: value})
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if b.err != nil {
		return "", nil, b.err
	}
	if b.into == "" {
		return "", nil, ErrIntoNotSet
	}
	if len(b.assignments) == 0 {
		return "", nil, ErrNoFieldsSet
	}

	columns := make([]string, 0, len(b.assignments))
	placeholders := make([]string, 0, len(b.assignments))
	args := make([]any, 0, len(b.assignments))
	for _, a := range b.assignments {
		columns = append(columns, quoteIdent(a.column))
		placeholders = append(placeholders, "?")
		args = append(args, a.value)
	}

	sqlStr := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(b.into),
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "))

	return sqlStr, args, nil
}
