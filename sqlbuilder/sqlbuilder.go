// Package sqlbuilder 构造带参数占位符的 SELECT/INSERT/UPDATE/DELETE 语句
//
// 所有构造器都只记录状态，校验和渲染统一发生在 ToSQL 中；
// 表名/列名按反引号字面量渲染，mysql 和 sqlite3 都接受这种写法。
// 构造器不校验标识符内容，调用方必须只传入来自可信元数据的标识符，
// 这里是唯一的 SQL 注入边界。
package sqlbuilder

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrFromNotSet      = errors.New("from table not set")
	ErrFromAlreadySet  = errors.New("from table already set")
	ErrIntoNotSet      = errors.New("into table not set")
	ErrIntoAlreadySet  = errors.New("into table already set")
	ErrTableNotSet     = errors.New("table not set")
	ErrTableAlreadySet = errors.New("table already set")

	ErrNoFieldsSet         = errors.New("no fields set")
	ErrNoAttributionsSet   = errors.New("no attributions set")
	ErrNoWhereRestrictions = errors.New("no where restrictions")

	ErrNullNotAccepted = errors.New("null value not accepted")
)

// restriction WHERE 里的一个等值条件，多个条件按调用顺序 AND 连接
type restriction struct {
	column     string
	value      any
	acceptNull bool
}

// assignment SET 里的一个赋值
type assignment struct {
	column string
	value  any
}

// quoteIdent 把标识符渲染为反引号字面量
func quoteIdent(name string) string {
	return fmt.Sprintf("`%s`", name)
}

// renderWhere 渲染 WHERE 子句并按从左到右的顺序收集参数
func renderWhere(restrictions []restriction) (string, []any, error) {
	clause := ""
	args := make([]any, 0, len(restrictions))
	for i, r := range restrictions {
		if r.value == nil && !r.acceptNull {
			return "", nil, errors.Wrapf(ErrNullNotAccepted, "column %s", r.column)
		}
		if i == 0 {
			clause += " WHERE "
		} else {
			clause += " AND "
		}
		clause += fmt.Sprintf("%s = ?", quoteIdent(r.column))
		args = append(args, r.value)
	}
	return clause, args, nil
}
