package sqlbuilder

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestInsertBuilderToSQL(t *testing.T) {
	Convey("测试 InsertBuilder ToSQL 方法", t, func() {
		Convey("单列插入", func() {
			sqlStr, args, err := NewInsert().
				Into("users").
				Set("first_name", "Ada").
				ToSQL()
			So(err, ShouldBeNil)
			So(sqlStr, ShouldEqual, "INSERT INTO `users` (`first_name`) VALUES (?)")
			So(args, ShouldResemble, []any{"Ada"})
		})

		Convey("多列插入参数顺序与 Set 调用顺序一致", func() {
			sqlStr, args, err := NewInsert().
				Into("users").
				Set("first_name", "Ada").
				Set("last_name", "Lovelace").
				Set("age", 36).
				ToSQL()
			So(err, ShouldBeNil)
			So(sqlStr, ShouldEqual, "INSERT INTO `users` (`first_name`, `last_name`, `age`) VALUES (?, ?, ?)")
			So(args, ShouldResemble, []any{"Ada", "Lovelace", 36})
		})

		Convey("nil 值作为显式 NULL 写入", func() {
			sqlStr, args, err := NewInsert().
				Into("users").
				Set("email", nil).
				ToSQL()
			So(err, ShouldBeNil)
			So(sqlStr, ShouldEqual, "INSERT INTO `users` (`email`) VALUES (?)")
			So(args, ShouldResemble, []any{nil})
		})

		Convey("未设置表名报错", func() {
			_, _, err := NewInsert().Set("first_name", "Ada").ToSQL()
			So(err, ShouldEqual, ErrIntoNotSet)
		})

		Convey("重复设置表名报错", func() {
			_, _, err := NewInsert().Into("users").Into("orders").ToSQL()
			So(err, ShouldEqual, ErrIntoAlreadySet)
		})

		Convey("没有任何列报错", func() {
			_, _, err := NewInsert().Into("users").ToSQL()
			So(err, ShouldEqual, ErrNoFieldsSet)
		})
	})
}
