package engine

import (
	"math"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/hatlonely/metax/meta"
)

func TestMapNativeType(t *testing.T) {
	Convey("测试 mapNativeType 方法", t, func() {
		Convey("整数类型映射为 number", func() {
			for _, nativeType := range []string{"INTEGER", "int", "BIGINT", "smallint", "TINYINT(1)"} {
				fieldType, ok := mapNativeType(nativeType)
				So(ok, ShouldBeTrue)
				So(fieldType, ShouldEqual, meta.FieldTypeNumber)
			}
		})

		Convey("文本类型映射为 string", func() {
			for _, nativeType := range []string{"TEXT", "varchar", "VARCHAR(255)", "char(8)", "longtext"} {
				fieldType, ok := mapNativeType(nativeType)
				So(ok, ShouldBeTrue)
				So(fieldType, ShouldEqual, meta.FieldTypeString)
			}
		})

		Convey("日期时间类型映射", func() {
			fieldType, _ := mapNativeType("DATE")
			So(fieldType, ShouldEqual, meta.FieldTypeDate)
			fieldType, _ = mapNativeType("datetime")
			So(fieldType, ShouldEqual, meta.FieldTypeDatetime)
			fieldType, _ = mapNativeType("TIMESTAMP")
			So(fieldType, ShouldEqual, meta.FieldTypeDatetime)
			fieldType, _ = mapNativeType("TIME")
			So(fieldType, ShouldEqual, meta.FieldTypeTime)
		})

		Convey("没有映射的类型推断失败", func() {
			for _, nativeType := range []string{"BLOB", "REAL", "json", ""} {
				_, ok := mapNativeType(nativeType)
				So(ok, ShouldBeFalse)
			}
		})
	})
}

func TestDecodeValue(t *testing.T) {
	Convey("测试 decodeValue 方法", t, func() {
		Convey("NULL 保持 nil", func() {
			So(decodeValue(meta.FieldTypeString, nil), ShouldBeNil)
			So(decodeValue(meta.FieldTypeNumber, nil), ShouldBeNil)
		})

		Convey("number 归一到 int64 或 float64", func() {
			So(decodeValue(meta.FieldTypeNumber, int64(7)), ShouldEqual, int64(7))
			So(decodeValue(meta.FieldTypeNumber, 7), ShouldEqual, int64(7))
			So(decodeValue(meta.FieldTypeNumber, "7"), ShouldEqual, int64(7))
			So(decodeValue(meta.FieldTypeNumber, "7.5"), ShouldEqual, 7.5)
			So(decodeValue(meta.FieldTypeNumber, 7.5), ShouldEqual, 7.5)
		})

		Convey("超出 int64 范围的无符号值不回绕", func() {
			So(decodeValue(meta.FieldTypeNumber, uint64(7)), ShouldEqual, int64(7))
			So(decodeValue(meta.FieldTypeNumber, uint64(math.MaxUint64)), ShouldEqual, uint64(math.MaxUint64))
		})

		Convey("时间值按语义类型格式化", func() {
			ts := time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC)
			So(decodeValue(meta.FieldTypeDate, ts), ShouldEqual, "2024-03-15")
			So(decodeValue(meta.FieldTypeDatetime, ts), ShouldEqual, "2024-03-15 10:30:45")
			So(decodeValue(meta.FieldTypeTime, ts), ShouldEqual, "10:30:45")
		})

		Convey("文本值保持 string", func() {
			So(decodeValue(meta.FieldTypeString, "Ada"), ShouldEqual, "Ada")
			So(decodeValue(meta.FieldTypeDate, "2024-03-15"), ShouldEqual, "2024-03-15")
		})
	})
}
