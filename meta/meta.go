package meta

// FieldType 字段的语义类型，由底层列的原生类型推断得到
type FieldType string

const (
	FieldTypeString   FieldType = "string"
	FieldTypeNumber   FieldType = "number"
	FieldTypeDate     FieldType = "date"
	FieldTypeDatetime FieldType = "datetime"
	FieldTypeTime     FieldType = "time"
)

// TitleFormat 标题模板，引用字段 code 的格式为 #{field_code}
// 仅用于上层 UI 展示，引擎本身不做模板展开
type TitleFormat struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// EntityMeta 实体元数据，通常对应领域库中的一张表
type EntityMeta struct {
	// ID 元数据库首次持久化时分配的稳定标识，持久化前为 0
	ID int64 `json:"id"`

	// Code 对外的唯一标识，默认取表名，允许用户改名
	Code string `json:"code"`

	// Name 展示名称，由表名自动推导（snake_case -> "Capitalized Spaced"）
	Name string `json:"name"`

	// Table 领域库中的物理表名，introspect 之后不再变化
	// Code 可以被用户重命名，Table 不会跟着变
	Table string `json:"table"`

	// TitleFormat 默认取前 2 / 前 3 个非隐藏字段
	TitleFormat TitleFormat `json:"titleFormat"`

	// Fields 按列顺序排列，code 在实体内唯一
	Fields []*FieldMeta `json:"fields"`
}

// FieldMeta 字段元数据，描述一个列映射
type FieldMeta struct {
	// ID 元数据库分配的稳定标识
	ID int64 `json:"id"`

	// Code 实体内唯一的对外字段标识，可独立于 Column 重命名
	Code string `json:"code"`

	// Column 领域库中的物理列名，introspect 之后不再变化
	Column string `json:"column"`

	// Name 展示名称，推导规则同实体
	Name string `json:"name"`

	// Placeholder 示例值，introspect 时取自任意一行现有数据
	// 标识字段或空表时为 nil
	Placeholder *string `json:"placeholder"`

	// Type 语义类型
	Type FieldType `json:"type"`

	// Identifier 列是否属于表主键，所有标识字段合起来唯一定位一行
	Identifier bool `json:"identifier"`

	// Hidden 是否默认对用户隐藏，标识字段默认隐藏
	Hidden bool `json:"hidden"`

	// Mandatory 底层列是否声明为 NOT NULL
	Mandatory bool `json:"mandatory"`

	// Generated 值是否由存储自身生成（如自增主键）
	Generated bool `json:"generated"`
}

// FieldByCode 按 code 查找字段，找不到返回 nil
func (e *EntityMeta) FieldByCode(code string) *FieldMeta {
	for _, f := range e.Fields {
		if f.Code == code {
			return f
		}
	}
	return nil
}

// IdentifierFields 返回所有标识字段，保持声明顺序
func (e *EntityMeta) IdentifierFields() []*FieldMeta {
	var fields []*FieldMeta
	for _, f := range e.Fields {
		if f.Identifier {
			fields = append(fields, f)
		}
	}
	return fields
}

// GeneratedField 返回由存储生成的字段，没有则返回 nil
func (e *EntityMeta) GeneratedField() *FieldMeta {
	for _, f := range e.Fields {
		if f.Generated {
			return f
		}
	}
	return nil
}
