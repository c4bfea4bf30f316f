package meta

import (
	"fmt"
	"strings"
)

// DisplayName 将 snake_case 的表名/列名转换为展示名称
// 例如 "first_name" -> "First Name"
func DisplayName(name string) string {
	parts := strings.Split(name, "_")
	words := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		words = append(words, strings.ToUpper(part[:1])+part[1:])
	}
	return strings.Join(words, " ")
}

// DeriveTitleFormat 按字段声明顺序取前 2 / 前 3 个非隐藏字段生成标题模板
func DeriveTitleFormat(fields []*FieldMeta) TitleFormat {
	var codes []string
	for _, f := range fields {
		if f.Hidden {
			continue
		}
		codes = append(codes, fmt.Sprintf("#{%s}", f.Code))
		if len(codes) == 3 {
			break
		}
	}

	title := codes
	if len(title) > 2 {
		title = codes[:2]
	}
	return TitleFormat{
		Title:    strings.Join(title, " "),
		Subtitle: strings.Join(codes, " "),
	}
}
