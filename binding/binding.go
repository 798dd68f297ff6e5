package binding

import (
	"fmt"
	"regexp"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Context 是导出时文本图层可引用的值。
type Context struct {
	PageNumber int    // 从 1 开始
	PageCount  int
	Project    string // 项目名称（不含扩展名）
}

// Data returns the value tree placeholders are resolved against.
func (c Context) Data() map[string]any {
	return map[string]any{
		"page": map[string]any{
			"number": c.PageNumber,
			"count":  c.PageCount,
		},
		"project": map[string]any{
			"name": c.Project,
		},
	}
}

// Expand replaces ${page.number}, ${page.count} and ${project.name} in text.
func Expand(text string, c Context) string {
	if !HasPlaceholders(text) {
		return text
	}
	return Interpolate(text, c.Data())
}

// HasPlaceholders reports whether text contains at least one ${...} expression.
func HasPlaceholders(text string) bool {
	return strings.Contains(text, "${") && exprPattern.MatchString(text)
}

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 若 data 为空或路径不存在，则保留原占位符。
func Interpolate(text string, data map[string]any) string {
	if data == nil {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		path := strings.TrimSpace(groups[1])
		if path == "" {
			return match
		}
		if val, ok := resolvePath(data, path); ok {
			return fmt.Sprint(val)
		}
		return match
	})
}

func resolvePath(data map[string]any, path string) (any, bool) {
	var current any = data
	for _, segment := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[strings.TrimSpace(segment)]
		if !ok {
			return nil, false
		}
	}
	if _, isMap := current.(map[string]any); isMap {
		return nil, false
	}
	return current, true
}
