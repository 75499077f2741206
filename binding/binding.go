// Package binding fills ${...} placeholders in scene text with template data.
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var placeholder = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 支持 ${path|默认值}：路径不存在时使用默认值；没有默认值时保留原占位符。
func Interpolate(text string, data any) string {
	matches := placeholder.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}
	var sb strings.Builder
	last := 0
	for _, m := range matches {
		sb.WriteString(text[last:m[0]])
		sb.WriteString(substitute(text[m[0]:m[1]], text[m[2]:m[3]], data))
		last = m[1]
	}
	sb.WriteString(text[last:])
	return sb.String()
}

func substitute(raw, expr string, data any) string {
	path, fallback, hasFallback := strings.Cut(expr, "|")
	if v, ok := Resolve(data, strings.TrimSpace(path)); ok && v != nil {
		return Format(v)
	}
	if hasFallback {
		return strings.TrimSpace(fallback)
	}
	return raw
}

// Format 把绑定值转成文本；整数值的浮点数不带小数与指数。
func Format(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = Format(item)
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(v, ", ")
	default:
		return fmt.Sprint(v)
	}
}

// step 是路径中的一级：键名或下标。
type step struct {
	key   string
	index int
	isIdx bool
}

// splitPath 把 a.b[0][1].c 拆成 a, b, 0, 1, c；下标不是整数时返回 false。
func splitPath(path string) ([]step, bool) {
	var steps []step
	for _, part := range strings.Split(path, ".") {
		part = strings.TrimSpace(part)
		key, rest, _ := strings.Cut(part, "[")
		if key != "" {
			steps = append(steps, step{key: key})
		}
		if rest == "" {
			continue
		}
		for _, idx := range strings.Split(strings.TrimSuffix(rest, "]"), "][") {
			n, err := strconv.Atoi(strings.TrimSpace(idx))
			if err != nil {
				return nil, false
			}
			steps = append(steps, step{index: n, isIdx: true})
		}
	}
	return steps, len(steps) > 0
}

// Resolve 按 a.b[0].c 形式的路径在 data 中取值。
func Resolve(data any, path string) (any, bool) {
	if data == nil {
		return nil, false
	}
	steps, ok := splitPath(path)
	if !ok {
		return nil, false
	}
	current := data
	for _, s := range steps {
		if s.isIdx {
			current, ok = index(current, s.index)
		} else {
			current, ok = field(current, s.key)
		}
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// field 支持 JSON 解码出的 map[string]any 与 YAML 解码出的 map[any]any。
func field(current any, key string) (any, bool) {
	var (
		v  any
		ok bool
	)
	switch c := current.(type) {
	case map[string]any:
		v, ok = c[key]
	case map[string]string:
		v, ok = c[key]
	case map[any]any:
		v, ok = c[key]
	}
	return v, ok
}

func index(current any, i int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if i >= 0 && i < len(c) {
			return c[i], true
		}
	case []string:
		if i >= 0 && i < len(c) {
			return c[i], true
		}
	}
	return nil, false
}
