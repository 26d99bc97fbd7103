// Package binding 负责在看板文本字段中展开 ${path} 占位符。
package binding

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// 支持 ${host}、${hosts[0].name} 与带默认值的 ${port:-8080}。
var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 路径不存在时使用 :- 之后的默认值，否则保留原占位符。
func Interpolate(text string, data any) string {
	out, _ := Expand(text, data)
	return out
}

// Expand 与 Interpolate 相同，但额外返回无法解析且没有默认值的路径（去重、排序）。
func Expand(text string, data any) (string, []string) {
	missing := map[string]struct{}{}
	out := exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		path, def, hasDefault := splitDefault(groups[1])
		if path == "" {
			return match
		}
		if data != nil {
			if val, ok := resolvePath(data, path); ok && val != nil {
				return fmt.Sprint(val)
			}
		}
		if hasDefault {
			return def
		}
		missing[path] = struct{}{}
		return match
	})
	if len(missing) == 0 {
		return out, nil
	}
	paths := make([]string, 0, len(missing))
	for p := range missing {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return out, paths
}

func splitDefault(expr string) (path, def string, ok bool) {
	if i := strings.Index(expr, ":-"); i != -1 {
		return strings.TrimSpace(expr[:i]), expr[i+2:], true
	}
	return strings.TrimSpace(expr), "", false
}

func resolvePath(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = descendMap(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

func parseSegment(segment string) (string, []string) {
	name := segment
	var indexes []string
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 && rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, rest[1:end])
			rest = rest[end+1:]
		}
	}
	return name, indexes
}

// JSON 对象解码为 map[string]any；map[string]string 也可直接绑定。
func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[string]string:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	case []string:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}
