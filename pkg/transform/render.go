package transform

import (
	"encoding/json"
	"strconv"
	"strings"
)

// renderValue writes a scalar as a Typesense literal. ok is false for nil,
// arrays, objects and strings that have no literal form.
func renderValue(v interface{}) (string, bool) {
	switch v := v.(type) {
	case string:
		return quote(v)
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	}
	return "", false
}

// renderList writes [v1,v2,...]. Every element has to be a scalar.
func renderList(v interface{}) (string, bool) {
	items, ok := v.([]interface{})
	if !ok || len(items) == 0 {
		return "", false
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := renderValue(item)
		if !ok {
			return "", false
		}
		parts = append(parts, s)
	}
	return "[" + strings.Join(parts, ",") + "]", true
}

// Strings are double quoted. Typesense has no escape sequence inside double
// quotes and the filter parser reads a backslash there as one, so strings
// containing " or \ are wrapped in backticks instead. A string that also
// contains a backtick cannot be written at all.
func quote(s string) (string, bool) {
	if !strings.ContainsAny(s, `"\`) {
		return `"` + s + `"`, true
	}
	if strings.Contains(s, "`") {
		return "", false
	}
	return "`" + s + "`", true
}
