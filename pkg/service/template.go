package service

import (
	"fmt"
	"regexp"
	"strconv"
)

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Resolve expands {field} placeholders in value against the event payload.
// A placeholder whose field is absent from the payload resolves to the
// empty string: a missing optional field degrades the message instead of
// leaving literal placeholder text in it. Resolve never fails.
func Resolve(value string, payload map[string]interface{}) string {
	return placeholderPattern.ReplaceAllStringFunc(value, func(match string) string {
		field := match[1 : len(match)-1]
		v, ok := payload[field]
		if !ok || v == nil {
			return ""
		}
		return stringify(v)
	})
}

// ResolveConfig applies Resolve to every value of an action's config.
func ResolveConfig(config map[string]string, payload map[string]interface{}) map[string]string {
	resolved := make(map[string]string, len(config))
	for k, v := range config {
		resolved[k] = Resolve(v, payload)
	}
	return resolved
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// JSON numbers decode as float64; render 42 as "42", not "42.000000"
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
