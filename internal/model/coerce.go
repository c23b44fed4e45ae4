package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// The helpers below coerce loosely typed JSON values (as produced by
// encoding/json into any) into the schema's Go types.

func asString(v any, fallback string) string {
	switch s := v.(type) {
	case string:
		return s
	case float64, bool:
		return fmt.Sprint(s)
	default:
		return fallback
	}
}

func asNullableString(v any) *string {
	switch v.(type) {
	case string, float64, bool:
		s := asString(v, "")
		return &s
	default:
		return nil
	}
}

// asStringSlice keeps scalar elements (rendered as strings) and drops
// objects, arrays and nulls. A lone non-empty string becomes a one-element list.
func asStringSlice(v any) []string {
	out := []string{}
	switch list := v.(type) {
	case []any:
		for _, item := range list {
			switch item.(type) {
			case string, float64, bool:
				out = append(out, asString(item, ""))
			}
		}
	case []string:
		out = append(out, list...)
	case string:
		if strings.TrimSpace(list) != "" {
			out = append(out, list)
		}
	}
	return out
}

func asBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return err == nil && parsed
	default:
		return false
	}
}

// asInt converts JSON numbers (truncating) and integer strings. ok is false
// when v cannot be read as an integer.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		if n > math.MaxInt32 {
			return math.MaxInt32, true
		}
		if n < math.MinInt32 {
			return math.MinInt32, true
		}
		return int(n), true
	case int:
		return n, true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

func asNonNegativeInt(v any) int {
	i, ok := asInt(v)
	if !ok || i < 0 {
		return 0
	}
	return i
}

// asObjects returns the object elements of a JSON list, dropping everything else.
func asObjects(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}
