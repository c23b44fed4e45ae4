// Package jsonx recovers JSON values from noisy model output.
package jsonx

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSON is returned when neither the full text nor its brace-bounded
// substring parses as JSON.
var ErrNoJSON = errors.New("no JSON value found in text")

// Extract parses text as JSON. If the whole text is not valid JSON, the
// substring between the first '{' and the last '}' is tried once.
func Extract(text string) (any, error) {
	trimmed := strings.TrimSpace(text)
	if v, err := decode(trimmed); err == nil {
		return v, nil
	}

	first := strings.Index(trimmed, "{")
	last := strings.LastIndex(trimmed, "}")
	if first == -1 || last <= first {
		return nil, ErrNoJSON
	}

	v, err := decode(trimmed[first : last+1])
	if err != nil {
		return nil, errors.Join(ErrNoJSON, err)
	}
	return v, nil
}

// ExtractObject is Extract restricted to a top-level JSON object.
func ExtractObject(text string) (map[string]any, error) {
	v, err := Extract(text)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNoJSON
	}
	return obj, nil
}

func decode(s string) (any, error) {
	if s == "" {
		return nil, ErrNoJSON
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}
