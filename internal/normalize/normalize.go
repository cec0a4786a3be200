// Package normalize maps raw provider payloads into canonical records. Each
// canonical field resolves through an ordered list of candidate keys (snake
// case, camel case, provider synonyms); the first present key wins. Missing
// optional fields fall back to category defaults and never raise; only a
// payload that is neither a JSON object nor an array is a hard parse error.
package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// aliases is the ordered candidate-key list for one canonical field.
type aliases []string

// resolve returns the first present, non-empty candidate value.
func (a aliases) resolve(rec map[string]any) (any, bool) {
	for _, key := range a {
		if v, ok := rec[key]; ok && v != nil {
			if s, isStr := v.(string); isStr && s == "" {
				continue
			}
			return v, true
		}
	}
	return nil, false
}

func (a aliases) str(rec map[string]any, fallback string) string {
	v, ok := a.resolve(rec)
	if !ok {
		return fallback
	}
	return stringOf(v)
}

func (a aliases) boolean(rec map[string]any, fallback bool) bool {
	v, ok := a.resolve(rec)
	if !ok {
		return fallback
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(b) {
		case "true", "yes", "y", "current", "1":
			return true
		case "false", "no", "n", "0":
			return false
		}
	case float64:
		return b != 0
	}
	return fallback
}

func (a aliases) intPtr(rec map[string]any) *int {
	v, ok := a.resolve(rec)
	if !ok {
		return nil
	}
	switch n := v.(type) {
	case float64:
		i := int(n)
		return &i
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return &i
		}
	}
	return nil
}

func (a aliases) float(rec map[string]any) float64 {
	v, ok := a.resolve(rec)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case string:
		cleaned := strings.TrimLeft(strings.ReplaceAll(n, ",", ""), "$")
		if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return f
		}
	}
	return 0
}

func stringOf(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// records normalizes the two tolerated response shapes to a list of objects:
// a bare array, or an object wrapping the array under one of wrapperKeys.
// An object with none of the wrapper keys yields an empty list. Anything that
// is neither object nor array is a hard parse error.
func records(raw json.RawMessage, wrapperKeys ...string) ([]map[string]any, error) {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("parse provider payload: %w", err)
	}

	switch shaped := payload.(type) {
	case []any:
		return objectsOf(shaped), nil
	case map[string]any:
		for _, key := range wrapperKeys {
			if inner, ok := shaped[key].([]any); ok {
				return objectsOf(inner), nil
			}
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("provider payload is neither object nor array")
	}
}

func objectsOf(items []any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if rec, ok := item.(map[string]any); ok {
			out = append(out, rec)
		}
	}
	return out
}

// provenance re-encodes the untouched record for the Raw field. Encoding a
// map that came from json.Unmarshal cannot fail.
func provenance(rec map[string]any) json.RawMessage {
	raw, _ := json.Marshal(rec)
	return raw
}
