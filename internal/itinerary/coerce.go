package itinerary

import (
	"encoding/json"
	"math"
	"strings"
)

// Defensive readers over decoded JSON. None of them panic on unexpected shapes.

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asList(v any) ([]any, bool) {
	l, ok := v.([]any)
	return l, ok
}

// lookup returns the first present key among keys.
func lookup(obj map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

func asNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// optString reads an optional string; absent or malformed values stay absent.
func optString(obj map[string]any, keys ...string) string {
	v, _ := lookup(obj, keys...)
	s, _ := asString(v)
	return s
}

func optNumber(obj map[string]any, keys ...string) *float64 {
	v, ok := lookup(obj, keys...)
	if !ok {
		return nil
	}
	f, ok := asNumber(v)
	if !ok {
		return nil
	}
	return &f
}

// optStrings keeps the string entries of an optional list. A missing or
// non-list value, or one without any strings, yields nil.
func optStrings(obj map[string]any, keys ...string) []string {
	v, _ := lookup(obj, keys...)
	l, ok := asList(v)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range l {
		if s, ok := asString(item); ok {
			out = append(out, s)
		}
	}
	return out
}

func clamp(f, lo, hi float64) float64 {
	return math.Min(math.Max(f, lo), hi)
}
