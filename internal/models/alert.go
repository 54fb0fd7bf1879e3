// Package models defines the data types shared by the copilot packages.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Category is the severity bucket derived from rule.level.
type Category string

const (
	CategoryLow    Category = "Low"
	CategoryMedium Category = "Medium"
	CategoryHigh   Category = "High"
)

// Field names used on Wazuh-shaped alerts.
const (
	FieldRule        = "rule"
	FieldLevel       = "level"
	FieldDescription = "description"
	FieldTimestamp   = "timestamp"
	FieldCategory    = "category"
)

// UnknownDescription stands in for alerts without rule.description.
const UnknownDescription = "Unknown"

// Alert is one decoded line of the alert store. The shape is whatever the
// detection pipeline wrote; only a handful of paths are interpreted.
type Alert map[string]any

// Lookup walks nested objects along path. It reports false when any segment
// is missing or is not an object.
func (a Alert) Lookup(path ...string) (any, bool) {
	var cur any = map[string]any(a)
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// LookupString returns the value at path when it is a non-empty string.
func (a Alert) LookupString(path ...string) (string, bool) {
	v, ok := a.Lookup(path...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Level returns rule.level. Alerts decoded with UseNumber carry json.Number;
// plain float64 and int values are accepted too. Non-numeric values report false.
func (a Alert) Level() (float64, bool) {
	v, ok := a.Lookup(FieldRule, FieldLevel)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Description returns rule.description, or UnknownDescription when the key
// is absent. A present value is kept as is, including "", and non-string
// values are rendered as their JSON text.
func (a Alert) Description() string {
	v, ok := a.Lookup(FieldRule, FieldDescription)
	if !ok {
		return UnknownDescription
	}
	if s, ok := v.(string); ok {
		return s
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}

// Timestamp returns the raw timestamp string, if any.
func (a Alert) Timestamp() (string, bool) {
	return a.LookupString(FieldTimestamp)
}

// WithCategory returns a shallow copy carrying the derived category field.
// The receiver is left untouched.
func (a Alert) WithCategory(c Category) Alert {
	out := make(Alert, len(a)+1)
	for k, v := range a {
		out[k] = v
	}
	out[FieldCategory] = string(c)
	return out
}

// JSON renders the alert as compact JSON for prompts and pattern scans.
func (a Alert) JSON() string {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(map[string]any(a)); err != nil {
		return "{}"
	}
	return strings.TrimSuffix(b.String(), "\n")
}
