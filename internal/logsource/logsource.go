// Package logsource finds log lines related to an alert.
//
// A line is related when it contains any of the supplied keys as a literal,
// case-sensitive substring. Sources return lines in their natural order with
// surrounding whitespace removed.
package logsource

import (
	"context"
	"strings"
)

// Source returns the lines containing any of keys.
type Source interface {
	Related(ctx context.Context, keys []string) ([]string, error)
}

// matchesAny reports whether line contains at least one non-empty key.
func matchesAny(line string, keys []string) bool {
	for _, k := range keys {
		if k != "" && strings.Contains(line, k) {
			return true
		}
	}
	return false
}

// usableKeys drops empty keys and duplicates, keeping order.
func usableKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
