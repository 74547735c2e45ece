// Package strings holds small helpers for cleaning user-supplied string
// lists before they reach domain validation.
package strings

import (
	"strings"
)

// DedupeAndTrim trims each element and drops blanks and repeats, keeping
// first-occurrence order. Registration forms routinely submit padded or
// repeated selections; this normalizes them before any further parsing.
func DedupeAndTrim(values []string) []string {
	return dedupe(values, strings.TrimSpace)
}

// DedupeAndTrimLower additionally lowercases each element, so "Caring" and
// "caring" collapse to one entry. Interest names are matched
// case-insensitively against the catalog, so their raw lists come through
// here.
func DedupeAndTrimLower(values []string) []string {
	return dedupe(values, func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	})
}

func dedupe(values []string, clean func(string) string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		cleaned := clean(v)
		if cleaned == "" {
			continue
		}
		if _, ok := seen[cleaned]; ok {
			continue
		}
		seen[cleaned] = struct{}{}
		result = append(result, cleaned)
	}
	return result
}
