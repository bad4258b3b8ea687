// Package listquery provides the in-memory filtering and ordering primitives
// shared by the public listing endpoints and the admin tables. Everything
// operates on plain string accessors so callers can point the helpers at any
// row type without reflection.
package listquery

import "strings"

// FilterAll is the sentinel filter value that matches every row.
const FilterAll = "all"

// MatchEquals reports whether a field satisfies an exact-match filter.
// The FilterAll sentinel and the empty filter match everything.
func MatchEquals(value, filter string) bool {
	if filter == "" || filter == FilterAll {
		return true
	}
	return value == filter
}

// MatchSubstring reports whether a field contains the query, case-insensitive.
// An empty query matches everything.
func MatchSubstring(value, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(query))
}

// MatchAnySubstring reports whether the query appears in at least one of the
// given fields, case-insensitive.
func MatchAnySubstring(query string, values ...string) bool {
	if query == "" {
		return true
	}
	for _, v := range values {
		if MatchSubstring(v, query) {
			return true
		}
	}
	return false
}

// Filter returns the elements of items for which keep returns true. The input
// slice is never mutated and the result preserves input order.
func Filter[T any](items []T, keep func(T) bool) []T {
	result := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			result = append(result, item)
		}
	}
	return result
}
