// Package rowfilter implements substring search over in-memory lists and the
// resolution of a row in a filtered listing back to the authoritative record.
package rowfilter

import "strings"

// Normalize trims and lowercases a free-text query
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Matches reports whether the normalized query is a substring of any lowercased field.
// An empty query matches everything.
func Matches(fields []string, query string) bool {
	q := Normalize(query)
	if q == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Filter returns the items whose fields match query, preserving order.
// An empty query returns items unchanged.
func Filter[T any](items []T, query string, fields func(T) []string) []T {
	if Normalize(query) == "" {
		return items
	}
	filtered := make([]T, 0, len(items))
	for _, item := range items {
		if Matches(fields(item), query) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// View describes how a list is searched and how its records are identified
type View[T any] struct {
	Fields func(T) []string
	Key    func(T) string
}

// Filter applies the view's search fields to items
func (v View[T]) Filter(items []T, query string) []T {
	return Filter(items, query, v.Fields)
}

// Resolve maps row, a 0-based index into the listing filtered by query, to the index
// of the first record in all with the same key. It reports false when the row is out
// of range or its key no longer exists, in which case the caller should do nothing.
func (v View[T]) Resolve(all []T, query string, row int) (int, bool) {
	filtered := v.Filter(all, query)
	if row < 0 || row >= len(filtered) {
		return -1, false
	}

	key := v.Key(filtered[row])
	for i, item := range all {
		if v.Key(item) == key {
			return i, true
		}
	}
	return -1, false
}
