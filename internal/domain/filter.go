package domain

import "strings"

// Searchable exposes the string fields a free-text query is matched against.
type Searchable interface {
	SearchFields() []string
}

// MatchesQuery reports whether any field contains query as a case-insensitive substring.
// The query is used verbatim: whitespace is not trimmed, and the empty query matches everything.
func MatchesQuery(query string, fields ...string) bool {
	if query == "" {
		return true
	}
	needle := strings.ToLower(query)
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Filter returns the entities whose search fields match query, in source order.
func Filter[T Searchable](query string, entities []T) []T {
	return FilterFunc(query, entities, func(entity T) []string {
		return entity.SearchFields()
	})
}

// FilterFunc is Filter with an explicit field selector, for entities searched by a
// field set other than their default one.
func FilterFunc[T any](query string, entities []T, fields func(T) []string) []T {
	out := make([]T, 0, len(entities))
	for _, entity := range entities {
		if MatchesQuery(query, fields(entity)...) {
			out = append(out, entity)
		}
	}
	return out
}

// SearchFields returns the fields board cards are searched by.
func (i Item) SearchFields() []string {
	fields := make([]string, 0, 3+len(i.Tags))
	fields = append(fields, i.Title, i.Description, i.Assignee)
	return append(fields, i.Tags...)
}
