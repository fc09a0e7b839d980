package domain

import (
	"slices"
	"strings"
)

// Priority ranks an item on a board.
type Priority string

// Priority values, lowest first.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// validPriorities stores supported priorities in ascending order.
var validPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Priorities returns the supported priorities in ascending order.
func Priorities() []Priority {
	return append([]Priority(nil), validPriorities...)
}

// NormalizePriority canonicalizes one priority value.
func NormalizePriority(p Priority) Priority {
	return Priority(strings.TrimSpace(strings.ToLower(string(p))))
}

// IsValidPriority reports whether a priority is supported. The empty priority is valid and means unset.
func IsValidPriority(p Priority) bool {
	p = NormalizePriority(p)
	return p == "" || slices.Contains(validPriorities, p)
}

// Rank orders priorities; unset sorts below low.
func (p Priority) Rank() int {
	return slices.Index(validPriorities, NormalizePriority(p)) + 1
}
