package domain

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Item is one card on a board: a lead, an opportunity, or any other pipeline record.
type Item struct {
	ID          string
	Title       string
	Description string
	Value       string
	Assignee    string
	Priority    Priority
	Tags        []string
}

// ItemInput holds write-time values for creating one item.
type ItemInput struct {
	ID          string
	Title       string
	Description string
	Value       string
	Assignee    string
	Priority    Priority
	Tags        []string
}

// NewItem validates and normalizes one item.
func NewItem(in ItemInput) (Item, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)
	if in.ID == "" {
		return Item{}, ErrInvalidID
	}
	if in.Title == "" {
		return Item{}, ErrInvalidTitle
	}
	in.Priority = NormalizePriority(in.Priority)
	if !IsValidPriority(in.Priority) {
		return Item{}, ErrInvalidPriority
	}

	return Item{
		ID:          in.ID,
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		Value:       strings.TrimSpace(in.Value),
		Assignee:    strings.TrimSpace(in.Assignee),
		Priority:    in.Priority,
		Tags:        normalizeTags(in.Tags),
	}, nil
}

// Clone returns a copy that shares no slices with the receiver.
func (i Item) Clone() Item {
	i.Tags = append([]string(nil), i.Tags...)
	return i
}

// Initial returns the first letter of the assignee, or "" when unassigned.
func (i Item) Initial() string {
	r, _ := utf8.DecodeRuneInString(i.Assignee)
	if r == utf8.RuneError {
		return ""
	}
	return string(unicode.ToUpper(r))
}

// Amount parses the display value ("$75,000") into a number. Unparseable values count as zero.
func (i Item) Amount() float64 {
	return ParseAmount(i.Value)
}

// ParseAmount strips currency symbols and thousands separators and parses the remainder.
// Non-finite values ("inf", "NaN") count as zero.
func ParseAmount(raw string) float64 {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

// normalizeTags trims tags, drops blanks and duplicates, and keeps first-seen order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]struct{}{}
	for _, raw := range tags {
		tag := strings.TrimSpace(raw)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}
