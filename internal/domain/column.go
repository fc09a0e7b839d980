package domain

import "strings"

// Column is one pipeline stage holding an ordered list of items.
type Column struct {
	ID    string
	Title string
	Color string
	Items []Item
}

// NewColumn constructs a column. Item ids must be unique within the column.
func NewColumn(id, title, color string, items []Item) (Column, error) {
	id = strings.TrimSpace(id)
	title = strings.TrimSpace(title)
	if id == "" {
		return Column{}, ErrInvalidColumnID
	}
	if title == "" {
		return Column{}, ErrInvalidTitle
	}
	seen := make(map[string]struct{}, len(items))
	cloned := make([]Item, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			return Column{}, ErrInvalidID
		}
		if _, ok := seen[item.ID]; ok {
			return Column{}, ErrDuplicateItemID
		}
		seen[item.ID] = struct{}{}
		cloned = append(cloned, item.Clone())
	}
	return Column{
		ID:    id,
		Title: title,
		Color: strings.TrimSpace(color),
		Items: cloned,
	}, nil
}

// IndexOf returns the position of an item in the column, or -1.
func (c Column) IndexOf(itemID string) int {
	for idx, item := range c.Items {
		if item.ID == itemID {
			return idx
		}
	}
	return -1
}

// Clone returns a deep copy of the column.
func (c Column) Clone() Column {
	items := make([]Item, len(c.Items))
	for idx, item := range c.Items {
		items[idx] = item.Clone()
	}
	c.Items = items
	return c
}
