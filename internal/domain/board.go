package domain

import "strings"

// Board is an ordered set of columns. Item ids are unique across the whole board.
//
// Board values are treated as immutable: every mutating method returns a new Board and
// leaves the receiver untouched, so a caller holding an older value never observes a change.
type Board struct {
	ID      string
	Title   string
	Columns []Column
}

// MoveOutcome reports what a Move call did.
type MoveOutcome string

// MoveOutcome values.
const (
	MoveApplied         MoveOutcome = "applied"
	MoveSameColumn      MoveOutcome = "same_column"
	MoveUnknownColumn   MoveOutcome = "unknown_column"
	MoveItemNotInSource MoveOutcome = "item_not_in_source"
	MoveItemNotFound    MoveOutcome = "item_not_found"
	MoveNothingDragged  MoveOutcome = "nothing_dragged"
)

// Applied reports whether the move changed the board.
func (o MoveOutcome) Applied() bool {
	return o == MoveApplied
}

// NewBoard validates columns and the board-wide unique item id invariant.
func NewBoard(id, title string, columns []Column) (Board, error) {
	id = strings.TrimSpace(id)
	title = strings.TrimSpace(title)
	if id == "" {
		return Board{}, ErrInvalidID
	}
	if title == "" {
		return Board{}, ErrInvalidTitle
	}
	if len(columns) == 0 {
		return Board{}, ErrEmptyBoard
	}
	seenColumns := make(map[string]struct{}, len(columns))
	seenItems := map[string]struct{}{}
	cloned := make([]Column, 0, len(columns))
	for _, column := range columns {
		if strings.TrimSpace(column.ID) == "" {
			return Board{}, ErrInvalidColumnID
		}
		if _, ok := seenColumns[column.ID]; ok {
			return Board{}, ErrDuplicateColumnID
		}
		seenColumns[column.ID] = struct{}{}
		for _, item := range column.Items {
			if strings.TrimSpace(item.ID) == "" {
				return Board{}, ErrInvalidID
			}
			if _, ok := seenItems[item.ID]; ok {
				return Board{}, ErrDuplicateItemID
			}
			seenItems[item.ID] = struct{}{}
		}
		cloned = append(cloned, column.Clone())
	}
	return Board{ID: id, Title: title, Columns: cloned}, nil
}

// Clone returns a deep copy of the board.
func (b Board) Clone() Board {
	columns := make([]Column, len(b.Columns))
	for idx, column := range b.Columns {
		columns[idx] = column.Clone()
	}
	b.Columns = columns
	return b
}

// Column returns one column by id.
func (b Board) Column(columnID string) (Column, bool) {
	idx := b.columnIndex(columnID)
	if idx < 0 {
		return Column{}, false
	}
	return b.Columns[idx].Clone(), true
}

// Item returns one item and the id of the column holding it.
func (b Board) Item(itemID string) (Item, string, bool) {
	for _, column := range b.Columns {
		if idx := column.IndexOf(itemID); idx >= 0 {
			return column.Items[idx].Clone(), column.ID, true
		}
	}
	return Item{}, "", false
}

// SourceColumnOf scans every column for the item and returns the first holder.
func (b Board) SourceColumnOf(itemID string) (string, bool) {
	_, columnID, ok := b.Item(itemID)
	return columnID, ok
}

// ItemCount returns the number of items across all columns.
func (b Board) ItemCount() int {
	total := 0
	for _, column := range b.Columns {
		total += len(column.Items)
	}
	return total
}

// WithMinPriority returns a copy holding only items ranked at or above floor. Columns are
// kept even when they end up empty. An unset floor keeps everything.
func (b Board) WithMinPriority(floor Priority) Board {
	out := b.Clone()
	minRank := floor.Rank()
	if minRank == 0 {
		return out
	}
	for idx, column := range out.Columns {
		kept := make([]Item, 0, len(column.Items))
		for _, item := range column.Items {
			if item.Priority.Rank() >= minRank {
				kept = append(kept, item)
			}
		}
		out.Columns[idx].Items = kept
	}
	return out
}

// Move relocates an item from the source column to the end of the target column.
//
// Malformed requests (same column, unknown column, item not in the claimed source) return the
// receiver unchanged together with the reason.
func (b Board) Move(itemID, sourceColumnID, targetColumnID string) (Board, MoveOutcome) {
	if sourceColumnID == targetColumnID {
		return b, MoveSameColumn
	}
	srcIdx := b.columnIndex(sourceColumnID)
	dstIdx := b.columnIndex(targetColumnID)
	if srcIdx < 0 || dstIdx < 0 {
		return b, MoveUnknownColumn
	}
	itemIdx := b.Columns[srcIdx].IndexOf(itemID)
	if itemIdx < 0 {
		return b, MoveItemNotInSource
	}

	next := b.Clone()
	src := next.Columns[srcIdx].Items
	item := src[itemIdx]
	next.Columns[srcIdx].Items = append(src[:itemIdx:itemIdx], src[itemIdx+1:]...)
	next.Columns[dstIdx].Items = append(next.Columns[dstIdx].Items, item)
	return next, MoveApplied
}

// AddItem appends an item to the end of a column.
func (b Board) AddItem(columnID string, item Item) (Board, error) {
	idx := b.columnIndex(columnID)
	if idx < 0 {
		return b, ErrColumnNotFound
	}
	if _, _, exists := b.Item(item.ID); exists {
		return b, ErrDuplicateItemID
	}
	next := b.Clone()
	next.Columns[idx].Items = append(next.Columns[idx].Items, item.Clone())
	return next, nil
}

// columnIndex returns the position of a column, or -1.
func (b Board) columnIndex(columnID string) int {
	for idx, column := range b.Columns {
		if column.ID == columnID {
			return idx
		}
	}
	return -1
}
