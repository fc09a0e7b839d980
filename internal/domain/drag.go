package domain

import "strings"

// DragState identifies the drag-session lifecycle state.
type DragState string

// DragState values.
const (
	DragStateIdle     DragState = "idle"
	DragStateDragging DragState = "dragging"
)

// DragSession tracks the card currently being dragged on one board. The zero value is idle.
type DragSession struct {
	itemID string
}

// State returns the current lifecycle state.
func (s DragSession) State() DragState {
	if s.itemID == "" {
		return DragStateIdle
	}
	return DragStateDragging
}

// Active reports whether a drag is in progress.
func (s DragSession) Active() bool {
	return s.itemID != ""
}

// ItemID returns the dragged item id, or "" when idle.
func (s DragSession) ItemID() string {
	return s.itemID
}

// Start begins dragging an item. Starting while already dragging replaces the dragged item.
func (s *DragSession) Start(itemID string) error {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return ErrInvalidID
	}
	s.itemID = itemID
	return nil
}

// Drop ends the session and returns the item that was being dragged. The session is idle afterwards
// regardless of what the caller does with the returned id.
func (s *DragSession) Drop() (string, bool) {
	itemID := s.itemID
	s.itemID = ""
	return itemID, itemID != ""
}

// Cancel ends the session without a drop target.
func (s *DragSession) Cancel() {
	s.itemID = ""
}
