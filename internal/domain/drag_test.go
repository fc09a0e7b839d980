package domain

import (
	"errors"
	"testing"
)

// TestDragSessionLifecycle verifies idle -> dragging -> idle transitions.
func TestDragSessionLifecycle(t *testing.T) {
	var session DragSession
	if session.State() != DragStateIdle || session.Active() {
		t.Fatalf("expected zero session to be idle, got %q", session.State())
	}
	if err := session.Start("3"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if session.State() != DragStateDragging || session.ItemID() != "3" {
		t.Fatalf("expected dragging(3), got %q(%q)", session.State(), session.ItemID())
	}

	itemID, ok := session.Drop()
	if !ok || itemID != "3" {
		t.Fatalf("expected drop to return 3, got %q ok=%t", itemID, ok)
	}
	if session.Active() {
		t.Fatal("expected session idle after drop")
	}
	if _, ok := session.Drop(); ok {
		t.Fatal("expected drop on idle session to report nothing dragged")
	}
}

// TestDragSessionCancelAndInvalidStart verifies cancel clears state and blank ids are rejected.
func TestDragSessionCancelAndInvalidStart(t *testing.T) {
	var session DragSession
	if err := session.Start("  "); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if session.Active() {
		t.Fatal("expected failed start to leave session idle")
	}
	_ = session.Start("1")
	_ = session.Start("2")
	if session.ItemID() != "2" {
		t.Fatalf("expected restart to replace dragged item, got %q", session.ItemID())
	}
	session.Cancel()
	if session.State() != DragStateIdle {
		t.Fatalf("expected idle after cancel, got %q", session.State())
	}
}
