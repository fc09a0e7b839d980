package domain

import "time"

// ChangeOperation describes one recorded activity operation.
type ChangeOperation string

// ChangeOperation values used by the in-memory activity ledger.
const (
	ChangeOperationCreate  ChangeOperation = "create"
	ChangeOperationMove    ChangeOperation = "move"
	ChangeOperationMessage ChangeOperation = "message"
)

// ChangeEvent is one activity-feed entry.
type ChangeEvent struct {
	ID          int64
	Subject     string
	SubjectID   string
	Operation   ChangeOperation
	Title       string
	Description string
	Metadata    map[string]string
	OccurredAt  time.Time
}
