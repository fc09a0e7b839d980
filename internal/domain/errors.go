package domain

import "errors"

var (
	ErrInvalidID         = errors.New("invalid id")
	ErrInvalidName       = errors.New("invalid name")
	ErrInvalidTitle      = errors.New("invalid title")
	ErrInvalidPriority   = errors.New("invalid priority")
	ErrInvalidColumnID   = errors.New("invalid column id")
	ErrInvalidEmail      = errors.New("invalid email")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTier       = errors.New("invalid account tier")
	ErrInvalidBody       = errors.New("invalid message body")
	ErrInvalidDirection  = errors.New("invalid message direction")
	ErrDuplicateColumnID = errors.New("duplicate column id")
	ErrDuplicateItemID   = errors.New("duplicate item id")
	ErrColumnNotFound    = errors.New("column not found")
	ErrEmptyBoard        = errors.New("board has no columns")
)
