package app

import "errors"

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound        = errors.New("not found")
	ErrUnknownBoard    = errors.New("unknown board")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)
