package store

import "errors"

// Sentinel errors for store operations.
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrNameRequired = errors.New("name is required")
)
