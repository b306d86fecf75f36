package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidSelection = errors.New("invalid selection")
)
