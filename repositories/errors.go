package repositories

import "errors"

var (
	// ErrNotFound is returned when the requested row does not exist
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an insert violates a unique
	// constraint (course slug, user email)
	ErrDuplicate = errors.New("duplicate record")
)
