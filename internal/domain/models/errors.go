package models

import "errors"

var (
	// ErrNotFound is returned by stores when a keyed entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a guarded write finds the document in a
	// state that no longer allows the change.
	ErrConflict = errors.New("conflicting update")
)
