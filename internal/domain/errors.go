package domain

import "errors"

var (
	// ErrItemNotFound is returned when an item id does not belong to the
	// caller's pantry.
	ErrItemNotFound = errors.New("item not found")
)
