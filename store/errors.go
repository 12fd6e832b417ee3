package store

import "errors"

var (
	// ErrNotFound is returned when a point lookup finds no item, or an
	// update targets a key that does not exist.
	ErrNotFound = errors.New("corkboard: item not found")
)
