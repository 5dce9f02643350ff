package domain

import (
	"errors"
	"fmt"
)

// ErrCorruptSnapshot is wrapped by deserialization failures caused by corrupt
// or version-mismatched snapshot blobs.
var ErrCorruptSnapshot = errors.New("corrupt network snapshot")

// RangeError reports a reaction referencing a handle outside the bounds of
// its registry. Store mutations returning it are local and non-retryable.
type RangeError struct {
	Entity EntityType
	Index  int
	Size   int
}

func (e RangeError) Error() string {
	return fmt.Sprintf("%s handle %d out of range (registry size %d)", e.Entity, e.Index, e.Size)
}

// ErrNotFound is returned when a handle or identity lookup fails.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}
