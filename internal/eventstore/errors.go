package eventstore

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageWrite wraps every failure to persist the mapping.
	ErrStorageWrite = errors.New("failed to write events to storage")

	// ErrStorageRead is returned by mutating operations when the current
	// mapping cannot be read. Writing over an unreadable store would erase it.
	ErrStorageRead = errors.New("failed to read events from storage")

	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")
)

// ValidationError reports an input field rejected before any mutation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
