package services

import (
	"errors"
	"fmt"
)

// Validation failures, reported before anything is written.
var (
	ErrEventTypeRequired         = errors.New("event type is required")
	ErrActionDescriptionRequired = errors.New("action description is required")
	ErrInvalidSeverity           = errors.New("invalid severity level")
	ErrInvalidResult             = errors.New("invalid action result")
)

// PersistenceError wraps a failed durable write or read. The engine never
// retries the underlying operation: retrying an audit append could duplicate
// the record, so the caller decides whether to degrade or abort.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
