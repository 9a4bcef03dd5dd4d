package domain

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNotFound   = errors.New("record not found")
	ErrForbidden  = errors.New("access forbidden: you don't own this resource")
	ErrValidation = errors.New("validation failed")
	ErrDuplicate  = errors.New("entry already exists")
)

// PersistenceError wraps a failure reported by the storage collaborator.
// The message is passed through for display.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError wraps err unless it is nil or already a PersistenceError
func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
