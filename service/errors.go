package service

import (
	"errors"
	"fmt"
)

// ValidationError reports a missing or invalid request field. The operation
// was not attempted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// StorageError wraps a failure of the underlying store. The operation was aborted.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// ErrUserNotFound is returned by GetUser for an unknown id.
var ErrUserNotFound = errors.New("User not found")
