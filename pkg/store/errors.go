package store

import (
	"errors"
	"fmt"
)

// ErrStorageUnavailable is returned when the medium cannot be reached or read
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrStorageCorrupt is returned when stored data does not decode into accounts
var ErrStorageCorrupt = errors.New("storage corrupt")

// ErrInvalidIdentifier is returned for table names that are not plain identifiers
var ErrInvalidIdentifier = errors.New("invalid identifier")

// Error carries a classified storage failure together with its cause.
// errors.Is matches both the class sentinel and anything in the cause chain.
type Error struct {
	// Class is ErrStorageUnavailable or ErrStorageCorrupt
	Class error
	// Backend names the backend that failed, e.g. "file"
	Backend Kind
	// Op is the storage operation, e.g. "load"
	Op string
	// Err is the underlying driver or I/O error
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Class)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Backend, e.Op, e.Class, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Class}
	}
	return []error{e.Class, e.Err}
}

// Unavailable wraps err as an ErrStorageUnavailable failure.
func Unavailable(backend Kind, op string, err error) error {
	return &Error{Class: ErrStorageUnavailable, Backend: backend, Op: op, Err: err}
}

// Corrupt wraps err as an ErrStorageCorrupt failure.
func Corrupt(backend Kind, op string, err error) error {
	return &Error{Class: ErrStorageCorrupt, Backend: backend, Op: op, Err: err}
}
