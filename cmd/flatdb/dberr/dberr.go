// Package dberr defines the error classification used by the record
// store.  Errors are classified as validation errors (the caller
// supplied invalid input), storage errors (the file system operation
// failed), or corrupt store errors (a stored file could not be read
// back as a table).
package dberr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindStorage
	KindCorruptStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindStorage:
		return "storage"
	case KindCorruptStore:
		return "corrupt store"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns a new validation error.
func Validation(format string, v ...any) error {
	return &Error{Kind: KindValidation, Err: fmt.Errorf(format, v...)}
}

// Storage returns a new storage error.  If err is non-nil, it is
// wrapped and remains available to errors.Is and errors.As.
func Storage(err error, format string, v ...any) error {
	return &Error{Kind: KindStorage, Err: wrap(err, format, v...)}
}

// CorruptStore returns a new corrupt store error.  If err is non-nil,
// it is wrapped and remains available to errors.Is and errors.As.
func CorruptStore(err error, format string, v ...any) error {
	return &Error{Kind: KindCorruptStore, Err: wrap(err, format, v...)}
}

func wrap(err error, format string, v ...any) error {
	if err == nil {
		return fmt.Errorf(format, v...)
	}
	return fmt.Errorf(format+": %w", append(v, err)...)
}

func IsValidation(err error) bool {
	return isKind(err, KindValidation)
}

func IsStorage(err error) bool {
	return isKind(err, KindStorage)
}

func IsCorruptStore(err error) bool {
	return isKind(err, KindCorruptStore)
}

func isKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
