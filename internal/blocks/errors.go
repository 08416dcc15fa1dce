package blocks

import (
	"errors"
	"fmt"
)

var (
	ErrBlockRequired   = errors.New("blocks: block is required")
	ErrBlockIDRequired = errors.New("blocks: block id required before publishing")
	ErrSlugRequired    = errors.New("blocks: slug is required")
	ErrStatusInvalid   = errors.New("blocks: status is invalid")
	ErrEmptyImport     = errors.New("blocks: import document contains no definitions")
)

// NotFoundError is returned when a block resource cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// TypeMismatchError is returned when an entity of the wrong kind is inserted
// into a typed collection.
type TypeMismatchError struct {
	Expected Kind
	Got      Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("collection of %s cannot hold %s", e.Expected, e.Got)
}

// PreconditionError is returned when an operation requires prior state that
// has not been established.
type PreconditionError struct {
	Op     string
	Reason error
}

func (e *PreconditionError) Error() string {
	if e.Reason == nil {
		return fmt.Sprintf("%s: precondition failed", e.Op)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason.Error())
}

func (e *PreconditionError) Unwrap() error {
	return e.Reason
}

// ValidationError is returned for malformed input payloads.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("blocks: invalid payload: %s", e.Reason)
	}
	if e.Reason == "" {
		return fmt.Sprintf("blocks: invalid payload: %s", e.Err.Error())
	}
	return fmt.Sprintf("blocks: invalid payload: %s: %s", e.Reason, e.Err.Error())
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// StorageError is returned when an underlying save or delete fails, including
// uniqueness violations surfaced by the storage layer.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("blocks: storage %s failed: %s", e.Op, e.Err.Error())
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IOError is returned for filesystem failures while reading, writing, or
// scanning snapshot files.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("blocks: %s %s: %s", e.Op, e.Path, e.Err.Error())
}

func (e *IOError) Unwrap() error {
	return e.Err
}
