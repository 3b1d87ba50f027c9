package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// NotFoundError is returned when a referenced record does not exist.
type NotFoundError struct {
	Resource string
	ID       int
}

func NewNotFoundError(resource string, id int) error {
	return &NotFoundError{Resource: resource, ID: id}
}

func (err NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %d not found", err.Resource, err.ID)
}

// DuplicateKeyError is returned when a write would break a uniqueness constraint.
type DuplicateKeyError struct {
	Resource string
	Field    string
	Value    string
}

func NewDuplicateKeyError(resource, field, value string) error {
	return &DuplicateKeyError{Resource: resource, Field: field, Value: value}
}

func (err DuplicateKeyError) Error() string {
	if err.Value == "" {
		return fmt.Sprintf("a %s with this %s already exists", err.Resource, err.Field)
	}
	return fmt.Sprintf("a %s with %s %q already exists", err.Resource, err.Field, err.Value)
}

// ForeignKeyError is returned when a write references a missing record (Field is set),
// or when a delete is blocked by dependent records (Field is empty).
type ForeignKeyError struct {
	Field string
	Err   error
}

func NewForeignKeyError(field string, err error) error {
	return &ForeignKeyError{Field: field, Err: err}
}

func (err ForeignKeyError) Error() string {
	if err.Err == nil {
		return "foreign key constraint violated"
	}
	return err.Err.Error()
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}

// IsNotFound reports whether the cause of err is a *NotFoundError.
func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}
